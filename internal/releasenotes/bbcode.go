package releasenotes

import (
	"regexp"
	"strings"

	"github.com/frustra/bbcode"
)

var (
	listItemClose = regexp.MustCompile(`(?s)\[\*\](.*?)\[/\*\]`)
	urlExtraAttrs = regexp.MustCompile(`(?i)\[url=([^\s\]]+)\s+[^\]]*\]`)
	urlTag        = regexp.MustCompile(`(?i)\[url=([^\]]+)\]`)
	hasProtocol   = regexp.MustCompile(`(?i)^https?://`)
	listMarkup    = regexp.MustCompile(`(?i)\[(/?)(list|olist|\*)\]`)
)

// NormalizeBBCode repairs store BBCode quirks: explicitly closed list items,
// link tags carrying style attributes, and link targets without a protocol.
func NormalizeBBCode(src string) string {
	out := listItemClose.ReplaceAllString(src, "[*]$1")
	out = urlExtraAttrs.ReplaceAllString(out, "[url=$1]")
	out = urlTag.ReplaceAllStringFunc(out, func(tag string) string {
		target := urlTag.FindStringSubmatch(tag)[1]
		if hasProtocol.MatchString(target) {
			return tag
		}
		return "[url=https://" + target + "]"
	})
	return out
}

// pairListItems rewrites the open-ended [*] markers of store lists into
// [li]...[/li] pairs and closes lists left open at the end of the body.
// A [*] outside any list is left as text.
func pairListItems(src string) string {
	type openList struct {
		name     string
		itemOpen bool
	}
	var out strings.Builder
	var lists []openList // innermost last
	last := 0
	for _, loc := range listMarkup.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:loc[0]])
		last = loc[1]
		raw := src[loc[0]:loc[1]]
		closing := loc[3] > loc[2]
		name := strings.ToLower(src[loc[4]:loc[5]])
		depth := len(lists)

		switch {
		case name == "*":
			if depth == 0 || closing {
				out.WriteString(raw)
				continue
			}
			if lists[depth-1].itemOpen {
				out.WriteString("[/li]")
			}
			out.WriteString("[li]")
			lists[depth-1].itemOpen = true
		case closing:
			if depth == 0 || lists[depth-1].name != name {
				out.WriteString(raw)
				continue
			}
			if lists[depth-1].itemOpen {
				out.WriteString("[/li]")
			}
			lists = lists[:depth-1]
			out.WriteString(raw)
		default:
			lists = append(lists, openList{name: name})
			out.WriteString(raw)
		}
	}
	out.WriteString(src[last:])
	for depth := len(lists); depth > 0; depth-- {
		if lists[depth-1].itemOpen {
			out.WriteString("[/li]")
		}
		out.WriteString("[/" + lists[depth-1].name + "]")
	}
	return out.String()
}

// clanImageBase replaces the {STEAM_CLAN_IMAGE} token in image sources.
const clanImageBase = "https://clan.akamai.steamstatic.com/images"

// elementTags maps store BBCode tags onto the HTML element they render as.
var elementTags = map[string]string{
	"b":         "strong",
	"i":         "em",
	"u":         "u",
	"s":         "del",
	"strike":    "del",
	"spoiler":   "span",
	"h1":        "h1",
	"h2":        "h2",
	"h3":        "h3",
	"h4":        "h4",
	"p":         "p",
	"paragraph": "p",
	"quote":     "blockquote",
	"list":      "ul",
	"olist":     "ol",
	"li":        "li",
	"table":     "table",
	"tr":        "tr",
	"th":        "th",
	"td":        "td",
	"expand":    "div",
	"center":    "div",
	"carousel":  "div",
}

func newBBCodeCompiler() bbcode.Compiler {
	// Unbalanced tags stay literal text so one missing [/url] cannot swallow
	// the rest of an announcement.
	compiler := bbcode.NewCompiler(false, false)

	for tag, element := range elementTags {
		compiler.SetTag(tag, func(*bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
			out := bbcode.NewHTMLTag("")
			out.Name = element
			return out, true
		})
	}

	compiler.SetTag("url", func(node *bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		out := bbcode.NewHTMLTag("")
		out.Name = "a"
		target := strings.TrimSpace(node.GetOpeningTag().Value)
		if target == "" {
			target = strings.TrimSpace(bbcode.CompileText(node))
		}
		if target != "" {
			out.Attrs["href"] = target
		}
		return out, true
	})

	compiler.SetTag("img", func(node *bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		src := strings.TrimSpace(bbcode.CompileText(node))
		if src == "" {
			src = strings.TrimSpace(node.GetOpeningTag().Value)
		}
		out := bbcode.NewHTMLTag("")
		out.Name = "img"
		out.Attrs["src"] = strings.ReplaceAll(src, "{STEAM_CLAN_IMAGE}", clanImageBase)
		return out, false
	})

	compiler.SetTag("previewyoutube", func(node *bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		id, _, _ := strings.Cut(node.GetOpeningTag().Value, ";")
		out := bbcode.NewHTMLTag("")
		if id == "" {
			return out, false
		}
		link := "https://www.youtube.com/watch?v=" + id
		anchor := bbcode.NewHTMLTag("")
		anchor.Name = "a"
		anchor.Attrs["href"] = link
		anchor.AppendChild(bbcode.NewHTMLTag(link))
		out.Name = "p"
		out.AppendChild(anchor)
		return out, false
	})

	compiler.SetTag("code", func(node *bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		code := bbcode.NewHTMLTag("")
		code.Name = "code"
		for _, child := range node.Children {
			code.AppendChild(bbcode.CompileRaw(child))
		}
		out := bbcode.NewHTMLTag("")
		out.Name = "pre"
		out.AppendChild(code)
		return out, false
	})

	compiler.SetTag("noparse", func(node *bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		out := bbcode.NewHTMLTag("")
		for _, child := range node.Children {
			out.AppendChild(bbcode.CompileRaw(child))
		}
		return out, false
	})

	compiler.SetTag("hr", func(*bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		out := bbcode.NewHTMLTag("")
		out.Name = "hr"
		return out, false
	})

	compiler.SetTag("video", func(*bbcode.BBCodeNode) (*bbcode.HTMLTag, bool) {
		return bbcode.NewHTMLTag(""), false
	})

	return compiler
}

// BBCodeToHTML renders store BBCode as HTML. Unknown and unbalanced tags are
// kept as escaped text; newlines become <br>.
func BBCodeToHTML(src string) string {
	return renderBBCode(newBBCodeCompiler(), src)
}

func renderBBCode(compiler bbcode.Compiler, src string) string {
	return compiler.Compile(pairListItems(src))
}
