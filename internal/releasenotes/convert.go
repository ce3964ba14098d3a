package releasenotes

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/frustra/bbcode"
	"golang.org/x/net/html"
)

// Converter turns announcement BBCode into Markdown with ATX headings,
// fenced code blocks, and "-" bullets.
type Converter struct {
	bb bbcode.Compiler
	md *md.Converter
}

// NewConverter builds a converter.
func NewConverter() *Converter {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		BulletListMarker: "-",
	})
	return &Converter{bb: newBBCodeCompiler(), md: conv}
}

// Convert normalizes, renders, cleans, and converts body.
func (c *Converter) Convert(body string) (string, error) {
	rendered := renderBBCode(c.bb, NormalizeBBCode(body))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return "", fmt.Errorf("parse announcement html: %w", err)
	}
	cleanHTML(doc)
	out := c.md.Convert(doc.Find("body"))
	return strings.TrimSpace(out), nil
}

var blockElements = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "p": true, "div": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true,
	"table": true, "tr": true, "th": true, "td": true, "hr": true,
}

// cleanHTML removes markup that converts to noise: images without a source,
// empty paragraphs and links, and line breaks next to or at the edges of
// blocks.
func cleanHTML(doc *goquery.Document) {
	dropBlockBreaks(doc)
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, _ := s.Attr("src"); strings.TrimSpace(src) == "" {
			s.Remove()
		}
	})
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, _ := s.Attr("href"); strings.TrimSpace(href) == "" {
			s.ReplaceWithSelection(s.Contents())
		}
	})
	doc.Find("li, p, h1, h2, h3, h4, blockquote, td, th").Each(func(_ int, s *goquery.Selection) {
		trimEdgeBreaks(s)
	})
	doc.Find("p, h1, h2, h3, h4, li").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" && s.Find("img").Length() == 0 {
			s.Remove()
		}
	})
	doc.Find("span").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})
}

func trimEdgeBreaks(s *goquery.Selection) {
	for {
		first := s.Contents().First()
		if first.Length() == 0 {
			break
		}
		if goquery.NodeName(first) == "br" || isBlankText(first) {
			first.Remove()
			continue
		}
		break
	}
	for {
		last := s.Contents().Last()
		if last.Length() == 0 {
			break
		}
		if goquery.NodeName(last) == "br" || isBlankText(last) {
			last.Remove()
			continue
		}
		break
	}
}

func isBlankText(s *goquery.Selection) bool {
	return goquery.NodeName(s) == "#text" && strings.TrimSpace(s.Text()) == ""
}

// dropBlockBreaks removes <br> elements whose nearest non-blank sibling is a
// block element, repeating until runs of breaks are gone.
func dropBlockBreaks(doc *goquery.Document) {
	for {
		removed := false
		doc.Find("br").Each(func(_ int, s *goquery.Selection) {
			n := s.Get(0)
			if isBlockNode(nearestSibling(n, false)) || isBlockNode(nearestSibling(n, true)) {
				s.Remove()
				removed = true
			}
		})
		if !removed {
			return
		}
	}
}

func nearestSibling(n *html.Node, forward bool) *html.Node {
	for {
		if forward {
			n = n.NextSibling
		} else {
			n = n.PrevSibling
		}
		if n == nil || n.Type != html.TextNode || strings.TrimSpace(n.Data) != "" {
			return n
		}
	}
}

func isBlockNode(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockElements[n.Data]
}
