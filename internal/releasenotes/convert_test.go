package releasenotes

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNormalizeBBCode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[list][*]One[/*][*]Two[/*][/list]", "[list][*]One[*]Two[/list]"},
		{"[url=https://x.test/a style=button]Go[/url]", "[url=https://x.test/a]Go[/url]"},
		{"[url=store.steampowered.com/app/1]Store[/url]", "[url=https://store.steampowered.com/app/1]Store[/url]"},
		{"[URL=HTTP://x.test]X[/URL]", "[URL=HTTP://x.test]X[/URL]"},
		{"[url=x.test style=\"button\"]X[/url]", "[url=https://x.test]X[/url]"},
	}
	for _, tt := range tests {
		if got := NormalizeBBCode(tt.in); got != tt.want {
			t.Fatalf("NormalizeBBCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPairListItems(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[list][*]a[*]b[/list]", "[list][li]a[/li][li]b[/li][/list]"},
		{"[olist][*]a[list][*]b[/list][/olist]", "[olist][li]a[list][li]b[/li][/list][/li][/olist]"},
		{"[list][*]one", "[list][li]one[/li][/list]"},
		{"[*] stray", "[*] stray"},
		{"[list][*]a[/olist]", "[list][li]a[/olist][/li][/list]"},
	}
	for _, tt := range tests {
		if got := pairListItems(tt.in); got != tt.want {
			t.Fatalf("pairListItems(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func parseHTML(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestBBCodeToHTML(t *testing.T) {
	doc := parseHTML(t, BBCodeToHTML("[h2]Fixes[/h2]\n[list]\n[*]A & B\n[*][b]C[/b]\n[/list]\n[img]{STEAM_CLAN_IMAGE}/1/x.png[/img][unknown]t[/unknown]"))

	if got := doc.Find("h2").Text(); got != "Fixes" {
		t.Fatalf("heading = %q", got)
	}
	items := doc.Find("ul > li")
	if items.Length() != 2 {
		t.Fatalf("expected 2 list items, got %d", items.Length())
	}
	if got := strings.TrimSpace(items.Eq(0).Text()); got != "A & B" {
		t.Fatalf("first item = %q", got)
	}
	if got := items.Eq(1).Find("strong").Text(); got != "C" {
		t.Fatalf("bold item = %q", got)
	}
	if src, _ := doc.Find("img").Attr("src"); src != "https://clan.akamai.steamstatic.com/images/1/x.png" {
		t.Fatalf("img src = %q", src)
	}
	if !strings.Contains(doc.Text(), "[unknown]t[/unknown]") {
		t.Fatalf("unknown tag should stay literal: %q", doc.Text())
	}
}

func TestBBCodeUnclosedListIsClosed(t *testing.T) {
	doc := parseHTML(t, BBCodeToHTML("[list][*]one"))
	if got := strings.TrimSpace(doc.Find("ul > li").Text()); got != "one" {
		t.Fatalf("list item = %q", got)
	}
}

func TestConvertKeepsTextAfterUnclosedTag(t *testing.T) {
	conv := NewConverter()
	for _, tag := range []string{"url", "img", "noparse"} {
		body := "See [" + tag + "]example.com and more text\n[h2]Later heading[/h2]\nbody"
		out, err := conv.Convert(body)
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		if !strings.Contains(out, "## Later heading") {
			t.Fatalf("[%s]: heading lost:\n%s", tag, out)
		}
		if !strings.Contains(out, "body") {
			t.Fatalf("[%s]: trailing text lost:\n%s", tag, out)
		}
		if strings.Contains(out, "](") || strings.Contains(out, "![") {
			t.Fatalf("[%s]: unclosed tag produced a link or image:\n%s", tag, out)
		}
	}
}

func TestConvertYouTubePreview(t *testing.T) {
	out, err := NewConverter().Convert("Watch [previewyoutube=abc123;full][/previewyoutube] now")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(out, "https://www.youtube.com/watch?v=abc123") {
		t.Fatalf("missing video link:\n%s", out)
	}
}

func TestConvertProducesMarkdown(t *testing.T) {
	body := "[h1]Highlights[/h1]\n[list][*]New map[/*][*]Faster saves[/*][/list]\n[b]Bold[/b] and [i]italic[/i]\n[url=store.steampowered.com/app/1158310 style=button]Store page[/url]\n[code]x := 1[/code]"
	out, err := NewConverter().Convert(body)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{
		"# Highlights",
		"- New map",
		"- Faster saves",
		"**Bold**",
		"[Store page](https://store.steampowered.com/app/1158310)",
		"```",
		"x := 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[/*]") || strings.Contains(out, "style=") {
		t.Fatalf("unnormalized markup leaked:\n%s", out)
	}
}
