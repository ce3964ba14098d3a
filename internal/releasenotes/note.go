package releasenotes

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"modbase/internal/version"
)

const (
	labelReleaseDate  = "Release Date:"
	labelAnnouncement = "Official Announcement:"
)

var (
	noteFileName = regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2})\.md$`)
	titlePrefix  = regexp.MustCompile(`^(Update|Hotfix|Rollback for Update) `)
	markdown     = goldmark.New()
)

// Note is the persisted form of one release announcement.
type Note struct {
	Title string
	Date  string
	URL   string
	Body  string
}

// FileName is "<slug>_<date>.md", e.g. 1_10_1_0_2024-01-01.md.
func FileName(v version.Version, date string) string {
	return v.Slug() + "_" + date + ".md"
}

// FindExisting returns the name of the note already written for v, matched
// by slug regardless of date. A missing directory means no note.
func FindExisting(dir string, v version.Version) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("list release notes: %w", err)
	}
	slug := v.Slug()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := noteFileName.FindStringSubmatch(entry.Name())
		if m != nil && m[1] == slug {
			return entry.Name(), true, nil
		}
	}
	return "", false, nil
}

// CleanTitle drops a leading "Update ", "Hotfix ", or "Rollback for Update ".
func CleanTitle(title string) string {
	return titlePrefix.ReplaceAllString(title, "")
}

// Render produces the note document.
func Render(n Note) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "**%s** %s\n", labelReleaseDate, n.Date)
	fmt.Fprintf(&b, "**%s** %s\n\n", labelAnnouncement, n.URL)
	b.WriteString("---\n\n")
	b.WriteString(n.Body)
	b.WriteString("\n")
	return b.Bytes()
}

// ReadNote recovers the title, date, and URL of a persisted note. Missing
// pieces fall back to fallbackTitle, today's date (from now), and "".
func ReadNote(path, fallbackTitle string, now time.Time) (Note, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Note{}, fmt.Errorf("read release note: %w", err)
	}
	n := ParseNote(source)
	if n.Title == "" {
		n.Title = fallbackTitle
	}
	if n.Date == "" {
		n.Date = now.UTC().Format(time.DateOnly)
	}
	return n, nil
}

// ParseNote extracts whatever header fields source carries.
func ParseNote(source []byte) Note {
	doc := markdown.Parser().Parse(text.NewReader(source))
	var n Note
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := node.(type) {
		case *ast.Heading:
			if node.Level == 1 && n.Title == "" {
				n.Title = strings.TrimSpace(inlineText(node, source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			readLabels(node, source, &n)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return n
}

func readLabels(p *ast.Paragraph, source []byte, n *Note) {
	for child := p.FirstChild(); child != nil; child = child.NextSibling() {
		em, ok := child.(*ast.Emphasis)
		if !ok || em.Level != 2 {
			continue
		}
		var target *string
		switch strings.TrimSpace(inlineText(em, source)) {
		case labelReleaseDate:
			target = &n.Date
		case labelAnnouncement:
			target = &n.URL
		default:
			continue
		}
		var value strings.Builder
		for next := em.NextSibling(); next != nil; next = next.NextSibling() {
			if e, ok := next.(*ast.Emphasis); ok && e.Level == 2 {
				break
			}
			value.WriteString(inlineText(next, source))
			if t, ok := next.(*ast.Text); ok && (t.SoftLineBreak() || t.HardLineBreak()) {
				break
			}
		}
		if *target == "" {
			*target = strings.TrimSpace(value.String())
		}
	}
}

func inlineText(node ast.Node, source []byte) string {
	switch node := node.(type) {
	case *ast.Text:
		return string(node.Segment.Value(source))
	case *ast.String:
		return string(node.Value)
	case *ast.AutoLink:
		return string(node.URL(source))
	}
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		b.WriteString(inlineText(c, source))
	}
	return b.String()
}
