package releasenotes

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"modbase/internal/version"
)

// bodyWindow bounds where a body-only version mention must appear.
const bodyWindow = 500

var releasePhrases = []string{"available now", "out now", "released"}

type variantPattern struct {
	text string
	re   *regexp2.Regexp
}

// Matcher decides whether an announcement documents one target version.
type Matcher struct {
	target   version.Version
	variants []variantPattern
	baseline bool
}

// NewMatcher compiles the search variants of target. A version string must
// appear on a word boundary and must not continue with ".<digit>", so 1.12.1
// matches neither "1.12.1.3" nor "1.12.12".
func NewMatcher(target version.Version) (*Matcher, error) {
	m := &Matcher{target: target, baseline: target.IsBaseline()}
	for _, v := range version.SearchVariants(target) {
		expr := `\b` + regexp2.Escape(strings.ToLower(v)) + `(?!\.[0-9])(?:[^0-9]|$)`
		re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("compile version pattern %q: %w", v, err)
		}
		m.variants = append(m.variants, variantPattern{text: v, re: re})
	}
	return m, nil
}

// Variants returns the search strings in the order they are tried.
func (m *Matcher) Variants() []string {
	out := make([]string, len(m.variants))
	for i, v := range m.variants {
		out[i] = v.text
	}
	return out
}

// FindInPage tries each variant in order against the whole page and returns
// the first hit along with the variant that matched.
func (m *Matcher) FindInPage(page []Announcement) (Announcement, string, bool) {
	for _, v := range m.variants {
		for _, a := range page {
			if m.matches(v.re, a) {
				return a, v.text, true
			}
		}
	}
	return Announcement{}, "", false
}

// Matches reports whether a matches any variant.
func (m *Matcher) Matches(a Announcement) bool {
	_, _, ok := m.FindInPage([]Announcement{a})
	return ok
}

func (m *Matcher) matches(re *regexp2.Regexp, a Announcement) bool {
	if a.Title == "" || a.Body == "" {
		return false
	}
	if a.IsPreview() {
		return false
	}
	title := strings.ToLower(a.Title)
	body := strings.ToLower(a.Body)

	if found(re, title) {
		return !m.hotfixExcluded(title, body)
	}

	if !containsAny(title, releasePhrases) {
		return false
	}
	if !found(re, body) || !found(re, firstRunes(body, bodyWindow)) {
		return false
	}
	return !m.hotfixExcluded(title, body)
}

// hotfixExcluded keeps x.y.0 baseline notes from resolving to hotfix posts.
func (m *Matcher) hotfixExcluded(title, body string) bool {
	return m.baseline && (strings.Contains(title, "hotfix") || strings.Contains(body, "hotfix"))
}

func found(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
