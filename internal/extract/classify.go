// Package extract mirrors an installation tree into a moddable reference
// tree: engine binaries are dropped, binary assets become hash/size
// placeholders, and everything else is copied verbatim.
package extract

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"modbase/internal/config"
)

// Disposition is what happens to one file.
type Disposition int

const (
	Copy Disposition = iota
	Placeholder
	Skip
)

func (d Disposition) String() string {
	switch d {
	case Copy:
		return "copy"
	case Placeholder:
		return "placeholder"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// Classifier maps a file to its disposition. It depends only on the
// extension lists and ignore globs it was built with.
type Classifier struct {
	skip        map[string]struct{}
	placeholder map[string]struct{}
	ignore      []string
}

// NewClassifier builds a classifier. Extensions are matched case
// insensitively with or without a leading dot. Ignore globs use doublestar
// syntax against slash-separated relative paths; matches are skipped.
func NewClassifier(skip, placeholder, ignoreGlobs []string) (*Classifier, error) {
	c := &Classifier{
		skip:        extensionSet(skip),
		placeholder: extensionSet(placeholder),
	}
	for _, glob := range ignoreGlobs {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid ignore glob %q", glob)
		}
		c.ignore = append(c.ignore, glob)
	}
	return c, nil
}

func extensionSet(values []string) map[string]struct{} {
	normalized := config.NormalizeExtensions(values)
	set := make(map[string]struct{}, len(normalized))
	for _, ext := range normalized {
		set[ext] = struct{}{}
	}
	return set
}

// Classify returns the disposition for rel, a path relative to the
// installation root.
func (c *Classifier) Classify(rel string) Disposition {
	rel = filepath.ToSlash(rel)
	for _, glob := range c.ignore {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return Skip
		}
	}
	ext := strings.ToLower(path.Ext(rel))
	if _, ok := c.skip[ext]; ok {
		return Skip
	}
	if _, ok := c.placeholder[ext]; ok {
		return Placeholder
	}
	return Copy
}

// ParseExtensionList splits a comma-separated override such as
// "png,.dds, wav" into extensions.
func ParseExtensionList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	return config.NormalizeExtensions(strings.Split(list, ","))
}
