// Package version models product release versions (2 to 4 dotted numeric
// components) and resolves the chain of earlier releases whose notes a
// version depends on.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"modbase/internal/services"
)

var pattern = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?(\.[0-9]+)?$`)

// Version is a parsed release version. Comparison uses the numeric parts,
// with missing trailing parts treated as zero; the original text is kept for
// display and search.
type Version struct {
	raw   string
	parts []int
}

// Parse validates and parses s. Invalid input returns an error marked
// services.ErrValidation.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if !pattern.MatchString(trimmed) {
		return Version{}, services.Wrap(services.ErrValidation, "version", "parse",
			fmt.Sprintf("invalid version %q (want x.y, x.y.z or x.y.z.w)", s), nil)
	}
	fields := strings.Split(trimmed, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, services.Wrap(services.ErrValidation, "version", "parse",
				fmt.Sprintf("component %q out of range", f), err)
		}
		parts[i] = n
	}
	return Version{raw: trimmed, parts: parts}, nil
}

// MustParse is Parse for constants in tests and tables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether s is an accepted version string.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func fromParts(parts ...int) Version {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = strconv.Itoa(p)
	}
	return Version{raw: strings.Join(strs, "."), parts: append([]int(nil), parts...)}
}

// String returns the version as it was written.
func (v Version) String() string { return v.raw }

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool { return len(v.parts) == 0 }

// Len is the number of written components.
func (v Version) Len() int { return len(v.parts) }

// Part returns component i, or zero when it was not written.
func (v Version) Part(i int) int {
	if i < 0 || i >= len(v.parts) {
		return 0
	}
	return v.parts[i]
}

// Normalized returns the four-component form, e.g. "1.10" -> "1.10.0.0".
func (v Version) Normalized() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Part(0), v.Part(1), v.Part(2), v.Part(3))
}

// Slug is the normalized form with dots replaced by underscores. It keys
// release-note files.
func (v Version) Slug() string {
	return strings.ReplaceAll(v.Normalized(), ".", "_")
}

// Compare orders versions by their numeric components.
func (v Version) Compare(other Version) int {
	for i := range 4 {
		a, b := v.Part(i), other.Part(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Equal reports numeric equality, so "1.10" equals "1.10.0".
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// IsBaseline reports whether the written version ends in ".0".
func (v Version) IsBaseline() bool {
	return len(v.parts) > 0 && v.parts[len(v.parts)-1] == 0
}

// RequiredChain returns v followed by every earlier release whose notes v
// depends on, newest first:
//
//	1.10.1.2 -> [1.10.1.2 1.10.1 1.10.0]
//	1.11.3   -> [1.11.3 1.11.2 1.11.1 1.11.0]
//	1.10.0   -> [1.10.0]
//
// A nonzero hotfix pulls in its three-part release; a nonzero patch pulls in
// every lower patch down to x.y.0. Major and minor are never changed.
func RequiredChain(v Version) []Version {
	if v.IsZero() {
		return nil
	}
	chain := []Version{v}
	if len(v.parts) == 4 && v.parts[3] > 0 {
		chain = append(chain, fromParts(v.parts[0], v.parts[1], v.parts[2]))
	}
	if len(v.parts) >= 3 && v.parts[2] > 0 {
		for patch := v.parts[2] - 1; patch >= 0; patch-- {
			chain = append(chain, fromParts(v.parts[0], v.parts[1], patch))
		}
	}
	return chain
}

// SearchVariants lists the strings an announcement may use for v: the
// version itself and, for versions ending in ".0", the form with that one
// trailing ".0" removed.
func SearchVariants(v Version) []string {
	variants := []string{v.raw}
	if short, ok := strings.CutSuffix(v.raw, ".0"); ok {
		variants = append(variants, short)
	}
	return variants
}

// Reverse returns a copy of versions in reverse order.
func Reverse(versions []Version) []Version {
	out := make([]Version, len(versions))
	for i, v := range versions {
		out[len(versions)-1-i] = v
	}
	return out
}
