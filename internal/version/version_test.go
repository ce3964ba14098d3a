package version_test

import (
	"errors"
	"slices"
	"testing"

	"modbase/internal/services"
	"modbase/internal/version"
)

func strs(vs []version.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func TestRequiredChain(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1.10.1.2", []string{"1.10.1.2", "1.10.1", "1.10.0"}},
		{"1.10.0", []string{"1.10.0"}},
		{"1.11.3", []string{"1.11.3", "1.11.2", "1.11.1", "1.11.0"}},
		{"2.0.3", []string{"2.0.3", "2.0.2", "2.0.1", "2.0.0"}},
		{"1.10.1", []string{"1.10.1", "1.10.0"}},
		{"1.10.0.3", []string{"1.10.0.3", "1.10.0"}},
		{"1.10.2.0", []string{"1.10.2.0", "1.10.1", "1.10.0"}},
		{"1.12", []string{"1.12"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := strs(version.RequiredChain(version.MustParse(tt.in)))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("RequiredChain(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRequiredChainDescendingWithinMinor(t *testing.T) {
	for _, in := range []string{"1.9.12", "3.4.5.6", "0.1.1", "7.0.0.1"} {
		v := version.MustParse(in)
		chain := version.RequiredChain(v)
		for i := 1; i < len(chain); i++ {
			if chain[i].Compare(chain[i-1]) >= 0 {
				t.Fatalf("%s: chain not strictly descending at %d: %v", in, i, strs(chain))
			}
			if chain[i].Part(0) != v.Part(0) || chain[i].Part(1) != v.Part(1) {
				t.Fatalf("%s: chain crossed major.minor: %v", in, strs(chain))
			}
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "1", "1.", "v1.2", "1.2.3.4.5", "1.2-beta", " . "} {
		_, err := version.Parse(in)
		if err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Parse(%q) error %v not marked as validation", in, err)
		}
	}
}

func TestSlugAndNormalized(t *testing.T) {
	tests := map[string]string{
		"1.10":     "1_10_0_0",
		"1.10.1":   "1_10_1_0",
		"1.10.1.2": "1_10_1_2",
	}
	for in, want := range tests {
		if got := version.MustParse(in).Slug(); got != want {
			t.Fatalf("Slug(%s) = %s, want %s", in, got, want)
		}
	}
	if got := version.MustParse("1.10").String(); got != "1.10" {
		t.Fatalf("String kept %q", got)
	}
}

func TestEqualPadsTrailingZeros(t *testing.T) {
	if !version.MustParse("1.10").Equal(version.MustParse("1.10.0.0")) {
		t.Fatal("expected 1.10 == 1.10.0.0")
	}
	if version.MustParse("1.10.1").Equal(version.MustParse("1.10.0.1")) {
		t.Fatal("expected 1.10.1 != 1.10.0.1")
	}
	if version.MustParse("1.9.0").Compare(version.MustParse("1.10.0")) >= 0 {
		t.Fatal("expected numeric ordering 1.9 < 1.10")
	}
}

func TestSearchVariants(t *testing.T) {
	if got := version.SearchVariants(version.MustParse("1.10.0")); !slices.Equal(got, []string{"1.10.0", "1.10"}) {
		t.Fatalf("variants = %v", got)
	}
	if got := version.SearchVariants(version.MustParse("1.10.1")); !slices.Equal(got, []string{"1.10.1"}) {
		t.Fatalf("variants = %v", got)
	}
}
