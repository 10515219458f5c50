// Property-based tests for suffix derivation.
package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDeriveSuffixes_Examples(t *testing.T) {
	cases := []struct {
		tier1   string
		suffix3 string
		suffix2 string
	}{
		{"123456", "456", "56"},
		{"000100", "100", "00"},
		{"900000", "000", "00"},
		{"000001", "001", "01"},
	}
	for _, tc := range cases {
		s3, s2 := DeriveSuffixes(tc.tier1)
		assert.Equal(t, tc.suffix3, s3, "tier1=%s", tc.tier1)
		assert.Equal(t, tc.suffix2, s2, "tier1=%s", tc.tier1)
	}
}

// TestDeriveSuffixesProperty checks that for any six-digit number the
// derived values are its last three and last two characters, that the
// two-digit suffix is itself a suffix of the three-digit one, and that
// derivation is deterministic.
func TestDeriveSuffixesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tier1 := rapid.StringMatching(`[0-9]{6}`).Draw(t, "tier1")

		s3, s2 := DeriveSuffixes(tier1)

		if len(s3) != 3 || len(s2) != 2 {
			t.Fatalf("unexpected suffix lengths: %q, %q", s3, s2)
		}
		if !strings.HasSuffix(tier1, s3) {
			t.Fatalf("%q is not a suffix of %q", s3, tier1)
		}
		if !strings.HasSuffix(s3, s2) {
			t.Fatalf("%q is not a suffix of %q", s2, s3)
		}

		// Deterministic
		again3, again2 := DeriveSuffixes(tier1)
		if again3 != s3 || again2 != s2 {
			t.Fatalf("derivation not deterministic for %q", tier1)
		}
	})
}
