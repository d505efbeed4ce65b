package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizer_CanonicalizesCaseAndSpace(t *testing.T) {
	type mode string
	n := NewNormalizer(map[string]mode{"dev": "dev", "prod": "prod"}, "prod")

	require.Equal(t, mode("dev"), n.Normalize("Dev"))
	require.Equal(t, mode("dev"), n.Normalize("  DEV "))
	require.Equal(t, mode("prod"), n.Normalize("unknown"))
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := NewNormalizer(map[string]int{"leadership": 1, "reviewer": 2}, 0)

	v, err := n.NormalizeWithError("Leadership")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	_, err = n.NormalizeWithError("chair")
	require.Error(t, err)
	require.Contains(t, err.Error(), "leadership, reviewer")
}

func TestFold_StripsDiacritics(t *testing.T) {
	require.Equal(t, "Muller", Fold("Müller"))
	require.Equal(t, "Jose Garcia", Fold("José García"))
	require.Equal(t, "plain", Fold("plain"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":              "hello-world",
		"Schrödinger's Cat":          "schrodinger-s-cat",
		"  Multiple   Spaces  ":      "multiple-spaces",
		"2024 in Review":             "2024-in-review",
		"already-a-slug":             "already-a-slug",
		"Trailing punctuation...":    "trailing-punctuation",
		"CamelCase Stays Lowercased": "camelcase-stays-lowercased",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}
