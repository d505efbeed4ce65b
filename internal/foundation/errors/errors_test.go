package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError_Defaults(t *testing.T) {
	err := NewError(CategoryParse, "bad frontmatter").Build()

	require.Equal(t, CategoryParse, err.Category())
	require.Equal(t, SeverityError, err.Severity())
	require.Equal(t, "bad frontmatter", err.Message())
	require.Contains(t, err.Error(), "[parse:error]")
}

func TestWrapError_UnwrapsToCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := WrapError(cause, CategoryFileSystem, "cannot read content dir").Build()

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "boom")
}

func TestParseError_DefaultsToWarning(t *testing.T) {
	err := ParseError("entry skipped").Build()

	require.True(t, err.IsWarning())
	require.False(t, err.IsFatal())
}

func TestBuilder_FatalSeverity(t *testing.T) {
	err := ConfigError("config.yaml not found").Fatal().Build()

	require.True(t, err.IsFatal())
	require.True(t, HasSeverity(err, SeverityFatal))
}

func TestWithContext_DoesNotMutateOriginal(t *testing.T) {
	base := ResolveError("asset missing").WithContext("ref", "photos/me.jpg").Build()
	derived := base.WithContext("page", "index.html")

	_, ok := base.Context().Get("page")
	require.False(t, ok)

	page, ok := derived.Context().GetString("page")
	require.True(t, ok)
	require.Equal(t, "index.html", page)

	ref, ok := derived.Context().GetString("ref")
	require.True(t, ok)
	require.Equal(t, "photos/me.jpg", ref)
}

func TestHasCategory_NonClassifiedError(t *testing.T) {
	require.False(t, HasCategory(stderrors.New("plain"), CategoryParse))
}

func TestIs_MatchesCategoryAndMessage(t *testing.T) {
	a := NewError(CategoryRender, "template failed").Build()
	b := NewError(CategoryRender, "template failed").Build()
	c := NewError(CategoryRender, "other").Build()

	require.True(t, stderrors.Is(a, b))
	require.False(t, stderrors.Is(a, c))
}
