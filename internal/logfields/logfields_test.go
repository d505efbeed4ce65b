package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_NilProducesEmptyValue(t *testing.T) {
	attr := Error(nil)
	require.Equal(t, KeyError, attr.Key)
	require.Equal(t, "", attr.Value.String())
}

func TestError_NonNil(t *testing.T) {
	attr := Error(errors.New("boom"))
	require.Equal(t, "boom", attr.Value.String())
}

func TestHelpers_UseCanonicalKeys(t *testing.T) {
	require.Equal(t, KeyStage, Stage("parse_content").Key)
	require.Equal(t, KeySlug, Slug("my-post").Key)
	require.Equal(t, KeyYear, Year(2024).Key)
}
