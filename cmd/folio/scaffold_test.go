package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/folio/internal/config"
)

func TestRunInit_CreatesProject(t *testing.T) {
	root := t.TempDir()
	CLI.Config = "config.yaml"

	require.NoError(t, runInit(root, false))

	for _, rel := range []string{
		"config.yaml",
		"content/index.md",
		"content/blog/welcome.md",
		"publications.bib",
		"static/photos",
		"static/papers",
	} {
		_, err := os.Stat(filepath.Join(root, rel))
		require.NoError(t, err, rel)
	}

	// The generated configuration must load cleanly.
	cfg, err := config.Load(filepath.Join(root, "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, "Your Name", cfg.Author.Name)
	require.True(t, cfg.BlogEnabled())
	require.Len(t, cfg.News, 1)
}

func TestRunInit_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	CLI.Config = "config.yaml"

	require.NoError(t, runInit(root, false))

	err := runInit(root, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	require.NoError(t, runInit(root, true))
}
