package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/folio/internal/build"
	"git.home.luguber.info/inful/folio/internal/history"
	"git.home.luguber.info/inful/folio/internal/paths"
)

func TestShortID(t *testing.T) {
	require.Equal(t, "0b5e8c31", shortID("0b5e8c31-9f42-4c77-a2d1-3e6f8a90c512"))
	require.Equal(t, "ab12", shortID("ab12"))
	require.Equal(t, "", shortID(""))
}

func TestRunHistory_ToleratesShortBuildIDs(t *testing.T) {
	root := t.TempDir()
	CLI.Root = root
	CLI.Config = "config.yaml"

	cfgYAML := "author:\n  name: Test\nsite:\n  base_url: https://example.com\nbuild:\n  history_db: history.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte(cfgYAML), 0o644))

	store, err := history.Open(filepath.Join(root, "history.db"))
	require.NoError(t, err)

	// Rows written by other tools may carry build IDs shorter than the
	// usual UUID.
	report := build.NewReport(paths.ModeProd)
	report.BuildID = "ab12"
	report.Finish(false, false)
	require.NoError(t, store.RecordBuild(report))
	require.NoError(t, store.Close())

	require.NoError(t, runHistory(10))
}
