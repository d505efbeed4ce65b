package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const scaffoldConfig = `author:
  name: "Your Name"
  title: "PhD Student"
  affiliation: "Some University"
  email: "you@example.edu"
  tagline: "I work on interesting problems."
  interests:
    - Databases
    - Distributed Systems
  github: "https://github.com/yourname"
  scholar: "https://scholar.google.com/citations?user=XXXX"
  photo: "photos/me.jpg"

site:
  title: "Your Name"
  description: "Personal academic website"
  base_url: "https://yourname.github.io"

publications:
  bib_path: "publications.bib"
  highlight_authors:
    - "Your Name"

news:
  - date: "2026-01-15"
    content: "Website launched with **folio**."

build:
  output: "_site"
  mode: "prod"
`

const scaffoldBio = `---
title: About
---

Write a short bio here. Markdown works, including [links](https://example.com)
and *emphasis*.
`

const scaffoldPost = `---
title: Hello World
date: 2026-01-15
tags: [meta]
---

This is your first blog post. Delete it or make it your own.
`

const scaffoldBib = `@article{yourname2026example,
  title   = {An Example Publication},
  author  = {Your Name and A. Collaborator},
  journal = {Journal of Examples},
  year    = {2026},
}
`

// runInit lays out a minimal project: configuration, a bio page, one blog
// post, a publications file and the static asset directories.
func runInit(root string, force bool) error {
	files := map[string]string{
		CLI.Config:                scaffoldConfig,
		"content/index.md":        scaffoldBio,
		"content/blog/welcome.md": scaffoldPost,
		"publications.bib":        scaffoldBib,
	}
	dirs := []string{
		"static/photos",
		"static/papers",
	}

	for rel, content := range files {
		path := filepath.Join(root, rel)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("Created", slog.String("path", path))
	}
	for _, rel := range dirs {
		if err := os.MkdirAll(filepath.Join(root, rel), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", rel, err)
		}
	}

	slog.Info("Project initialized", slog.String("root", root))
	return nil
}
