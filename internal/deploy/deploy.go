// Package deploy publishes the built site to a git branch (GitHub Pages
// style): the output directory becomes a single-commit history force-pushed
// to the target branch.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Options controls where and how the site is published.
type Options struct {
	// RemoteURL is the repository the site is pushed to.
	RemoteURL string

	// Branch is the target branch. Defaults to "gh-pages".
	Branch string

	// CNAME, when set, is written as a CNAME file for custom-domain hosting.
	CNAME string

	// Message is the commit message. A timestamped default is used when empty.
	Message string

	// Token authenticates HTTPS pushes. Local and SSH-agent remotes work
	// without it.
	Token string

	// AuthorName and AuthorEmail set the commit author.
	AuthorName  string
	AuthorEmail string
}

func (o *Options) applyDefaults() {
	if o.Branch == "" {
		o.Branch = "gh-pages"
	}
	if o.Message == "" {
		o.Message = "Deploy site " + time.Now().UTC().Format(time.RFC3339)
	}
	if o.AuthorName == "" {
		o.AuthorName = "folio"
	}
	if o.AuthorEmail == "" {
		o.AuthorEmail = "folio@localhost"
	}
}

// Publish commits the output directory and force-pushes it to the target
// branch of the remote.
func Publish(ctx context.Context, outputDir string, opts Options) error {
	opts.applyDefaults()
	if opts.RemoteURL == "" {
		return fmt.Errorf("deploy remote URL is required")
	}

	// GitHub Pages serves the branch through Jekyll unless told not to;
	// folio output is plain HTML.
	if err := os.WriteFile(filepath.Join(outputDir, ".nojekyll"), nil, 0o644); err != nil {
		return fmt.Errorf("write .nojekyll: %w", err)
	}
	if opts.CNAME != "" {
		if err := os.WriteFile(filepath.Join(outputDir, "CNAME"), []byte(opts.CNAME+"\n"), 0o644); err != nil {
			return fmt.Errorf("write CNAME: %w", err)
		}
	}

	repo, err := openOrInit(outputDir)
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage site files: %w", err)
	}

	commit, err := worktree.Commit(opts.Message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit site: %w", err)
	}

	if err := resetRemote(repo, opts.RemoteURL); err != nil {
		return err
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	refSpec := gitcfg.RefSpec(fmt.Sprintf("+%s:refs/heads/%s", head.Name(), opts.Branch))

	pushOpts := &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitcfg.RefSpec{refSpec},
		Force:      true,
		Auth:       authMethod(opts),
	}
	if err := repo.PushContext(ctx, pushOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push to %s: %w", opts.Branch, err)
	}

	slog.Info("Site deployed",
		slog.String("remote", opts.RemoteURL),
		slog.String("branch", opts.Branch),
		slog.String("commit", commit.String()[:8]))
	return nil
}

func openOrInit(dir string) (*git.Repository, error) {
	repo, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open deploy repository: %w", err)
	}
	return repo, nil
}

// resetRemote points origin at the configured URL, replacing any previous
// remote from an earlier deploy.
func resetRemote(repo *git.Repository, url string) error {
	if _, err := repo.Remote("origin"); err == nil {
		if err := repo.DeleteRemote("origin"); err != nil {
			return fmt.Errorf("replace origin remote: %w", err)
		}
	}
	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	}); err != nil {
		return fmt.Errorf("configure origin remote: %w", err)
	}
	return nil
}

func authMethod(opts Options) transport.AuthMethod {
	if opts.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "git", Password: opts.Token}
}
