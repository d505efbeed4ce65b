// Package server runs the development HTTP server: it serves the built site,
// watches the source tree, and rebuilds on change.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/folio/internal/observability"
)

// Options configures the development server.
type Options struct {
	// Addr is the listen address. Defaults to ":8000".
	Addr string

	// SiteDir is the built output directory to serve.
	SiteDir string

	// WatchDirs are source directories whose changes trigger a rebuild.
	WatchDirs []string

	// WatchFiles are individual files (config.yaml, publications.bib)
	// whose changes trigger a rebuild.
	WatchFiles []string

	// Rebuild runs one site build. Called on startup-triggering changes
	// and periodic refreshes, never concurrently with itself.
	Rebuild func(ctx context.Context) error

	// RebuildEvery enables a periodic rebuild in addition to file
	// watching. Zero disables it.
	RebuildEvery time.Duration

	// Metrics, when non-nil, is mounted at /metrics.
	Metrics http.Handler

	// Debounce coalesces rapid change bursts. Defaults to 500ms.
	Debounce time.Duration
}

// Server is the development server.
type Server struct {
	opts Options

	// rebuildMu serializes rebuilds; the watch loop and the periodic job
	// must not write the output directory at the same time.
	rebuildMu sync.Mutex
}

// New creates a development server.
func New(opts Options) (*Server, error) {
	if opts.SiteDir == "" {
		return nil, fmt.Errorf("site directory is required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	if opts.Debounce == 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Server{opts: opts}, nil
}

// Handler returns the HTTP handler serving the site (and metrics if enabled).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics)
	}
	mux.Handle("/", http.FileServer(http.Dir(s.opts.SiteDir)))
	return mux
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.opts.Rebuild != nil && (len(s.opts.WatchDirs) > 0 || len(s.opts.WatchFiles) > 0) {
		watcher, err := newWatcher(s.opts.WatchDirs, s.opts.WatchFiles, s.opts.Debounce)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go s.rebuildLoop(ctx, watcher.Changes)
	}

	if s.opts.RebuildEvery > 0 && s.opts.Rebuild != nil {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(s.opts.RebuildEvery),
			gocron.NewTask(func() { s.runRebuild(ctx, "periodic") }),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule periodic rebuild: %w", err)
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
	}

	httpServer := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Development server listening", slog.String("addr", s.opts.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// rebuildLoop consumes debounced change notifications.
func (s *Server) rebuildLoop(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-changes:
			if !ok {
				return
			}
			observability.InfoContext(ctx, "Source change detected", slog.String("path", path))
			s.runRebuild(ctx, "watch")
		}
	}
}

func (s *Server) runRebuild(ctx context.Context, trigger string) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	if err := s.opts.Rebuild(ctx); err != nil {
		observability.ErrorContext(ctx, "Rebuild failed",
			slog.String("trigger", trigger),
			slog.String("error", err.Error()))
		return
	}
	observability.InfoContext(ctx, "Site rebuilt",
		slog.String("trigger", trigger),
		slog.Duration("duration", time.Since(start)))
}
