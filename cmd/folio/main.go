package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/folio/internal/build"
	"git.home.luguber.info/inful/folio/internal/config"
	"git.home.luguber.info/inful/folio/internal/deploy"
	"git.home.luguber.info/inful/folio/internal/history"
	"git.home.luguber.info/inful/folio/internal/linkverify"
	"git.home.luguber.info/inful/folio/internal/logfields"
	"git.home.luguber.info/inful/folio/internal/observability"
	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/render"
	"git.home.luguber.info/inful/folio/internal/server"
	"git.home.luguber.info/inful/folio/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Root    string `short:"C" help:"Project root directory" default:"."`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Version kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Output string `short:"o" help:"Output directory (overrides config)"`
		Mode   string `short:"m" help:"Build mode: dev or prod" default:"prod"`
		Strict bool   `help:"Treat warnings as a build failure"`
	} `cmd:"" help:"Build the site into the output directory"`

	Init struct {
		Force bool `help:"Overwrite existing files"`
	} `cmd:"" help:"Initialize a new site project in the root directory"`

	Serve struct {
		Addr         string        `short:"a" help:"Listen address" default:":8000"`
		Metrics      bool          `help:"Expose Prometheus metrics at /metrics"`
		RebuildEvery time.Duration `help:"Also rebuild on a fixed interval (e.g. 5m)"`
	} `cmd:"" help:"Serve the site locally and rebuild on change"`

	Validate struct{} `cmd:"" help:"Build in prod mode with warnings treated as errors"`

	Deploy struct {
		Remote string `short:"r" help:"Git remote URL to publish to" required:""`
		Branch string `short:"b" help:"Target branch" default:"gh-pages"`
		CNAME  string `help:"Custom domain written as a CNAME file"`
		Token  string `help:"HTTPS auth token (or set FOLIO_DEPLOY_TOKEN)" env:"FOLIO_DEPLOY_TOKEN"`
	} `cmd:"" help:"Build in prod mode and push the output to a git branch"`

	History struct {
		Limit int `short:"n" help:"Number of builds to show" default:"10"`
	} `cmd:"" help:"Show recent builds from the history database"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{
		"version": fmt.Sprintf("folio %s (commit %s, built %s)",
			version.Version, version.GitCommit, version.BuildTime),
	})

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild(CLI.Build.Output, paths.ParseMode(CLI.Build.Mode), build.BuildOptions{Strict: CLI.Build.Strict})
	case "init":
		err = runInit(CLI.Root, CLI.Init.Force)
	case "serve":
		err = runServe()
	case "validate":
		err = runBuild("", paths.ModeProd, build.BuildOptions{Strict: true})
	case "deploy":
		err = runDeploy()
	case "history":
		err = runHistory(CLI.History.Limit)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

func configPath() string {
	if filepath.IsAbs(CLI.Config) {
		return CLI.Config
	}
	return filepath.Join(CLI.Root, CLI.Config)
}

// newService assembles the build service with the renderer, validator and
// optional history/event sinks the configuration asks for. The returned
// cleanup closes any opened resources.
func newService(cfg *config.Config, rec observability.Recorder) (*build.DefaultBuildService, func(), error) {
	svc := build.NewBuildService().
		WithRenderer(render.New()).
		WithRecorder(rec)

	cleanup := func() {}

	verifier := linkverify.NewVerifier(cfg.Site.BaseURL)
	if cfg.LinkEvents != nil && cfg.LinkEvents.Enabled {
		publisher, err := linkverify.NewNATSPublisher(cfg.LinkEvents)
		if err != nil {
			return nil, nil, fmt.Errorf("connect link event publisher: %w", err)
		}
		verifier = verifier.WithPublisher(publisher)
		cleanup = publisher.Close
	}
	svc = svc.WithValidator(verifier)

	if cfg.Build.HistoryDB != "" {
		store, err := history.Open(filepath.Join(CLI.Root, cfg.Build.HistoryDB))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open history database: %w", err)
		}
		svc = svc.WithHistory(store)
		prev := cleanup
		cleanup = func() {
			_ = store.Close()
			prev()
		}
	}

	return svc, cleanup, nil
}

func runBuild(outputDir string, mode paths.Mode, opts build.BuildOptions) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(cfg, observability.NoopRecorder{})
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Run(context.Background(), build.BuildRequest{
		Config:    cfg,
		RootDir:   CLI.Root,
		OutputDir: outputDir,
		Mode:      mode,
		Options:   opts,
	})
	if err != nil {
		return err
	}

	for _, issue := range result.Report.Issues {
		slog.Warn("Build issue", slog.String("detail", issue.String()))
	}
	slog.Info("Build finished",
		slog.String("outcome", string(result.Report.Outcome)),
		logfields.Mode(string(mode)),
		slog.String("output", result.OutputPath),
		logfields.Count(result.Report.PagesRendered),
		slog.Duration("duration", result.Duration))

	if !result.Succeeded() {
		return fmt.Errorf("build completed with outcome %s", result.Report.Outcome)
	}
	return nil
}

func runServe() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	var rec observability.Recorder = observability.NoopRecorder{}
	var metricsHandler http.Handler
	if CLI.Serve.Metrics {
		registry := prometheus.NewRegistry()
		rec = observability.NewPrometheusRecorder(registry)
		metricsHandler = observability.MetricsHandler(registry)
	}

	svc, cleanup, err := newService(cfg, rec)
	if err != nil {
		return err
	}
	defer cleanup()

	outputDir := filepath.Join(CLI.Root, cfg.Build.Output)
	rebuild := func(ctx context.Context) error {
		// Skip link validation during watch rebuilds; the validate
		// command covers it before publishing.
		result, err := svc.Run(ctx, build.BuildRequest{
			Config:  cfg,
			RootDir: CLI.Root,
			Mode:    paths.ModeDev,
			Options: build.BuildOptions{SkipValidation: true},
		})
		if err != nil {
			return err
		}
		for _, issue := range result.Report.Issues {
			slog.Warn("Build issue", slog.String("detail", issue.String()))
		}
		return nil
	}

	// Initial build before serving.
	if err := rebuild(context.Background()); err != nil {
		return err
	}

	watchDirs := []string{
		filepath.Join(CLI.Root, "content"),
		filepath.Join(CLI.Root, cfg.Build.StaticDir),
	}
	watchFiles := []string{configPath()}
	if cfg.Publications.BibPath != "" {
		watchFiles = append(watchFiles, filepath.Join(CLI.Root, cfg.Publications.BibPath))
	}

	srv, err := server.New(server.Options{
		Addr:         CLI.Serve.Addr,
		SiteDir:      outputDir,
		WatchDirs:    watchDirs,
		WatchFiles:   watchFiles,
		Rebuild:      rebuild,
		RebuildEvery: CLI.Serve.RebuildEvery,
		Metrics:      metricsHandler,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return srv.Run(ctx)
}

func runDeploy() error {
	if err := runBuild("", paths.ModeProd, build.BuildOptions{}); err != nil {
		return err
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	outputDir := filepath.Join(CLI.Root, cfg.Build.Output)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return deploy.Publish(ctx, outputDir, deploy.Options{
		RemoteURL:   CLI.Deploy.Remote,
		Branch:      CLI.Deploy.Branch,
		CNAME:       CLI.Deploy.CNAME,
		Token:       CLI.Deploy.Token,
		AuthorName:  cfg.Author.Name,
		AuthorEmail: cfg.Author.Email,
	})
}

func runHistory(limit int) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	if cfg.Build.HistoryDB == "" {
		return fmt.Errorf("build.history_db is not configured")
	}

	store, err := history.Open(filepath.Join(CLI.Root, cfg.Build.HistoryDB))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No builds recorded yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-7s  %-7s  %4d pages  %3d warn  %2d err  %s\n",
			e.StartedAt.Format("2006-01-02 15:04:05"),
			e.Mode, e.Outcome, e.PagesRendered, e.Warnings, e.Errors, shortID(e.BuildID))
	}
	return nil
}

// shortID abbreviates a build ID for display. IDs are normally UUIDs, but
// rows written by other tools may carry shorter ones.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
