package build

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/folio/internal/bibtex"
	"git.home.luguber.info/inful/folio/internal/content"
	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/markdown"
	"git.home.luguber.info/inful/folio/internal/observability"
	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/site"
)

// DefaultBuildService is the standard implementation of BuildService. It
// orchestrates parse → aggregate → render → copy static → validate, collecting
// per-item issues into the report and failing only on fatal errors.
type DefaultBuildService struct {
	renderer  Renderer
	validator Validator
	history   HistorySink
	recorder  observability.Recorder
}

// NewBuildService creates a DefaultBuildService. The renderer must be set via
// WithRenderer before Run.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder: observability.NoopRecorder{},
	}
}

// WithRenderer sets the HTML renderer.
func (s *DefaultBuildService) WithRenderer(r Renderer) *DefaultBuildService {
	s.renderer = r
	return s
}

// WithValidator sets the output validator for the validate stage.
func (s *DefaultBuildService) WithValidator(v Validator) *DefaultBuildService {
	s.validator = v
	return s
}

// WithHistory sets the optional build-history sink.
func (s *DefaultBuildService) WithHistory(h HistorySink) *DefaultBuildService {
	s.history = h
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r observability.Recorder) *DefaultBuildService {
	s.recorder = r
	return s
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	report := NewReport(req.Mode)
	result := &BuildResult{Report: report}

	ctx = observability.WithBuildID(ctx, report.BuildID)

	fail := func(err *foliberrors.ClassifiedError) (*BuildResult, error) {
		report.Finish(true, req.Options.Strict)
		result.Duration = report.Duration
		s.recorder.IncBuildOutcome(string(OutcomeFailed))
		return result, err
	}

	if req.Config == nil {
		return fail(foliberrors.ConfigError("config required").Fatal().Build())
	}
	if s.renderer == nil {
		return fail(foliberrors.ConfigError("renderer required").Fatal().Build())
	}

	cfg := req.Config
	layout := newLayout(req)
	result.OutputPath = layout.output

	md, err := markdown.NewRenderer(markdown.Options{Extensions: cfg.Site.MarkdownExtensions})
	if err != nil {
		return fail(foliberrors.WrapError(err, foliberrors.CategoryConfig, "invalid markdown extension configuration").Fatal().Build())
	}

	rc := paths.Context{
		Mode:       req.Mode,
		BaseURL:    cfg.Site.BaseURL,
		StaticRoot: layout.static,
	}

	// Stage 1: Prepare output directory. Not being able to write here is
	// one of the two genuinely fatal conditions.
	stageStart := time.Now()
	ctx = observability.WithStage(ctx, string(StagePrepareOutput))
	if err := os.MkdirAll(layout.output, 0o755); err != nil {
		return fail(foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "output directory is not writable").
			Fatal().WithContext("path", layout.output).Build())
	}
	s.recorder.ObserveStageDuration(string(StagePrepareOutput), time.Since(stageStart))

	// Stage 2: Parse content. Individual documents and BibTeX entries fail
	// soft; their issues land in the report and the build continues.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, string(StageParseContent))
	loader := content.NewLoader(md)

	bio, bioErr := loader.LoadBio(layout.content)
	if bioErr != nil {
		s.collect(ctx, report, StageParseContent, bioErr)
	}

	var posts content.LoadResult
	if cfg.BlogEnabled() {
		posts = loader.LoadDir(filepath.Join(layout.content, *cfg.Site.BlogDir))
		report.AddAll(StageParseContent, posts.Issues)
	}
	pages := loader.LoadDir(filepath.Join(layout.content, "pages"))
	report.AddAll(StageParseContent, pages.Issues)

	pubs := s.loadPublications(ctx, layout, cfg.Publications.HighlightAuthors, report)

	observability.InfoContext(ctx, "Content parsed",
		slog.Int("posts", len(posts.Documents)),
		slog.Int("pages", len(pages.Documents)),
		slog.Int("publications", len(pubs)))
	s.recorder.ObserveStageDuration(string(StageParseContent), time.Since(stageStart))

	// Stage 3: Aggregate into the site model. Aggregation is total; it
	// cannot fail, only warn.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, string(StageAggregate))
	model, aggIssues := site.New(md).Aggregate(site.Inputs{
		Config:       cfg,
		Bio:          bio,
		Posts:        posts.Documents,
		Pages:        pages.Documents,
		Publications: pubs,
	}, rc)
	report.AddAll(StageAggregate, aggIssues)
	result.Model = model
	s.recorder.ObserveStageDuration(string(StageAggregate), time.Since(stageStart))

	// Stage 4: Render.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, string(StageRender))
	pagesRendered, err := s.renderer.RenderSite(model, layout.output, rc)
	if err != nil {
		return fail(foliberrors.WrapError(err, foliberrors.CategoryRender, "site rendering failed").Fatal().Build())
	}
	report.PagesRendered = pagesRendered
	s.recorder.SetPagesRendered(pagesRendered)
	observability.InfoContext(ctx, "Site rendered", slog.Int("pages", pagesRendered))
	s.recorder.ObserveStageDuration(string(StageRender), time.Since(stageStart))

	// Stage 5: Copy static assets.
	stageStart = time.Now()
	ctx = observability.WithStage(ctx, string(StageCopyStatic))
	if err := copyStatic(layout.static, filepath.Join(layout.output, "static")); err != nil {
		return fail(foliberrors.WrapError(err, foliberrors.CategoryFileSystem, "copying static assets failed").
			Fatal().WithContext("path", layout.static).Build())
	}
	s.recorder.ObserveStageDuration(string(StageCopyStatic), time.Since(stageStart))

	// Stage 6: Validate output.
	if s.validator != nil && !req.Options.SkipValidation {
		stageStart = time.Now()
		ctx = observability.WithStage(ctx, string(StageValidate))
		report.AddAll(StageValidate, s.validator.ValidateOutput(ctx, layout.output, req.Mode))
		s.recorder.ObserveStageDuration(string(StageValidate), time.Since(stageStart))
	}

	report.Finish(false, req.Options.Strict)
	result.Duration = report.Duration

	for _, issue := range report.Issues {
		s.recorder.IncIssue(string(issue.Category), string(issue.Stage), string(issue.Severity))
	}
	s.recorder.IncBuildOutcome(string(report.Outcome))
	s.recorder.ObserveBuildDuration(report.Duration)

	if s.history != nil {
		if err := s.history.RecordBuild(report); err != nil {
			observability.WarnContext(ctx, "Failed to record build history", slog.String("error", err.Error()))
		}
	}

	observability.InfoContext(ctx, "Build finished",
		slog.String("outcome", string(report.Outcome)),
		slog.Int("warnings", len(report.Warnings())),
		slog.Duration("duration", report.Duration))
	return result, nil
}

// loadPublications parses the BibTeX file; a missing file disables the
// publications section with a warning rather than failing the build.
func (s *DefaultBuildService) loadPublications(ctx context.Context, layout projectLayout, highlightAuthors []string, report *BuildReport) []bibtex.Publication {
	if _, err := os.Stat(layout.bib); os.IsNotExist(err) {
		observability.DebugContext(ctx, "No publications file", slog.String("path", layout.bib))
		return nil
	}

	res, err := bibtex.ParseFile(layout.bib, bibtex.Options{HighlightAuthors: highlightAuthors})
	if err != nil {
		s.collect(ctx, report, StageParseContent, err)
		return nil
	}
	report.AddAll(StageParseContent, res.Issues)
	return res.Publications
}

// collect routes an error into the report, downgrading unclassified errors to
// parse warnings.
func (s *DefaultBuildService) collect(ctx context.Context, report *BuildReport, stage StageName, err error) {
	observability.WarnContext(ctx, "Build issue", slog.String("error", err.Error()))
	if classified, ok := foliberrors.AsClassified(err); ok {
		report.Add(stage, classified)
		return
	}
	report.Add(stage, foliberrors.WrapError(err, foliberrors.CategoryParse, "content issue").Warning().Build())
}

// projectLayout fixes the directory conventions of a folio project root.
type projectLayout struct {
	content string
	static  string
	bib     string
	output  string
}

func newLayout(req BuildRequest) projectLayout {
	cfg := req.Config
	root := req.RootDir

	output := req.OutputDir
	if output == "" {
		output = joinRoot(root, cfg.Build.Output)
	}
	return projectLayout{
		content: filepath.Join(root, "content"),
		static:  joinRoot(root, cfg.Build.StaticDir),
		bib:     joinRoot(root, cfg.Publications.BibPath),
		output:  output,
	}
}

func joinRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// copyStatic mirrors the static directory into the output tree. A missing
// source directory is fine; the site simply has no assets.
func copyStatic(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
