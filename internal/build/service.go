// Package build provides the canonical build execution pipeline for folio.
// All execution paths (CLI build/serve/validate, tests) route through
// BuildService.
package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/folio/internal/config"
	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/site"
)

// BuildService is the canonical interface for executing site builds.
type BuildService interface {
	// Run executes a complete build: parse → aggregate → render →
	// copy static → validate. It returns a BuildResult with the report;
	// the error is non-nil only for fatal failures.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// RootDir is the project root holding config.yaml, content/, static/
	// and the publications file.
	RootDir string

	// OutputDir overrides the configured output directory when non-empty.
	OutputDir string

	// Mode selects dev (relative URLs) or prod (absolute URLs).
	Mode paths.Mode

	Options BuildOptions
}

// BuildOptions provides optional build behavior modifiers.
type BuildOptions struct {
	// Strict escalates accumulated warnings into a failing outcome
	// (validate command, CI checks).
	Strict bool

	// SkipValidation disables the link-validation stage (fast dev rebuilds).
	SkipValidation bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Report holds per-issue details, timing, and the derived outcome.
	Report *BuildReport

	// Model is the aggregated site model, present whenever aggregation ran
	// (even for builds that later failed in rendering).
	Model *site.Model

	// OutputPath is the directory the site was written to.
	OutputPath string

	Duration time.Duration
}

// Succeeded reports whether the build outcome allows a zero exit code.
func (r *BuildResult) Succeeded() bool {
	return r.Report != nil && r.Report.Outcome != OutcomeFailed
}

// Renderer turns a site model into HTML files under outputDir. Implemented by
// the render package; declared here so the pipeline does not depend on the
// template layer.
type Renderer interface {
	RenderSite(model *site.Model, outputDir string, rc paths.Context) (pages int, err error)
}

// Validator checks the written output for broken internal references.
type Validator interface {
	ValidateOutput(ctx context.Context, outputDir string, mode paths.Mode) []*foliberrors.ClassifiedError
}

// HistorySink records finished build reports (optional, SQLite-backed).
type HistorySink interface {
	RecordBuild(report *BuildReport) error
}
