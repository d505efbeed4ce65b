package build

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/paths"
)

// Outcome is the overall result of a build.
type Outcome string

const (
	// OutcomeSuccess means the build completed with no issues.
	OutcomeSuccess Outcome = "success"
	// OutcomeWarning means the build completed but collected non-fatal issues.
	OutcomeWarning Outcome = "warning"
	// OutcomeFailed means a fatal error aborted the build.
	OutcomeFailed Outcome = "failed"
)

// Issue is one collected build problem, attributed to the stage that found it.
type Issue struct {
	Stage    StageName
	Source   string
	Message  string
	Category foliberrors.ErrorCategory
	Severity foliberrors.ErrorSeverity
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Stage, i.Source, i.Message)
}

// BuildReport accumulates everything a build run wants to tell the caller:
// per-item warnings, errors, timing, and the derived outcome.
type BuildReport struct {
	BuildID   string
	Mode      paths.Mode
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Outcome Outcome
	Issues  []Issue

	PagesRendered int
}

// NewReport starts a report for one build invocation.
func NewReport(mode paths.Mode) *BuildReport {
	return &BuildReport{
		BuildID:   uuid.NewString(),
		Mode:      mode,
		StartTime: time.Now(),
	}
}

// Add records a classified issue under the given stage.
func (r *BuildReport) Add(stage StageName, err *foliberrors.ClassifiedError) {
	r.Issues = append(r.Issues, Issue{
		Stage:    stage,
		Source:   contextSource(err),
		Message:  err.Message(),
		Category: err.Category(),
		Severity: err.Severity(),
	})
}

// AddAll records a batch of classified issues under the given stage.
func (r *BuildReport) AddAll(stage StageName, errs []*foliberrors.ClassifiedError) {
	for _, err := range errs {
		r.Add(stage, err)
	}
}

// Warnings returns the collected warning-severity issues.
func (r *BuildReport) Warnings() []Issue {
	return r.filter(foliberrors.SeverityWarning)
}

// Errors returns the collected issues at error severity or above.
func (r *BuildReport) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == foliberrors.SeverityError || issue.Severity == foliberrors.SeverityFatal {
			out = append(out, issue)
		}
	}
	return out
}

func (r *BuildReport) filter(severity foliberrors.ErrorSeverity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Finish closes the report and derives the outcome. Under strict mode,
// accumulated warnings fail the build (CI-style validation runs).
func (r *BuildReport) Finish(failed bool, strict bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	switch {
	case failed || len(r.Errors()) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings()) > 0 && strict:
		r.Outcome = OutcomeFailed
	case len(r.Warnings()) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// contextSource pulls the most specific attribution key the error carries.
func contextSource(err *foliberrors.ClassifiedError) string {
	for _, key := range []string{"source", "path", "cite_key", "ref", "slug"} {
		if v, ok := err.Context()[key]; ok {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
