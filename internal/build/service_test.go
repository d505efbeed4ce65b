package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/folio/internal/config"
	foliberrors "git.home.luguber.info/inful/folio/internal/foundation/errors"
	"git.home.luguber.info/inful/folio/internal/paths"
	"git.home.luguber.info/inful/folio/internal/site"
)

type stubRenderer struct {
	pages int
	err   error
	calls int
	model *site.Model
}

func (r *stubRenderer) RenderSite(model *site.Model, outputDir string, rc paths.Context) (int, error) {
	r.calls++
	r.model = model
	return r.pages, r.err
}

type stubValidator struct {
	issues []*foliberrors.ClassifiedError
}

func (v *stubValidator) ValidateOutput(_ context.Context, _ string, _ paths.Mode) []*foliberrors.ClassifiedError {
	return v.issues
}

type stubHistory struct {
	reports []*BuildReport
}

func (h *stubHistory) RecordBuild(report *BuildReport) error {
	h.reports = append(h.reports, report)
	return nil
}

func projectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content", "blog"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "static", "photos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "static", "photos", "me.jpg"), []byte("jpg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "index.md"), []byte("---\ntitle: About\n---\nBio text.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "blog", "hello.md"), []byte("---\ntitle: Hello\ndate: 2024-01-01\n---\nFirst post.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "publications.bib"),
		[]byte("@article{doe2024, title = {T}, author = {Doe, Jane}, journal = {J}, year = {2024}}\n"), 0o644))
	return root
}

func testRequest(t *testing.T, root string) BuildRequest {
	t.Helper()
	data := "author:\n  name: Jane Doe\nsite:\n  base_url: https://janedoe.dev\n"
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	return BuildRequest{Config: loaded, RootDir: root, Mode: paths.ModeProd}
}

func TestRun_RequiresConfig(t *testing.T) {
	svc := NewBuildService().WithRenderer(&stubRenderer{})
	result, err := svc.Run(context.Background(), BuildRequest{})
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, result.Report.Outcome)
}

func TestRun_RequiresRenderer(t *testing.T) {
	root := projectRoot(t)
	result, err := NewBuildService().Run(context.Background(), testRequest(t, root))
	require.Error(t, err)
	require.False(t, result.Succeeded())
}

func TestRun_SuccessfulBuild(t *testing.T) {
	root := projectRoot(t)
	renderer := &stubRenderer{pages: 5}
	svc := NewBuildService().WithRenderer(renderer)

	result, err := svc.Run(context.Background(), testRequest(t, root))
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, result.Report.Outcome)
	require.True(t, result.Succeeded())
	require.Equal(t, 1, renderer.calls)
	require.Equal(t, 5, result.Report.PagesRendered)
	require.NotEmpty(t, result.Report.BuildID)

	// Model made it out of aggregation.
	require.NotNil(t, result.Model)
	require.Len(t, renderer.model.Posts, 1)
	require.Len(t, renderer.model.Years, 1)
	require.Contains(t, renderer.model.BioHTML, "Bio text.")

	// Static assets mirrored into the output tree.
	copied := filepath.Join(result.OutputPath, "static", "photos", "me.jpg")
	_, statErr := os.Stat(copied)
	require.NoError(t, statErr)
}

func TestRun_ParseWarningsYieldWarningOutcome(t *testing.T) {
	root := projectRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "blog", "broken.md"),
		[]byte("---\ntitle: Unclosed\n"), 0o644))

	result, err := NewBuildService().WithRenderer(&stubRenderer{}).Run(context.Background(), testRequest(t, root))
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, result.Report.Outcome)
	require.True(t, result.Succeeded())
	require.NotEmpty(t, result.Report.Warnings())
}

func TestRun_StrictModeFailsOnWarnings(t *testing.T) {
	root := projectRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "content", "blog", "broken.md"),
		[]byte("---\ntitle: Unclosed\n"), 0o644))

	req := testRequest(t, root)
	req.Options.Strict = true
	result, err := NewBuildService().WithRenderer(&stubRenderer{}).Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, result.Report.Outcome)
	require.False(t, result.Succeeded())
}

func TestRun_RenderFailureIsFatal(t *testing.T) {
	root := projectRoot(t)
	renderer := &stubRenderer{err: errors.New("template exploded")}

	result, err := NewBuildService().WithRenderer(renderer).Run(context.Background(), testRequest(t, root))
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, result.Report.Outcome)
	require.True(t, foliberrors.HasCategory(err, foliberrors.CategoryRender))
}

func TestRun_ValidatorIssuesCollected(t *testing.T) {
	root := projectRoot(t)
	validator := &stubValidator{issues: []*foliberrors.ClassifiedError{
		foliberrors.ResolveError("broken link").WithContext("ref", "x.html").Build(),
	}}

	result, err := NewBuildService().
		WithRenderer(&stubRenderer{}).
		WithValidator(validator).
		Run(context.Background(), testRequest(t, root))
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, result.Report.Outcome)
	require.Equal(t, StageValidate, result.Report.Issues[len(result.Report.Issues)-1].Stage)
}

func TestRun_SkipValidation(t *testing.T) {
	root := projectRoot(t)
	validator := &stubValidator{issues: []*foliberrors.ClassifiedError{
		foliberrors.ResolveError("broken link").Build(),
	}}

	req := testRequest(t, root)
	req.Options.SkipValidation = true
	result, err := NewBuildService().
		WithRenderer(&stubRenderer{}).
		WithValidator(validator).
		Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, result.Report.Outcome)
}

func TestRun_HistorySinkReceivesReport(t *testing.T) {
	root := projectRoot(t)
	history := &stubHistory{}

	result, err := NewBuildService().
		WithRenderer(&stubRenderer{pages: 2}).
		WithHistory(history).
		Run(context.Background(), testRequest(t, root))
	require.NoError(t, err)
	require.Len(t, history.reports, 1)
	require.Equal(t, result.Report.BuildID, history.reports[0].BuildID)
}

func TestReport_FinishOutcomes(t *testing.T) {
	r := NewReport(paths.ModeProd)
	r.Finish(false, false)
	require.Equal(t, OutcomeSuccess, r.Outcome)

	r = NewReport(paths.ModeProd)
	r.Add(StageParseContent, foliberrors.ParseError("bad entry").Build())
	r.Finish(false, false)
	require.Equal(t, OutcomeWarning, r.Outcome)

	r = NewReport(paths.ModeProd)
	r.Add(StageParseContent, foliberrors.ParseError("bad entry").Build())
	r.Finish(false, true)
	require.Equal(t, OutcomeFailed, r.Outcome)

	r = NewReport(paths.ModeProd)
	r.Finish(true, false)
	require.Equal(t, OutcomeFailed, r.Outcome)
}

func TestReport_IssueAttribution(t *testing.T) {
	r := NewReport(paths.ModeDev)
	r.Add(StageParseContent, foliberrors.ParseError("skipped").WithContext("path", "blog/x.md").Build())
	require.Equal(t, "blog/x.md", r.Issues[0].Source)
	require.Equal(t, foliberrors.SeverityWarning, r.Issues[0].Severity)
}
