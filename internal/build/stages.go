package build

// StageName identifies one step of the build pipeline. Stage names appear in
// logs, metrics labels, and report issues.
type StageName string

const (
	StagePrepareOutput StageName = "prepare_output"
	StageParseContent  StageName = "parse_content"
	StageAggregate     StageName = "aggregate"
	StageRender        StageName = "render"
	StageCopyStatic    StageName = "copy_static"
	StageValidate      StageName = "validate"
)
