package linkverify

import "time"

// BrokenLinkEvent is published for each broken internal link discovered
// during validation, for downstream processing (dashboards, issue creation).
type BrokenLinkEvent struct {
	URL        string    `json:"url"`
	SourcePath string    `json:"source_path"` // Page path relative to the output directory
	Tag        string    `json:"tag"`
	Mode       string    `json:"mode"`
	BuildID    string    `json:"build_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
