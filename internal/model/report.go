package model

import "time"

// ScanSummary aggregates the traversal visibility of one target. It holds
// which contexts were entered, not the axe results themselves; result
// interpretation is out of scope for this tool.
type ScanSummary struct {
	Target    string        `json:"target"`
	Mode      string        `json:"mode"`
	Visits    []Visit       `json:"visits"`
	Err       string        `json:"error,omitempty"` // set when the scan aborted with a script-runtime error
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// FrameCount returns the number of non-root contexts entered.
func (s ScanSummary) FrameCount() int {
	count := 0

	for _, v := range s.Visits {
		if !v.IsRoot() {
			count++
		}
	}

	return count
}

// ScanReport is the persisted shape of a whole invocation, one summary per
// target.
type ScanReport struct {
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	Summaries []ScanSummary `json:"summaries"`
}

// CurrentReportVersion identifies the report schema written by this build.
const CurrentReportVersion = 1
