// Package model defines the data structures for frame injection scans.
package model

import "time"

// Path represents a file system path.
type Path string

// ExecMode selects how the injected payload is executed in a context.
type ExecMode int

const (
	// ModeSync runs the payload synchronously; its return value is
	// available to the caller as soon as the call returns.
	ModeSync ExecMode = iota
	// ModeAsync runs the payload asynchronously; the call suspends until
	// the payload signals completion through its trailing callback
	// argument.
	ModeAsync
)

// String returns the mode name used in logs and reports.
func (e ExecMode) String() string {
	if e == ModeAsync {
		return "async"
	}

	return "sync"
}

// Visit records one successfully entered execution context during a
// traversal. Visits are numbered in depth-first pre-order; ordinal 0 is
// always the top-level document.
type Visit struct {
	Target    string    `json:"target"`             // page URL the scan was started against
	Location  string    `json:"location,omitempty"` // document.location.href of the entered context, when probeable
	Ordinal   int       `json:"ordinal"`
	Injected  bool      `json:"injected"` // false when the payload run was skipped
	VisitedAt time.Time `json:"visited_at"`
}

// IsRoot reports whether the visit is the top-level document.
func (v Visit) IsRoot() bool {
	return v.Ordinal == 0
}

// CheckResult holds the outcome of a preflight check.
type CheckResult struct {
	PayloadBytes int  // size of the loaded payload source
	BrowserOK    bool // a trivial script round-tripped through the browser
}
