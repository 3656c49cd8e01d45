package restore

import "fmt"

// Outcome is the terminal result for one snapshot in a restore pass.
type Outcome string

const (
	// OutcomeRestored means the window was surfaced or positioned.
	OutcomeRestored Outcome = "restored"
	// OutcomeSkipped means the snapshot was given up on; Reason says why.
	OutcomeSkipped Outcome = "skipped"
)

// Reason classifies why a snapshot was skipped, or annotates a restored one.
type Reason string

const (
	// ReasonProgramMissing: the saved executable no longer exists on disk.
	ReasonProgramMissing Reason = "program_missing"
	// ReasonLaunchFailed: the executable exists but could not be started.
	ReasonLaunchFailed Reason = "launch_failed"
	// ReasonWindowTimeout: the process started but never showed a window
	// within the poll budget.
	ReasonWindowTimeout Reason = "window_timeout"
	// ReasonAccessDenied: the window system refused to reposition the window.
	ReasonAccessDenied Reason = "access_denied"
	// ReasonPositionFailed: positioning failed for a non-permission reason.
	ReasonPositionFailed Reason = "position_failed"
	// ReasonMinimizedPolicy: minimized snapshots are not restored.
	ReasonMinimizedPolicy Reason = "minimized_policy"
	// ReasonSessionManaged annotates a restored entry whose app manages its
	// own windows and was only surfaced or launched, never repositioned.
	ReasonSessionManaged Reason = "session_managed"
)

// Entry is the per-snapshot result, in preset order.
type Entry struct {
	Index      int
	Executable string
	Title      string
	Outcome    Outcome
	Reason     Reason
	Err        error
}

func (e Entry) String() string {
	if e.Outcome == OutcomeRestored {
		if e.Reason != "" {
			return fmt.Sprintf("[%d] %s: restored (%s)", e.Index, e.Title, e.Reason)
		}
		return fmt.Sprintf("[%d] %s: restored", e.Index, e.Title)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: skipped (%s): %v", e.Index, e.Title, e.Reason, e.Err)
	}
	return fmt.Sprintf("[%d] %s: skipped (%s)", e.Index, e.Title, e.Reason)
}

// Report aggregates one restore pass. A pass always runs every snapshot to
// completion; individual failures land here instead of aborting the batch.
type Report struct {
	Preset  string
	Entries []Entry
}

// Restored counts snapshots that ended up surfaced or positioned.
func (r *Report) Restored() int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == OutcomeRestored {
			n++
		}
	}
	return n
}

// Skipped counts snapshots that were given up on.
func (r *Report) Skipped() int {
	return len(r.Entries) - r.Restored()
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d restored, %d skipped", r.Preset, r.Restored(), r.Skipped())
}
