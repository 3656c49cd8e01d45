// Package restore replays a saved preset against the live desktop: it
// reuses or relaunches each snapshot's process, waits for its window, and
// repositions it onto the current monitor topology.
package restore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bkonrad/snapback/internal/apperr"
	"github.com/bkonrad/snapback/internal/cmdline"
	"github.com/bkonrad/snapback/internal/config"
	"github.com/bkonrad/snapback/internal/layout"
	"github.com/bkonrad/snapback/internal/platform"
	"github.com/bkonrad/snapback/internal/topology"
)

// LaunchFunc starts an executable detached from the orchestrator. It exists
// as an injection point; the default uses os/exec.
type LaunchFunc func(exe string, args []string) error

// Orchestrator runs restore passes. Windows restore concurrently up to the
// configured limit; a failure on one never aborts the others.
type Orchestrator struct {
	backend platform.Backend
	cfg     config.RestoreConfig
	launch  LaunchFunc

	// posMu serializes the topology-read-plus-position step so concurrent
	// restores don't interleave geometry requests mid-measurement.
	posMu sync.Mutex

	// claimMu guards the window-claim and session-launch sets during a pass.
	claimMu sync.Mutex
}

// New creates an orchestrator over the given backend.
func New(backend platform.Backend, cfg config.RestoreConfig) *Orchestrator {
	return &Orchestrator{backend: backend, cfg: cfg, launch: launchDetached}
}

// SetLauncher replaces the process launcher. Tests use this to record
// launches without spawning anything.
func (o *Orchestrator) SetLauncher(fn LaunchFunc) {
	o.launch = fn
}

// Restore replays every snapshot in the preset and reports per-window
// outcomes. Only a failure to enumerate the desktop up front is returned as
// an error; everything after that is in the report.
func (o *Orchestrator) Restore(ctx context.Context, p layout.Preset) (*Report, error) {
	existing, err := o.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	pass := &passState{
		existingIDs:     make(map[platform.WindowID]bool, len(existing)),
		claimed:         make(map[platform.WindowID]bool),
		sessionLaunched: make(map[string]bool),
	}
	for _, w := range existing {
		pass.existingIDs[w.ID] = true
	}

	savedCount := p.SavedMonitorCount()
	report := &Report{
		Preset:  p.Name,
		Entries: make([]Entry, len(p.Windows)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency())
	for i, snap := range p.Windows {
		i, snap := i, snap
		g.Go(func() error {
			report.Entries[i] = o.restoreOne(gctx, i, snap, savedCount, existing, pass)
			return nil
		})
	}
	g.Wait()

	log.Printf("restore: %s", report)
	return report, ctx.Err()
}

type passState struct {
	existingIDs     map[platform.WindowID]bool
	claimed         map[platform.WindowID]bool
	sessionLaunched map[string]bool
}

// restoreOne drives a single snapshot through launch, window wait, and
// positioning. The returned entry is its terminal state.
func (o *Orchestrator) restoreOne(ctx context.Context, idx int, snap layout.Snapshot, savedCount int, existing []platform.Window, pass *passState) Entry {
	entry := Entry{Index: idx, Executable: snap.Executable, Title: snap.Title}

	skip := func(reason Reason, err error) Entry {
		entry.Outcome = OutcomeSkipped
		entry.Reason = reason
		entry.Err = err
		log.Printf("restore: %s", entry)
		return entry
	}

	if snap.State == layout.StateMinimized {
		return skip(ReasonMinimizedPolicy, nil)
	}
	if err := ctx.Err(); err != nil {
		return skip(ReasonLaunchFailed, err)
	}

	if o.sessionManaged(snap.Executable) {
		return o.restoreSessionManaged(snap, entry, existing, pass)
	}

	// Reuse an already-open window of the same program before launching
	// another copy.
	win, ok := o.claimExisting(snap, existing, pass)
	if !ok {
		if _, err := os.Stat(snap.Executable); err != nil {
			return skip(ReasonProgramMissing, fmt.Errorf("%w: %s", apperr.ErrProgramMissing, snap.Executable))
		}

		args, err := cmdline.Split(snap.Args)
		if err != nil {
			return skip(ReasonLaunchFailed, fmt.Errorf("bad saved arguments: %w", err))
		}
		if err := o.launch(snap.Executable, args); err != nil {
			return skip(ReasonLaunchFailed, fmt.Errorf("failed to launch %s: %w", snap.Executable, err))
		}

		win, err = o.waitForWindow(ctx, snap, pass)
		if err != nil {
			return skip(ReasonWindowTimeout, err)
		}
	}

	if err := o.position(win.ID, snap, savedCount); err != nil {
		if errors.Is(err, apperr.ErrAccessDenied) {
			return skip(ReasonAccessDenied, err)
		}
		return skip(ReasonPositionFailed, err)
	}

	entry.Outcome = OutcomeRestored
	log.Printf("restore: %s", entry)
	return entry
}

// restoreSessionManaged surfaces an existing window of a session-managed app
// or launches the app once per pass. Such apps lay out their own windows and
// are never repositioned.
func (o *Orchestrator) restoreSessionManaged(snap layout.Snapshot, entry Entry, existing []platform.Window, pass *passState) Entry {
	entry.Reason = ReasonSessionManaged

	for _, w := range existing {
		if o.sameProgram(w, snap.Executable) {
			if err := o.backend.Raise(w.ID); err != nil {
				log.Printf("restore: failed to raise %q: %v", w.Title, err)
			}
			entry.Outcome = OutcomeRestored
			return entry
		}
	}

	base := strings.ToLower(filepath.Base(snap.Executable))
	o.claimMu.Lock()
	already := pass.sessionLaunched[base]
	pass.sessionLaunched[base] = true
	o.claimMu.Unlock()
	if already {
		entry.Outcome = OutcomeRestored
		return entry
	}

	if _, err := os.Stat(snap.Executable); err != nil {
		entry.Outcome = OutcomeSkipped
		entry.Reason = ReasonProgramMissing
		entry.Err = fmt.Errorf("%w: %s", apperr.ErrProgramMissing, snap.Executable)
		return entry
	}
	if err := o.launch(snap.Executable, nil); err != nil {
		entry.Outcome = OutcomeSkipped
		entry.Reason = ReasonLaunchFailed
		entry.Err = err
		return entry
	}
	entry.Outcome = OutcomeRestored
	return entry
}

// claimExisting finds an unclaimed pre-existing window of the snapshot's
// program, preferring one whose title matches. At most one snapshot claims
// any given window.
func (o *Orchestrator) claimExisting(snap layout.Snapshot, existing []platform.Window, pass *passState) (platform.Window, bool) {
	o.claimMu.Lock()
	defer o.claimMu.Unlock()

	var fallback *platform.Window
	for i := range existing {
		w := existing[i]
		if pass.claimed[w.ID] || !o.sameProgram(w, snap.Executable) {
			continue
		}
		if titleMatches(w.Title, snap.Title) {
			pass.claimed[w.ID] = true
			return w, true
		}
		if fallback == nil {
			fallback = &existing[i]
		}
	}
	if fallback != nil {
		pass.claimed[fallback.ID] = true
		return *fallback, true
	}
	return platform.Window{}, false
}

// waitForWindow polls for a window of the launched program that did not
// exist before the pass started. Title matches win immediately; after the
// poll budget runs out, any new window of the program is accepted.
func (o *Orchestrator) waitForWindow(ctx context.Context, snap layout.Snapshot, pass *passState) (platform.Window, error) {
	attempts := o.cfg.PollAttempts
	interval := o.cfg.PollInterval()

	var fallback *platform.Window
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return platform.Window{}, fmt.Errorf("%w: %s: %v", apperr.ErrWindowTimeout, snap.Executable, ctx.Err())
			case <-timer.C:
			}
		}

		windows, err := o.backend.ListWindows()
		if err != nil {
			log.Printf("restore: failed to list windows: %v", err)
			continue
		}

		o.claimMu.Lock()
		for i := range windows {
			w := windows[i]
			if pass.existingIDs[w.ID] || pass.claimed[w.ID] || !o.sameProgram(w, snap.Executable) {
				continue
			}
			if titleMatches(w.Title, snap.Title) {
				pass.claimed[w.ID] = true
				o.claimMu.Unlock()
				return w, nil
			}
			if fallback == nil {
				c := windows[i]
				fallback = &c
			}
		}
		o.claimMu.Unlock()
	}

	if fallback != nil {
		o.claimMu.Lock()
		claimed := pass.claimed[fallback.ID]
		if !claimed {
			pass.claimed[fallback.ID] = true
		}
		o.claimMu.Unlock()
		if !claimed {
			return *fallback, nil
		}
	}
	return platform.Window{}, fmt.Errorf("%w: no window for %s after %d attempts",
		apperr.ErrWindowTimeout, snap.Executable, attempts)
}

// position normalizes, moves, and re-applies the target state under the
// positioning lock, reading the topology fresh so mid-session monitor
// changes are honored per window.
func (o *Orchestrator) position(id platform.WindowID, snap layout.Snapshot, savedCount int) error {
	o.posMu.Lock()
	defer o.posMu.Unlock()

	monitors, err := topology.Current(o.backend)
	if err != nil {
		return err
	}

	rect := o.targetRect(snap, savedCount, monitors)

	// Geometry requests bounce off maximized windows, so normalize first
	// and re-apply the saved state after the move.
	if err := o.backend.SetState(id, platform.StateNormal); err != nil {
		return fmt.Errorf("failed to normalize window: %w", err)
	}
	if err := o.backend.MoveResize(id, rect); err != nil {
		return fmt.Errorf("failed to position window: %w", err)
	}
	if snap.State == layout.StateMaximized {
		if err := o.backend.SetState(id, platform.StateMaximized); err != nil {
			return fmt.Errorf("failed to maximize window: %w", err)
		}
	}
	return nil
}

// targetRect resolves where the snapshot should land on the current
// topology. Snapped windows recompute their zone from the current work area;
// everything else replays the saved rectangle, remapped when off-screen.
func (o *Orchestrator) targetRect(snap layout.Snapshot, savedCount int, monitors []topology.Monitor) platform.Rect {
	saved := platform.Rect{X: snap.X, Y: snap.Y, Width: snap.Width, Height: snap.Height}

	if snap.Snap != "" && snap.State == layout.StateNormal {
		mon := monitors[topology.ResolveIndex(snap.Monitor, savedCount, monitors)]
		if rect, ok := topology.SnapRect(snap.Snap, mon.Usable); ok {
			return rect
		}
	}
	return topology.PlaceRect(saved, snap.Monitor, savedCount, monitors)
}

func (o *Orchestrator) sessionManaged(exe string) bool {
	base := strings.ToLower(filepath.Base(exe))
	for _, name := range o.cfg.SessionManagedApps {
		if base == strings.ToLower(name) {
			return true
		}
	}
	return false
}

// sameProgram reports whether a live window belongs to the saved executable,
// comparing full paths first and base names as a fallback for relocated
// installs.
func (o *Orchestrator) sameProgram(w platform.Window, exe string) bool {
	if w.PID <= 0 {
		return false
	}
	path, err := o.backend.ProcessPath(w.PID)
	if err != nil {
		return false
	}
	if path == exe {
		return true
	}
	return strings.EqualFold(filepath.Base(path), filepath.Base(exe))
}

func titleMatches(live, saved string) bool {
	if saved == "" || live == "" {
		return false
	}
	l, s := strings.ToLower(live), strings.ToLower(saved)
	return l == s || strings.Contains(l, s) || strings.Contains(s, l)
}

func (o *Orchestrator) concurrency() int {
	if o.cfg.Concurrency > 0 {
		return o.cfg.Concurrency
	}
	return 1
}

// launchDetached starts the program in its own session so it survives the
// orchestrator's exit.
func launchDetached(exe string, args []string) error {
	cmd := exec.Command(exe, args...)
	cmd.Dir = filepath.Dir(exe)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
