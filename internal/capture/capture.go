// Package capture enumerates the live top-level window set and turns it
// into portable layout snapshots.
package capture

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/bkonrad/snapback/internal/cmdline"
	"github.com/bkonrad/snapback/internal/config"
	"github.com/bkonrad/snapback/internal/layout"
	"github.com/bkonrad/snapback/internal/platform"
	"github.com/bkonrad/snapback/internal/topology"
)

// TabProvider supplies browser tabs for a window. Implementations talk to a
// browser extension or debugging port; the capturer only persists what it
// gets back.
type TabProvider interface {
	Tabs(win platform.Window) ([]layout.Tab, error)
}

// Result is one capture pass over the desktop.
type Result struct {
	// Windows holds one snapshot per captured window, in z-order
	// (topmost first).
	Windows []layout.Snapshot
	// MonitorCount is how many monitors were present during the pass.
	MonitorCount int
}

// Capturer walks live windows through the platform backend and applies the
// configured filters.
type Capturer struct {
	backend platform.Backend
	cfg     config.CaptureConfig
	tabs    TabProvider
}

// New creates a capturer. tabs may be nil when tab capture is disabled.
func New(backend platform.Backend, cfg config.CaptureConfig, tabs TabProvider) *Capturer {
	return &Capturer{backend: backend, cfg: cfg, tabs: tabs}
}

// Capture enumerates every eligible top-level window into a snapshot.
// Windows that cannot be fully resolved (no PID, vanished process) are
// skipped individually; only backend-level failures abort the pass.
func (c *Capturer) Capture() (*Result, error) {
	monitors, err := topology.Current(c.backend)
	if err != nil {
		return nil, err
	}

	windows, err := c.backend.ListWindows()
	if err != nil {
		return nil, err
	}

	result := &Result{MonitorCount: len(monitors)}
	for _, win := range windows {
		snap, ok := c.snapshot(win, monitors)
		if !ok {
			continue
		}
		result.Windows = append(result.Windows, snap)
	}
	return result, nil
}

// snapshot converts one window, reporting false when the window is filtered
// out or its process cannot be resolved.
func (c *Capturer) snapshot(win platform.Window, monitors []topology.Monitor) (layout.Snapshot, bool) {
	if !c.eligible(win) {
		return layout.Snapshot{}, false
	}

	exe, err := c.backend.ProcessPath(win.PID)
	if err != nil {
		log.Printf("capture: skipping %q (pid %d): %v", win.Title, win.PID, err)
		return layout.Snapshot{}, false
	}
	if c.excludedProcess(exe) {
		return layout.Snapshot{}, false
	}

	// Snapshots always record the restored, normal-state rectangle so
	// restoring a maximized window later still knows where it unmaximizes
	// to. The window system may not track one; current bounds then stand in.
	rect := win.Bounds
	if win.NormalBounds != nil {
		rect = *win.NormalBounds
	}

	snap := layout.Snapshot{
		Executable: exe,
		Title:      win.Title,
		X:          rect.X,
		Y:          rect.Y,
		Width:      rect.Width,
		Height:     rect.Height,
		State:      string(win.State),
		Monitor:    topology.IndexFor(rect, monitors),
	}

	if args, err := c.backend.ProcessArgs(win.PID); err == nil && len(args) > 0 {
		snap.Args = cmdline.Join(args)
	}

	if win.State == platform.StateNormal {
		mon := monitors[snap.Monitor]
		snap.Snap = topology.DetectSnap(rect, mon.Usable)
	}

	if c.cfg.IncludeTabs && c.tabs != nil {
		if tabs, err := c.tabs.Tabs(win); err == nil {
			snap.Tabs = tabs
		} else {
			log.Printf("capture: no tabs for %q: %v", win.Title, err)
		}
	}

	return snap, true
}

// eligible applies the filters that need no process lookup.
func (c *Capturer) eligible(win platform.Window) bool {
	if !win.Normal {
		return false
	}
	if win.Title == "" {
		return false
	}
	if win.PID <= 0 {
		return false
	}
	if win.State == platform.StateMinimized && !c.cfg.IncludeMinimized {
		return false
	}
	for _, sub := range c.cfg.ExcludedTitles {
		if sub != "" && strings.Contains(strings.ToLower(win.Title), strings.ToLower(sub)) {
			return false
		}
	}
	return true
}

func (c *Capturer) excludedProcess(exe string) bool {
	base := strings.ToLower(filepath.Base(exe))
	for _, name := range c.cfg.ExcludedProcesses {
		if base == strings.ToLower(name) {
			return true
		}
	}
	return false
}

// RunningPrograms returns the distinct executable paths behind the currently
// eligible windows, in first-seen z-order.
func (c *Capturer) RunningPrograms() ([]string, error) {
	windows, err := c.backend.ListWindows()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var programs []string
	for _, win := range windows {
		if !c.eligible(win) {
			continue
		}
		exe, err := c.backend.ProcessPath(win.PID)
		if err != nil || c.excludedProcess(exe) {
			continue
		}
		if !seen[exe] {
			seen[exe] = true
			programs = append(programs, exe)
		}
	}
	return programs, nil
}
