package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bkonrad/snapback/internal/apperr"
	"github.com/bkonrad/snapback/internal/config"
	"github.com/bkonrad/snapback/internal/layout"
	"github.com/bkonrad/snapback/internal/platform"
)

// fakeBackend records window-system calls and lets tests add windows as if
// launched processes had mapped them.
type fakeBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	windows  []platform.Window
	procs    map[int]string
	calls    []string
	nextID   platform.WindowID

	moveErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{{
			ID:     0,
			Name:   "DP-1",
			Bounds: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			Usable: platform.Rect{X: 0, Y: 30, Width: 1920, Height: 1050},
		}},
		procs:  make(map[int]string),
		nextID: 100,
	}
}

func (f *fakeBackend) addWindow(exe, title string) platform.WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	pid := int(f.nextID) * 10
	f.procs[pid] = exe
	f.windows = append(f.windows, platform.Window{
		ID:     f.nextID,
		PID:    pid,
		Title:  title,
		Bounds: platform.Rect{X: 10, Y: 40, Width: 640, Height: 480},
		State:  platform.StateNormal,
		Normal: true,
	})
	return f.nextID
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Display(nil), f.displays...), nil
}

func (f *fakeBackend) ListWindows() ([]platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Window(nil), f.windows...), nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.record(fmt.Sprintf("move %d %dx%d+%d+%d", id, bounds.Width, bounds.Height, bounds.X, bounds.Y))
	return nil
}

func (f *fakeBackend) SetState(id platform.WindowID, st platform.State) error {
	f.record(fmt.Sprintf("state %d %s", id, st))
	return nil
}

func (f *fakeBackend) Raise(id platform.WindowID) error {
	f.record(fmt.Sprintf("raise %d", id))
	return nil
}

func (f *fakeBackend) ProcessPath(pid int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path, ok := f.procs[pid]; ok {
		return path, nil
	}
	return "", fmt.Errorf("no such process %d", pid)
}

func (f *fakeBackend) ProcessArgs(int) ([]string, error) { return nil, nil }

// writeExe creates a file standing in for an installed program.
func writeExe(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() config.RestoreConfig {
	return config.RestoreConfig{
		PollAttempts:       2,
		PollIntervalMS:     1,
		Concurrency:        2,
		SessionManagedApps: []string{"chrome", "firefox"},
	}
}

func TestRestorePositioningOrder(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "editor")

	orch := New(backend, testConfig())
	orch.SetLauncher(func(exePath string, args []string) error {
		backend.addWindow(exePath, "editor window")
		return nil
	})

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "editor window",
			X: 200, Y: 150, Width: 800, Height: 600,
			State: layout.StateMaximized, Monitor: 0,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if report.Restored() != 1 {
		t.Fatalf("report = %s, entries %+v", report, report.Entries)
	}

	// Normalize, then move, then re-apply the saved state.
	calls := backend.callLog()
	if len(calls) != 3 {
		t.Fatalf("calls = %v", calls)
	}
	if calls[0] != "state 101 normal" {
		t.Errorf("first call = %q, want normalize", calls[0])
	}
	if calls[1] != "move 101 800x600+200+150" {
		t.Errorf("second call = %q, want move", calls[1])
	}
	if calls[2] != "state 101 maximized" {
		t.Errorf("third call = %q, want maximize", calls[2])
	}
}

func TestRestoreProgramMissingDoesNotAbortBatch(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "editor")

	orch := New(backend, testConfig())
	orch.SetLauncher(func(exePath string, args []string) error {
		backend.addWindow(exePath, "editor window")
		return nil
	})

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{
			{Executable: "/nonexistent/gone", Title: "gone", X: 0, Y: 30, Width: 400, Height: 300, State: layout.StateNormal},
			{Executable: exe, Title: "editor window", X: 200, Y: 150, Width: 800, Height: 600, State: layout.StateNormal},
		},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	first := report.Entries[0]
	if first.Outcome != OutcomeSkipped || first.Reason != ReasonProgramMissing {
		t.Errorf("entry 0 = %+v, want program_missing skip", first)
	}
	if !errors.Is(first.Err, apperr.ErrProgramMissing) {
		t.Errorf("entry 0 err = %v, want ErrProgramMissing", first.Err)
	}
	if report.Entries[1].Outcome != OutcomeRestored {
		t.Errorf("entry 1 = %+v, want restored", report.Entries[1])
	}
}

func TestRestoreWindowTimeout(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "slowpoke")

	orch := New(backend, testConfig())
	// Launch succeeds but no window ever appears.
	orch.SetLauncher(func(string, []string) error { return nil })

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "slow window",
			X: 0, Y: 30, Width: 400, Height: 300, State: layout.StateNormal,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	entry := report.Entries[0]
	if entry.Outcome != OutcomeSkipped || entry.Reason != ReasonWindowTimeout {
		t.Fatalf("entry = %+v, want window_timeout skip", entry)
	}
	if !errors.Is(entry.Err, apperr.ErrWindowTimeout) {
		t.Errorf("err = %v, want ErrWindowTimeout", entry.Err)
	}
}

func TestRestoreReusesExistingWindow(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "editor")
	id := backend.addWindow(exe, "editor window")

	launched := false
	orch := New(backend, testConfig())
	orch.SetLauncher(func(string, []string) error {
		launched = true
		return nil
	})

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "editor window",
			X: 200, Y: 150, Width: 800, Height: 600, State: layout.StateNormal,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if launched {
		t.Error("launched a new process despite a reusable window")
	}
	if report.Restored() != 1 {
		t.Fatalf("report = %s", report)
	}

	want := fmt.Sprintf("move %d 800x600+200+150", id)
	for _, call := range backend.callLog() {
		if call == want {
			return
		}
	}
	t.Errorf("reused window was not positioned; calls = %v", backend.callLog())
}

func TestRestoreMinimizedPolicySkip(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "notes")

	orch := New(backend, testConfig())
	orch.SetLauncher(func(string, []string) error {
		t.Error("minimized snapshot should not launch anything")
		return nil
	})

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "hidden notes",
			X: 0, Y: 30, Width: 400, Height: 300, State: layout.StateMinimized,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	entry := report.Entries[0]
	if entry.Outcome != OutcomeSkipped || entry.Reason != ReasonMinimizedPolicy {
		t.Errorf("entry = %+v, want minimized_policy skip", entry)
	}
}

func TestRestoreSessionManagedRaisesWithoutPositioning(t *testing.T) {
	backend := newFakeBackend()
	dir := t.TempDir()
	chrome := filepath.Join(dir, "chrome")
	if err := os.WriteFile(chrome, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	id := backend.addWindow(chrome, "Example - Chrome")

	orch := New(backend, testConfig())
	orch.SetLauncher(func(string, []string) error {
		t.Error("existing session-managed window should be raised, not relaunched")
		return nil
	})

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: chrome, Title: "Example - Chrome",
			X: 0, Y: 30, Width: 1200, Height: 800, State: layout.StateNormal,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	entry := report.Entries[0]
	if entry.Outcome != OutcomeRestored || entry.Reason != ReasonSessionManaged {
		t.Fatalf("entry = %+v, want session_managed restore", entry)
	}

	calls := backend.callLog()
	if len(calls) != 1 || calls[0] != fmt.Sprintf("raise %d", id) {
		t.Errorf("calls = %v, want a single raise", calls)
	}
}

func TestRestoreSessionManagedLaunchesOncePerPass(t *testing.T) {
	backend := newFakeBackend()
	dir := t.TempDir()
	firefox := filepath.Join(dir, "firefox")
	if err := os.WriteFile(firefox, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	launches := 0
	cfg := testConfig()
	cfg.Concurrency = 1
	orch := New(backend, cfg)
	orch.SetLauncher(func(string, []string) error {
		mu.Lock()
		launches++
		mu.Unlock()
		return nil
	})

	snap := layout.Snapshot{
		Executable: firefox, Title: "tab",
		X: 0, Y: 30, Width: 1200, Height: 800, State: layout.StateNormal,
	}
	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{snap, snap, snap},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if launches != 1 {
		t.Errorf("launches = %d, want 1", launches)
	}
	if report.Restored() != 3 {
		t.Errorf("report = %s", report)
	}
}

func TestRestoreAccessDenied(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "editor")
	backend.addWindow(exe, "editor window")
	backend.moveErr = fmt.Errorf("%w: BadAccess", apperr.ErrAccessDenied)

	orch := New(backend, testConfig())
	orch.SetLauncher(func(string, []string) error { return nil })

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "editor window",
			X: 0, Y: 30, Width: 400, Height: 300, State: layout.StateNormal,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	entry := report.Entries[0]
	if entry.Outcome != OutcomeSkipped || entry.Reason != ReasonAccessDenied {
		t.Errorf("entry = %+v, want access_denied skip", entry)
	}
}

func TestRestoreCancellation(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "editor")

	orch := New(backend, testConfig())
	orch.SetLauncher(func(string, []string) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 1,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "editor window",
			X: 0, Y: 30, Width: 400, Height: 300, State: layout.StateNormal,
		}},
	}

	report, err := orch.Restore(ctx, p)
	if err == nil {
		t.Error("expected context error")
	}
	if report.Entries[0].Outcome != OutcomeSkipped {
		t.Errorf("entry = %+v, want skip under canceled context", report.Entries[0])
	}
}

func TestResolveOffscreenSnapshotLandsOnCurrentMonitor(t *testing.T) {
	backend := newFakeBackend()
	exe := writeExe(t, "editor")
	backend.addWindow(exe, "editor window")

	orch := New(backend, testConfig())
	orch.SetLauncher(func(string, []string) error { return nil })

	// Saved on a second monitor that no longer exists.
	p := layout.Preset{
		ID: "p1", Name: "work", MonitorCount: 2,
		Windows: []layout.Snapshot{{
			Executable: exe, Title: "editor window",
			X: 2500, Y: 100, Width: 800, Height: 600,
			State: layout.StateNormal, Monitor: 1,
		}},
	}

	report, err := orch.Restore(context.Background(), p)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if report.Restored() != 1 {
		t.Fatalf("report = %s", report)
	}

	// Centered in the only monitor's work area.
	want := "move 101 800x600+560+255"
	for _, call := range backend.callLog() {
		if call == want {
			return
		}
	}
	t.Errorf("calls = %v, want %q", backend.callLog(), want)
}
