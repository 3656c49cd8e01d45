//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/bkonrad/snapback/internal/apperr"
	"github.com/bkonrad/snapback/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active displays with their work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Usable: Rect{X: m.WorkX, Y: m.WorkY, Width: m.WorkWidth, Height: m.WorkHeight},
		})
	}
	return displays, nil
}

// ListWindows returns all managed top-level windows in z-order, topmost
// first. Windows whose metadata cannot be resolved are returned with what
// was available; callers decide what to skip.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	ids, err := b.conn.ListWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		x, y, w, h, err := b.conn.WindowGeometry(id)
		if err != nil {
			// Window vanished between listing and query.
			continue
		}

		win := Window{
			ID:     WindowID(id),
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
			Normal: b.conn.IsNormalWindow(id),
		}
		if title, err := b.conn.WindowTitle(id); err == nil {
			win.Title = title
		}
		if pid, err := b.conn.WindowPID(id); err == nil {
			win.PID = pid
		}

		state, _ := b.conn.WindowState(id)
		win.State = State(state)
		// X11 keeps no restored-state rectangle for maximized windows;
		// NormalBounds stays nil and callers fall back to Bounds.

		windows = append(windows, win)
	}
	return windows, nil
}

// MoveResize positions a window, mapping X access errors onto the shared
// error kind so callers can classify them.
func (b *LinuxBackend) MoveResize(id WindowID, bounds Rect) error {
	err := b.conn.MoveResizeWindow(xproto.Window(id), bounds.X, bounds.Y, bounds.Width, bounds.Height)
	return wrapAccessErr(err)
}

// SetState transitions a window to the given show state.
func (b *LinuxBackend) SetState(id WindowID, st State) error {
	win := xproto.Window(id)
	var err error
	switch st {
	case StateMaximized:
		err = b.conn.Maximize(win)
	case StateMinimized:
		err = b.conn.Iconify(win)
	case StateNormal:
		if err = b.conn.Deiconify(win); err == nil {
			err = b.conn.Unmaximize(win)
		}
	default:
		return fmt.Errorf("unknown window state %q", st)
	}
	return wrapAccessErr(err)
}

// Raise activates a window and brings it to the foreground.
func (b *LinuxBackend) Raise(id WindowID) error {
	return wrapAccessErr(b.conn.FocusWindow(xproto.Window(id)))
}

// ProcessPath resolves the owning executable path via procfs.
func (b *LinuxBackend) ProcessPath(pid int) (string, error) {
	return x11.ProcessPath(pid)
}

// ProcessArgs returns the launch arguments via procfs.
func (b *LinuxBackend) ProcessArgs(pid int) ([]string, error) {
	return x11.ProcessArgs(pid)
}

// wrapAccessErr tags X11 BadAccess errors with apperr.ErrAccessDenied so the
// restore path can report them as permission failures.
func wrapAccessErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(xproto.AccessError); ok {
		return fmt.Errorf("%w: %v", apperr.ErrAccessDenied, err)
	}
	return err
}
