package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in virtual-screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the rectangle's center point.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Intersects reports whether two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// State is a window's show state.
type State string

const (
	StateNormal    State = "normal"
	StateMaximized State = "maximized"
	StateMinimized State = "minimized"
)

// Display describes a physical display: its full bounds and the usable
// work area (bounds minus panels and docks).
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID    WindowID
	PID   int
	Title string
	// Bounds is the window's current rectangle.
	Bounds Rect
	// NormalBounds is the restored-state rectangle for a maximized or
	// minimized window, when the window system can supply it. Nil means
	// unavailable; callers fall back to Bounds.
	NormalBounds *Rect
	State        State
	// Normal is false for desktop/dock/splash/tool windows that should
	// never be captured or repositioned.
	Normal bool
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// Displays returns all active displays in platform order.
	Displays() ([]Display, error)
	// ListWindows returns all top-level windows in current z-order.
	// Each call queries the live window set; nothing is cached.
	ListWindows() ([]Window, error)
	// MoveResize positions a window. The window should be in normal
	// state first; maximized windows ignore geometry requests.
	MoveResize(id WindowID, bounds Rect) error
	// SetState transitions a window to the given show state.
	SetState(id WindowID, st State) error
	// Raise activates a window and brings it to the foreground.
	Raise(id WindowID) error
	// ProcessPath resolves the absolute executable path of a process.
	ProcessPath(pid int) (string, error)
	// ProcessArgs returns the launch arguments of a process, without
	// the executable itself.
	ProcessArgs(pid int) ([]string, error)
}
