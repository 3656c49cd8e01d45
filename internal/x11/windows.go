package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowGeometry returns a window's rectangle in root (virtual-screen)
// coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry for window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates for window %d: %w", windowID, err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// WindowTitle returns the window's _NET_WM_NAME, falling back to the ICCCM
// WM_NAME property for clients that only set the legacy one.
func (c *Connection) WindowTitle(windowID xproto.Window) (string, error) {
	name, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil && name != "" {
		return name, nil
	}
	return icccm.WmNameGet(c.XUtil, windowID)
}

// WindowPID returns the process ID advertised via _NET_WM_PID.
func (c *Connection) WindowPID(windowID xproto.Window) (int, error) {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get pid for window %d: %w", windowID, err)
	}
	return int(pid), nil
}

// ListWindows returns all managed top-level windows in z-order, topmost
// first. Falls back to the unordered client list on window managers that do
// not maintain a stacking list.
func (c *Connection) ListWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
		return clients, nil
	}

	// _NET_CLIENT_LIST_STACKING is bottom-to-top.
	out := make([]xproto.Window, len(clients))
	for i, win := range clients {
		out[len(clients)-1-i] = win
	}
	return out, nil
}

// WindowState classifies a window as "normal", "maximized" or "minimized"
// from its _NET_WM_STATE atoms. A window maximized in only one dimension
// counts as normal.
func (c *Connection) WindowState(windowID xproto.Window) (string, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return "normal", fmt.Errorf("failed to get state for window %d: %w", windowID, err)
	}

	hasMaxH := false
	hasMaxV := false
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			return "minimized", nil
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			hasMaxH = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			hasMaxV = true
		}
	}
	if hasMaxH && hasMaxV {
		return "maximized", nil
	}
	return "normal", nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, toolbars, notifications, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_TOOLBAR" ||
			t == "_NET_WM_WINDOW_TYPE_UTILITY" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// The window must already be in normal state; maximized windows ignore
// configure requests on most window managers.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
	if err != nil {
		// Fallback to direct window manipulation for non-EWMH WMs.
		win := xwindow.New(c.XUtil, windowID)
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// Unmaximize removes both maximized states from a window, if present.
func (c *Connection) Unmaximize(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	hasMaxH := false
	hasMaxV := false
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" {
			hasMaxH = true
		}
		if state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			hasMaxV = true
		}
	}

	if hasMaxH {
		if err := ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
			return err
		}
	}
	if hasMaxV {
		if err := ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_VERT"); err != nil {
			return err
		}
	}
	return nil
}

// Maximize adds both maximized states to a window.
func (c *Connection) Maximize(windowID xproto.Window) error {
	if err := ewmh.WmStateReq(c.XUtil, windowID, 1, "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
		return err
	}
	return ewmh.WmStateReq(c.XUtil, windowID, 1, "_NET_WM_STATE_MAXIMIZED_VERT")
}

// Iconify minimizes a window by sending a WM_CHANGE_STATE client message
// with the iconic state. We build the message manually because the xgbutil
// helpers panic on this library version (uint vs int type assertion).
func (c *Connection) Iconify(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("WM_CHANGE_STATE")), "WM_CHANGE_STATE").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern WM_CHANGE_STATE: %w", err)
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Deiconify maps an iconified window back onto the screen.
func (c *Connection) Deiconify(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// Sends a client message to the root window per EWMH spec; the message is
// built manually (same reason as Iconify).
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
