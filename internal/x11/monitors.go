package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int

	// Work area (excluding panels, docks, etc.); equals the full bounds
	// when the window manager does not publish one.
	WorkX      int
	WorkY      int
	WorkWidth  int
	WorkHeight int
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		mon := Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		mon.WorkX, mon.WorkY, mon.WorkWidth, mon.WorkHeight = mon.X, mon.Y, mon.Width, mon.Height
		monitors = append(monitors, mon)
	}

	c.applyWorkArea(monitors)
	return monitors, nil
}

// applyWorkArea intersects each monitor with the current desktop's
// _NET_WORKAREA to exclude panels and docks. Monitors the work area does
// not intersect keep their full bounds.
func (c *Connection) applyWorkArea(monitors []Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]

	waX := int(wa.X)
	waY := int(wa.Y)
	waW := int(wa.Width)
	waH := int(wa.Height)

	for i := range monitors {
		mon := &monitors[i]

		x1 := max(mon.X, waX)
		y1 := max(mon.Y, waY)
		x2 := min(mon.X+mon.Width, waX+waW)
		y2 := min(mon.Y+mon.Height, waY+waH)

		if x2 > x1 && y2 > y1 {
			mon.WorkX = x1
			mon.WorkY = y1
			mon.WorkWidth = x2 - x1
			mon.WorkHeight = y2 - y1
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
