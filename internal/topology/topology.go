// Package topology orders the live monitor set deterministically and maps
// saved monitor indices and rectangles onto whatever arrangement is present
// at restore time. Everything here is pure computation over a snapshot of
// []Monitor; callers re-query per window because virtual-desktop geometry
// can change mid-session.
package topology

import (
	"fmt"
	"sort"

	"github.com/bkonrad/snapback/internal/layout"
	"github.com/bkonrad/snapback/internal/platform"
)

// Restored windows never shrink below this; degenerate saved sizes would
// otherwise produce unusable slivers.
const (
	MinWidth  = 320
	MinHeight = 220
)

// snapTolerance is how far (px) an edge may sit from the work-area edge and
// still count as snapped.
const snapTolerance = 24

// Monitor is one display in deterministic capture order.
type Monitor struct {
	Index  int
	Name   string
	Bounds platform.Rect
	Usable platform.Rect
}

// Current queries the backend for a fresh monitor snapshot, ordered
// ascending by left edge, then top edge. The ordinal position in the
// returned slice is the monitor index recorded in snapshots.
func Current(b platform.Backend) ([]Monitor, error) {
	displays, err := b.Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to query displays: %w", err)
	}
	if len(displays) == 0 {
		return nil, fmt.Errorf("no active displays")
	}

	sort.SliceStable(displays, func(i, j int) bool {
		if displays[i].Bounds.X != displays[j].Bounds.X {
			return displays[i].Bounds.X < displays[j].Bounds.X
		}
		return displays[i].Bounds.Y < displays[j].Bounds.Y
	})

	monitors := make([]Monitor, len(displays))
	for i, d := range displays {
		monitors[i] = Monitor{
			Index:  i,
			Name:   d.Name,
			Bounds: d.Bounds,
			Usable: d.Usable,
		}
	}
	return monitors, nil
}

// IndexFor returns the index of the monitor containing the rectangle's
// center, or 0 when the center is outside every monitor.
func IndexFor(rect platform.Rect, monitors []Monitor) int {
	cx, cy := rect.Center()
	for _, m := range monitors {
		if cx >= m.Bounds.X && cx < m.Bounds.X+m.Bounds.Width &&
			cy >= m.Bounds.Y && cy < m.Bounds.Y+m.Bounds.Height {
			return m.Index
		}
	}
	return 0
}

// ResolveIndex maps a monitor index saved against savedCount monitors onto
// the current set. An index that was already invalid at capture resolves to
// the primary monitor; a valid index clamps to the largest current index
// when monitors have been removed, and applies positionally otherwise.
func ResolveIndex(saved, savedCount int, monitors []Monitor) int {
	if len(monitors) == 0 {
		return 0
	}
	if saved < 0 || (savedCount > 0 && saved >= savedCount) {
		return 0
	}
	if saved < len(monitors) {
		return saved
	}
	return len(monitors) - 1
}

// Closest returns the monitor whose center is nearest the rectangle's
// center. monitors must be non-empty.
func Closest(rect platform.Rect, monitors []Monitor) Monitor {
	cx, cy := rect.Center()
	best := monitors[0]
	bestDist := -1
	for _, m := range monitors {
		mx, my := m.Bounds.Center()
		dx, dy := mx-cx, my-cy
		dist := dx*dx + dy*dy
		if bestDist < 0 || dist < bestDist {
			best = m
			bestDist = dist
		}
	}
	return best
}

// PlaceRect translates a saved rectangle onto the current topology. A
// rectangle still visible on some monitor is kept as-is (sizes normalized);
// a rectangle entirely outside every monitor is moved onto the resolved
// monitor — the closest one by center distance when monitors were added
// since capture — clamped to its work area and centered.
func PlaceRect(rect platform.Rect, savedIndex, savedCount int, monitors []Monitor) platform.Rect {
	if rect.Width < MinWidth {
		rect.Width = MinWidth
	}
	if rect.Height < MinHeight {
		rect.Height = MinHeight
	}
	if len(monitors) == 0 {
		return rect
	}

	for _, m := range monitors {
		if rect.Intersects(m.Usable) {
			return rect
		}
	}

	var target Monitor
	if savedCount > 0 && len(monitors) > savedCount {
		target = Closest(rect, monitors)
	} else {
		target = monitors[ResolveIndex(savedIndex, savedCount, monitors)]
	}

	wa := target.Usable
	if rect.Width > wa.Width {
		rect.Width = maxInt(MinWidth, wa.Width)
	}
	if rect.Height > wa.Height {
		rect.Height = maxInt(MinHeight, wa.Height)
	}
	rect.X = wa.X + maxInt(0, (wa.Width-rect.Width)/2)
	rect.Y = wa.Y + maxInt(0, (wa.Height-rect.Height)/2)
	return rect
}

// SnapRect computes the rectangle for a snap zone within a work area.
// Returns false for an unknown zone name.
func SnapRect(zone string, wa platform.Rect) (platform.Rect, bool) {
	halfW := maxInt(1, wa.Width/2)
	halfH := maxInt(1, wa.Height/2)

	switch zone {
	case layout.SnapLeft:
		return platform.Rect{X: wa.X, Y: wa.Y, Width: halfW, Height: wa.Height}, true
	case layout.SnapRight:
		return platform.Rect{X: wa.X + halfW, Y: wa.Y, Width: wa.Width - halfW, Height: wa.Height}, true
	case layout.SnapTop:
		return platform.Rect{X: wa.X, Y: wa.Y, Width: wa.Width, Height: halfH}, true
	case layout.SnapBottom:
		return platform.Rect{X: wa.X, Y: wa.Y + halfH, Width: wa.Width, Height: wa.Height - halfH}, true
	case layout.SnapTopLeft:
		return platform.Rect{X: wa.X, Y: wa.Y, Width: halfW, Height: halfH}, true
	case layout.SnapTopRight:
		return platform.Rect{X: wa.X + halfW, Y: wa.Y, Width: wa.Width - halfW, Height: halfH}, true
	case layout.SnapBottomLeft:
		return platform.Rect{X: wa.X, Y: wa.Y + halfH, Width: halfW, Height: wa.Height - halfH}, true
	case layout.SnapBottomRight:
		return platform.Rect{X: wa.X + halfW, Y: wa.Y + halfH, Width: wa.Width - halfW, Height: wa.Height - halfH}, true
	}
	return platform.Rect{}, false
}

// DetectSnap reports which snap zone of the work area a normal-state window
// occupies, or "" when it is not snapped.
func DetectSnap(rect, wa platform.Rect) string {
	left := absInt(rect.X-wa.X) <= snapTolerance
	right := absInt((rect.X+rect.Width)-(wa.X+wa.Width)) <= snapTolerance
	top := absInt(rect.Y-wa.Y) <= snapTolerance
	bottom := absInt((rect.Y+rect.Height)-(wa.Y+wa.Height)) <= snapTolerance
	halfW := absInt(rect.Width-wa.Width/2) <= snapTolerance
	halfH := absInt(rect.Height-wa.Height/2) <= snapTolerance
	fullW := absInt(rect.Width-wa.Width) <= snapTolerance
	fullH := absInt(rect.Height-wa.Height) <= snapTolerance

	switch {
	case left && fullH && halfW:
		return layout.SnapLeft
	case right && fullH && halfW:
		return layout.SnapRight
	case top && fullW && halfH:
		return layout.SnapTop
	case bottom && fullW && halfH:
		return layout.SnapBottom
	case left && top && halfW && halfH:
		return layout.SnapTopLeft
	case right && top && halfW && halfH:
		return layout.SnapTopRight
	case left && bottom && halfW && halfH:
		return layout.SnapBottomLeft
	case right && bottom && halfW && halfH:
		return layout.SnapBottomRight
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
