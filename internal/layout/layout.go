// Package layout defines the persisted window-layout model: snapshots of
// individual windows and the named presets that group them. The JSON shape
// is fixed for compatibility with existing preset files.
package layout

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Window show states as persisted on the wire.
const (
	StateNormal    = "normal"
	StateMaximized = "maximized"
	StateMinimized = "minimized"
)

// Snap zones as persisted on the wire. A zone names the half or quarter of
// the monitor work area a window occupied at capture time; restore recomputes
// the zone from the current work area instead of replaying raw pixels.
const (
	SnapLeft        = "left"
	SnapRight       = "right"
	SnapTop         = "top"
	SnapBottom      = "bottom"
	SnapTopLeft     = "top_left"
	SnapTopRight    = "top_right"
	SnapBottomLeft  = "bottom_left"
	SnapBottomRight = "bottom_right"
)

// Tab is a single browser tab captured by the external tab provider.
// The core never interprets it beyond persistence.
type Tab struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Snapshot describes one window's identity and geometry at capture time.
//
// X/Y/Width/Height always hold the restored, normal-state rectangle even
// when State is maximized or minimized, so restoring state later never has
// to re-derive geometry.
type Snapshot struct {
	Executable string `json:"executable"`
	Args       string `json:"args,omitempty"`
	Title      string `json:"title"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	State      string `json:"state"`
	Monitor    int    `json:"monitor"`
	Snap       string `json:"snap,omitempty"`
	Tabs       []Tab  `json:"tabs,omitempty"`
}

// Validate checks a snapshot against the fixed schema.
func (s Snapshot) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Executable, validation.Required),
		validation.Field(&s.State, validation.Required,
			validation.In(StateNormal, StateMaximized, StateMinimized)),
		validation.Field(&s.Width, validation.Min(0)),
		validation.Field(&s.Height, validation.Min(0)),
		validation.Field(&s.Monitor, validation.Min(0)),
		validation.Field(&s.Snap, validation.In(
			SnapLeft, SnapRight, SnapTop, SnapBottom,
			SnapTopLeft, SnapTopRight, SnapBottomLeft, SnapBottomRight)),
	)
}

// Preset is a named, ordered collection of window snapshots.
type Preset struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	// MonitorCount is the total number of monitors present at capture
	// time; restore uses it to decide how saved monitor indices map onto
	// the current topology. Zero means unknown (presets written before
	// the field existed).
	MonitorCount int        `json:"monitors,omitempty"`
	Windows      []Snapshot `json:"windows"`
}

// Validate checks a preset and all of its snapshots against the schema.
func (p Preset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.MonitorCount, validation.Min(0)),
		validation.Field(&p.Windows),
	)
}

// SavedMonitorCount returns the monitor count recorded at capture, deriving
// a lower bound from the snapshots for presets that predate the field.
func (p Preset) SavedMonitorCount() int {
	if p.MonitorCount > 0 {
		return p.MonitorCount
	}
	count := 1
	for _, w := range p.Windows {
		if w.Monitor+1 > count {
			count = w.Monitor + 1
		}
	}
	return count
}

// Meta is the listing view of a preset, without window data.
type Meta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	WindowCount int       `json:"window_count"`
}

// Collection is the on-disk preset collection.
type Collection struct {
	Presets []Preset `json:"presets"`
}

// Validate checks every preset in the collection. Any structural deviation
// fails the whole collection; loaders never attempt partial interpretation.
func (c Collection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Presets),
	)
}
