package layout

import (
	"encoding/json"
	"testing"
	"time"
)

func validSnapshot() Snapshot {
	return Snapshot{
		Executable: "/usr/bin/editor",
		Title:      "main.go",
		X:          100, Y: 100, Width: 800, Height: 600,
		State: StateNormal, Monitor: 0,
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr bool
	}{
		{"valid", func(*Snapshot) {}, false},
		{"valid maximized", func(s *Snapshot) { s.State = StateMaximized }, false},
		{"valid with snap", func(s *Snapshot) { s.Snap = SnapLeft }, false},
		{"missing executable", func(s *Snapshot) { s.Executable = "" }, true},
		{"missing state", func(s *Snapshot) { s.State = "" }, true},
		{"unknown state", func(s *Snapshot) { s.State = "sideways" }, true},
		{"unknown snap zone", func(s *Snapshot) { s.Snap = "diagonal" }, true},
		{"negative width", func(s *Snapshot) { s.Width = -1 }, true},
		{"negative monitor", func(s *Snapshot) { s.Monitor = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPresetValidate(t *testing.T) {
	p := Preset{
		ID:      "abc",
		Name:    "Work",
		Created: time.Now(),
		Windows: []Snapshot{validSnapshot()},
	}
	if err := p.Validate(); err != nil {
		t.Errorf("valid preset rejected: %v", err)
	}

	p.ID = ""
	if err := p.Validate(); err == nil {
		t.Error("preset without id accepted")
	}

	p.ID = "abc"
	p.Windows[0].State = "sideways"
	if err := p.Validate(); err == nil {
		t.Error("preset with invalid window accepted")
	}
}

func TestSavedMonitorCount(t *testing.T) {
	tests := []struct {
		name   string
		preset Preset
		want   int
	}{
		{
			"explicit field wins",
			Preset{MonitorCount: 3, Windows: []Snapshot{{Monitor: 0}}},
			3,
		},
		{
			"derived from highest index",
			Preset{Windows: []Snapshot{{Monitor: 0}, {Monitor: 2}, {Monitor: 1}}},
			3,
		},
		{
			"empty preset assumes one monitor",
			Preset{},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.preset.SavedMonitorCount(); got != tt.want {
				t.Errorf("SavedMonitorCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	s := validSnapshot()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"executable", "title", "x", "y", "width", "height", "state", "monitor"} {
		if _, ok := m[key]; !ok {
			t.Errorf("key %q missing from wire shape: %s", key, data)
		}
	}
	for _, key := range []string{"args", "snap", "tabs"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty optional key %q serialized: %s", key, data)
		}
	}
}

func TestLegacyPresetDecodes(t *testing.T) {
	// Presets written before the monitors field existed.
	legacy := `{
		"id": "1f2e",
		"name": "old",
		"created": "2024-03-01T10:00:00Z",
		"windows": [
			{"executable": "/usr/bin/editor", "args": "--new", "title": "t",
			 "x": 0, "y": 0, "width": 800, "height": 600,
			 "state": "normal", "monitor": 1}
		]
	}`

	var p Preset
	if err := json.Unmarshal([]byte(legacy), &p); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("legacy preset invalid: %v", err)
	}
	if p.SavedMonitorCount() != 2 {
		t.Errorf("SavedMonitorCount() = %d, want 2 (derived)", p.SavedMonitorCount())
	}
}
