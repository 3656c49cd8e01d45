package preset

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bkonrad/snapback/internal/apperr"
	"github.com/bkonrad/snapback/internal/layout"
)

func testWindows() []layout.Snapshot {
	return []layout.Snapshot{
		{
			Executable: "/usr/bin/editor",
			Title:      "main.go",
			X:          100, Y: 100, Width: 800, Height: 600,
			State: layout.StateNormal, Monitor: 0,
		},
		{
			Executable: "/usr/bin/term",
			Title:      "shell",
			X:          900, Y: 100, Width: 800, Height: 600,
			State: layout.StateMaximized, Monitor: 1,
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("Work", testWindows(), 2)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved preset has no id")
	}
	if saved.MonitorCount != 2 {
		t.Errorf("MonitorCount = %d, want 2", saved.MonitorCount)
	}

	byID, err := s.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get(id) error: %v", err)
	}
	if byID.Name != "Work" || len(byID.Windows) != 2 {
		t.Errorf("Get(id) = %+v", byID)
	}

	byName, err := s.Get("work")
	if err != nil {
		t.Fatalf("Get(name) error: %v", err)
	}
	if byName.ID != saved.ID {
		t.Errorf("case-insensitive name lookup returned %q", byName.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDuplicateNamesGetSuffixes(t *testing.T) {
	s := newTestStore(t)

	first, _ := s.Save("Work", testWindows(), 2)
	second, err := s.Save("Work", testWindows(), 2)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	third, err := s.Save("work", testWindows(), 2)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if first.Name != "Work" {
		t.Errorf("first = %q", first.Name)
	}
	if second.Name != "Work (2)" {
		t.Errorf("second = %q, want \"Work (2)\"", second.Name)
	}
	// Suffixing is case-insensitive; "work" collides with "Work".
	if third.Name != "work (3)" {
		t.Errorf("third = %q, want \"work (3)\"", third.Name)
	}
}

func TestDeleteAndRename(t *testing.T) {
	s := newTestStore(t)

	a, _ := s.Save("A", testWindows(), 1)
	b, _ := s.Save("B", testWindows(), 1)

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted preset still found: %v", err)
	}
	if err := s.Delete(a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete error = %v, want ErrNotFound", err)
	}

	renamed, err := s.Rename(b.ID, "Evening")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if renamed.Name != "Evening" {
		t.Errorf("renamed to %q", renamed.Name)
	}

	c, _ := s.Save("Morning", testWindows(), 1)
	renamed, err = s.Rename(c.ID, "Evening")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if renamed.Name != "Evening (2)" {
		t.Errorf("rename collision = %q, want \"Evening (2)\"", renamed.Name)
	}
}

func TestRenameToSameNameKeepsIt(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Save("Work", testWindows(), 1)

	renamed, err := s.Rename(a.ID, "Work")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	// The preset's own name doesn't collide with itself.
	if renamed.Name != "Work" {
		t.Errorf("renamed = %q, want \"Work\"", renamed.Name)
	}
}

func TestListSorted(t *testing.T) {
	s := newTestStore(t)
	s.Save("B", testWindows(), 1)
	s.Save("A", testWindows(), 1)

	metas, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List() = %d entries", len(metas))
	}
	if metas[0].WindowCount != 2 {
		t.Errorf("WindowCount = %d, want 2", metas[0].WindowCount)
	}
	if metas[0].Name != "B" {
		t.Errorf("expected creation order, got %q first", metas[0].Name)
	}
}

func TestPersistenceAcrossStores(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := s1.Save("Work", testWindows(), 2)
	if err != nil {
		t.Fatal(err)
	}

	s2, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s2.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if got.Name != "Work" || got.MonitorCount != 2 || len(got.Windows) != 2 {
		t.Errorf("reloaded preset = %+v", got)
	}
	if got.Windows[1].State != layout.StateMaximized {
		t.Errorf("window state lost: %+v", got.Windows[1])
	}
}

func TestWireFormat(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("Work", testWindows(), 2); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "presets.json"))
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("collection is not a JSON object: %v", err)
	}
	if _, ok := doc["presets"]; !ok {
		t.Fatal("top-level \"presets\" key missing")
	}

	text := string(data)
	for _, key := range []string{`"executable"`, `"title"`, `"state"`, `"monitor"`, `"windows"`, `"created"`} {
		if !strings.Contains(text, key) {
			t.Errorf("wire format missing %s", key)
		}
	}
	// Empty optional fields stay off the wire.
	if strings.Contains(text, `"args"`) || strings.Contains(text, `"tabs"`) || strings.Contains(text, `"snap"`) {
		t.Errorf("optional fields serialized when empty:\n%s", text)
	}
}

func TestCorruptedStoreQuarantined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	metas, err := s.List()
	if !errors.Is(err, apperr.ErrStoreCorrupted) {
		t.Fatalf("List() error = %v, want ErrStoreCorrupted", err)
	}
	if len(metas) != 0 {
		t.Errorf("List() = %d entries from corrupt store", len(metas))
	}

	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("error %T does not carry backup details", err)
	}
	if corrupt.BackupPath == "" {
		t.Fatal("no backup path recorded")
	}
	backup, readErr := os.ReadFile(corrupt.BackupPath)
	if readErr != nil {
		t.Fatalf("backup unreadable: %v", readErr)
	}
	if string(backup) != "{not json" {
		t.Errorf("backup content = %q", backup)
	}

	// The store is usable again after the quarantine.
	if _, err := s.Save("Fresh", testWindows(), 1); err != nil {
		t.Fatalf("Save() after quarantine error: %v", err)
	}
	metas, err = s.List()
	if err != nil {
		t.Fatalf("List() after recovery error: %v", err)
	}
	if len(metas) != 1 || metas[0].Name != "Fresh" {
		t.Errorf("recovered listing = %+v", metas)
	}
}

func TestStructurallyInvalidCollectionIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.json")
	// Well-formed JSON, but a preset without id or state violates the schema.
	bad := `{"presets":[{"name":"broken","windows":[{"executable":"","title":"x","x":0,"y":0,"width":1,"height":1,"state":"sideways","monitor":0}]}]}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.List()
	if !errors.Is(err, apperr.ErrStoreCorrupted) {
		t.Fatalf("List() error = %v, want ErrStoreCorrupted", err)
	}
}

func TestSaveEmptyNameRejected(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("   ", testWindows(), 1); !errors.Is(err, apperr.ErrInvalidPreset) {
		t.Errorf("Save(blank) error = %v, want ErrInvalidPreset", err)
	}
	if _, err := s.Rename("whatever", ""); !errors.Is(err, apperr.ErrInvalidPreset) {
		t.Errorf("Rename(blank) error = %v, want ErrInvalidPreset", err)
	}
}
