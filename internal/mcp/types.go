package mcp

import "time"

// SaveLayoutInput is the input for the save_layout tool.
type SaveLayoutInput struct {
	Name string `json:"name" jsonschema:"required,Name for the new preset. A duplicate name gets a numeric suffix instead of overwriting."`
}

// SaveLayoutOutput is the output for the save_layout tool.
type SaveLayoutOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WindowCount int    `json:"window_count"`
	Monitors    int    `json:"monitors"`
}

// RestoreLayoutInput is the input for the restore_layout tool.
type RestoreLayoutInput struct {
	Preset string `json:"preset" jsonschema:"required,Preset id or name to restore"`
}

// RestoreWindowResult is one window's outcome in restore_layout output.
type RestoreWindowResult struct {
	Executable string `json:"executable"`
	Title      string `json:"title"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RestoreLayoutOutput is the output for the restore_layout tool.
type RestoreLayoutOutput struct {
	Preset   string                `json:"preset"`
	Restored int                   `json:"restored"`
	Skipped  int                   `json:"skipped"`
	Windows  []RestoreWindowResult `json:"windows"`
}

// ListPresetsInput is the input for the list_presets tool.
type ListPresetsInput struct{}

// PresetSummary is one preset in list_presets output.
type PresetSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	WindowCount int       `json:"window_count"`
}

// ListPresetsOutput is the output for the list_presets tool.
type ListPresetsOutput struct {
	Presets []PresetSummary `json:"presets"`
	// StoreWarning reports a quarantined, corrupted collection file.
	StoreWarning string `json:"store_warning,omitempty"`
}

// DeletePresetInput is the input for the delete_preset tool.
type DeletePresetInput struct {
	ID string `json:"id" jsonschema:"required,Preset id to delete"`
}

// DeletePresetOutput is the output for the delete_preset tool.
type DeletePresetOutput struct {
	Deleted bool `json:"deleted"`
}

// RenamePresetInput is the input for the rename_preset tool.
type RenamePresetInput struct {
	ID      string `json:"id" jsonschema:"required,Preset id to rename"`
	NewName string `json:"new_name" jsonschema:"required,New preset name. A duplicate name gets a numeric suffix."`
}

// RenamePresetOutput is the output for the rename_preset tool.
type RenamePresetOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// MonitorSummary is one monitor in list_monitors output, in the
// deterministic order used by saved monitor indices.
type MonitorSummary struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	WorkX      int    `json:"work_x"`
	WorkY      int    `json:"work_y"`
	WorkWidth  int    `json:"work_width"`
	WorkHeight int    `json:"work_height"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorSummary `json:"monitors"`
}
