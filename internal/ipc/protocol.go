// Package ipc is the unix-socket control protocol between the snapback
// daemon and its shell-integration clients (tray, shortcuts, CLI). Requests
// and responses are single-line JSON.
package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandCaptureSave   CommandType = "CAPTURE_SAVE"
	CommandRestorePreset CommandType = "RESTORE_PRESET"
	CommandListPresets   CommandType = "LIST_PRESETS"
	CommandDeletePreset  CommandType = "DELETE_PRESET"
	CommandRenamePreset  CommandType = "RENAME_PRESET"
	CommandGetMonitors   CommandType = "GET_MONITORS"
	CommandGetStatus     CommandType = "GET_STATUS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// CaptureSavePayload is the payload for CAPTURE_SAVE.
type CaptureSavePayload struct {
	Name string `json:"name"`
}

// RestorePresetPayload is the payload for RESTORE_PRESET. Preset accepts an
// id or a name.
type RestorePresetPayload struct {
	Preset string `json:"preset"`
}

// DeletePresetPayload is the payload for DELETE_PRESET.
type DeletePresetPayload struct {
	ID string `json:"id"`
}

// RenamePresetPayload is the payload for RENAME_PRESET.
type RenamePresetPayload struct {
	ID      string `json:"id"`
	NewName string `json:"new_name"`
}

// PresetInfo is one preset in a listing.
type PresetInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	WindowCount int       `json:"window_count"`
}

// PresetsData is the data returned by LIST_PRESETS.
type PresetsData struct {
	Presets []PresetInfo `json:"presets"`
	// StoreWarning is set when the on-disk collection was corrupted and
	// quarantined; the listing is then freshly empty.
	StoreWarning string `json:"store_warning,omitempty"`
}

// SaveData is the data returned by CAPTURE_SAVE.
type SaveData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WindowCount int    `json:"window_count"`
}

// RestoreEntry is one window's outcome in RESTORE_PRESET data.
type RestoreEntry struct {
	Executable string `json:"executable"`
	Title      string `json:"title"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RestoreData is the data returned by RESTORE_PRESET.
type RestoreData struct {
	Preset   string         `json:"preset"`
	Restored int            `json:"restored"`
	Skipped  int            `json:"skipped"`
	Windows  []RestoreEntry `json:"windows"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
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

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PresetCount   int    `json:"preset_count"`
	MonitorCount  int    `json:"monitor_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LastRestore   string `json:"last_restore,omitempty"`
	DaemonRunning bool   `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
