package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/bkonrad/snapback/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		// Restores launch processes and wait for windows; give them room.
		timeout: 60 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// CaptureSave captures the current layout under the given name.
func (c *Client) CaptureSave(name string) (*SaveData, error) {
	payload, err := json.Marshal(CaptureSavePayload{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capture payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandCaptureSave, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data SaveData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse save data: %w", err)
	}
	return &data, nil
}

// RestorePreset restores a preset by id or name.
func (c *Client) RestorePreset(idOrName string) (*RestoreData, error) {
	payload, err := json.Marshal(RestorePresetPayload{Preset: idOrName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal restore payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandRestorePreset, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data RestoreData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse restore data: %w", err)
	}
	return &data, nil
}

// ListPresets retrieves all stored presets.
func (c *Client) ListPresets() (*PresetsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListPresets})
	if err != nil {
		return nil, err
	}

	var data PresetsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse presets data: %w", err)
	}
	return &data, nil
}

// DeletePreset deletes a preset by id.
func (c *Client) DeletePreset(id string) error {
	payload, err := json.Marshal(DeletePresetPayload{ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal delete payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandDeletePreset, Payload: payload})
	return err
}

// RenamePreset renames a preset by id.
func (c *Client) RenamePreset(id, newName string) (*PresetInfo, error) {
	payload, err := json.Marshal(RenamePresetPayload{ID: id, NewName: newName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rename payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandRenamePreset, Payload: payload})
	if err != nil {
		return nil, err
	}

	var info PresetInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse rename data: %w", err)
	}
	return &info, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetMonitors})
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return &monitors, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
