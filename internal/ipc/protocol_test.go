package ipc

import (
	"encoding/json"
	"testing"
)

func TestParseRequest(t *testing.T) {
	data := []byte(`{"command":"RESTORE_PRESET","payload":{"preset":"Work"}}` + "\n")

	req, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("ParseRequest() error: %v", err)
	}
	if req.Command != CommandRestorePreset {
		t.Errorf("Command = %q", req.Command)
	}

	var p RestorePresetPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		t.Fatalf("payload decode error: %v", err)
	}
	if p.Preset != "Work" {
		t.Errorf("Preset = %q", p.Preset)
	}
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	if _, err := ParseRequest([]byte("not json\n")); err == nil {
		t.Error("garbage request accepted")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp, err := NewOKResponse(StatusData{PresetCount: 4, DaemonRunning: true})
	if err != nil {
		t.Fatalf("NewOKResponse() error: %v", err)
	}

	data, err := resp.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if decoded.Status != "OK" {
		t.Errorf("Status = %q", decoded.Status)
	}

	var status StatusData
	if err := json.Unmarshal(decoded.Data, &status); err != nil {
		t.Fatalf("data decode error: %v", err)
	}
	if status.PresetCount != 4 || !status.DaemonRunning {
		t.Errorf("status = %+v", status)
	}
}

func TestErrorResponse(t *testing.T) {
	resp := NewErrorResponse("preset not found")
	if resp.Status != "ERROR" || resp.Error != "preset not found" {
		t.Errorf("resp = %+v", resp)
	}
}
