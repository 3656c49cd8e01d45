package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bkonrad/snapback/internal/capture"
	"github.com/bkonrad/snapback/internal/platform"
	"github.com/bkonrad/snapback/internal/preset"
	"github.com/bkonrad/snapback/internal/restore"
	"github.com/bkonrad/snapback/internal/runtimepath"
	"github.com/bkonrad/snapback/internal/topology"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener

	store    *preset.Store
	capturer *capture.Capturer
	orch     *restore.Orchestrator
	backend  platform.Backend

	startTime time.Time

	lastRestore   string
	lastRestoreMu sync.Mutex

	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(store *preset.Store, capturer *capture.Capturer, orch *restore.Orchestrator, backend platform.Backend) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		store:      store,
		capturer:   capturer,
		orch:       orch,
		backend:    backend,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("ipc: listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("ipc: accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("ipc: read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("ipc: failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("ipc: failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandCaptureSave:
		return s.handleCaptureSave(req.Payload)
	case CommandRestorePreset:
		return s.handleRestorePreset(req.Payload)
	case CommandListPresets:
		return s.handleListPresets()
	case CommandDeletePreset:
		return s.handleDeletePreset(req.Payload)
	case CommandRenamePreset:
		return s.handleRenamePreset(req.Payload)
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandGetStatus:
		return s.handleGetStatus()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleCaptureSave(payload json.RawMessage) *Response {
	var p CaptureSavePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid capture payload: %v", err))
	}
	if p.Name == "" {
		return NewErrorResponse("name is required")
	}

	log.Printf("ipc: capturing layout %q", p.Name)

	result, err := s.capturer.Capture()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Capture failed: %v", err))
	}

	saved, err := s.store.Save(p.Name, result.Windows, result.MonitorCount)
	if err != nil && saved.ID == "" {
		return NewErrorResponse(fmt.Sprintf("Failed to save preset: %v", err))
	}

	resp, _ := NewOKResponse(SaveData{
		ID:          saved.ID,
		Name:        saved.Name,
		WindowCount: len(saved.Windows),
	})
	return resp
}

func (s *Server) handleRestorePreset(payload json.RawMessage) *Response {
	var p RestorePresetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid restore payload: %v", err))
	}
	if p.Preset == "" {
		return NewErrorResponse("preset is required")
	}

	target, err := s.store.Get(p.Preset)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load preset: %v", err))
	}

	log.Printf("ipc: restoring preset %q (%d windows)", target.Name, len(target.Windows))

	report, err := s.orch.Restore(context.Background(), target)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Restore failed: %v", err))
	}

	s.lastRestoreMu.Lock()
	s.lastRestore = report.String()
	s.lastRestoreMu.Unlock()

	data := RestoreData{
		Preset:   report.Preset,
		Restored: report.Restored(),
		Skipped:  report.Skipped(),
		Windows:  make([]RestoreEntry, len(report.Entries)),
	}
	for i, e := range report.Entries {
		re := RestoreEntry{
			Executable: e.Executable,
			Title:      e.Title,
			Outcome:    string(e.Outcome),
			Reason:     string(e.Reason),
		}
		if e.Err != nil {
			re.Error = e.Err.Error()
		}
		data.Windows[i] = re
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleListPresets() *Response {
	metas, err := s.store.List()

	data := PresetsData{Presets: make([]PresetInfo, len(metas))}
	for i, m := range metas {
		data.Presets[i] = PresetInfo{
			ID:          m.ID,
			Name:        m.Name,
			Created:     m.Created,
			WindowCount: m.WindowCount,
		}
	}
	// A corrupted store yields an empty, usable listing plus a warning.
	if err != nil {
		data.StoreWarning = err.Error()
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleDeletePreset(payload json.RawMessage) *Response {
	var p DeletePresetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid delete payload: %v", err))
	}
	if p.ID == "" {
		return NewErrorResponse("id is required")
	}

	if err := s.store.Delete(p.ID); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to delete preset: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleRenamePreset(payload json.RawMessage) *Response {
	var p RenamePresetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid rename payload: %v", err))
	}
	if p.ID == "" || p.NewName == "" {
		return NewErrorResponse("id and new_name are required")
	}

	renamed, err := s.store.Rename(p.ID, p.NewName)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to rename preset: %v", err))
	}

	resp, _ := NewOKResponse(PresetInfo{
		ID:          renamed.ID,
		Name:        renamed.Name,
		Created:     renamed.Created,
		WindowCount: len(renamed.Windows),
	})
	return resp
}

// handleGetMonitors returns the current topology in capture order.
func (s *Server) handleGetMonitors() *Response {
	monitors, err := topology.Current(s.backend)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	infos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		infos[i] = MonitorInfo{
			Index:      m.Index,
			Name:       m.Name,
			X:          m.Bounds.X,
			Y:          m.Bounds.Y,
			Width:      m.Bounds.Width,
			Height:     m.Bounds.Height,
			WorkX:      m.Usable.X,
			WorkY:      m.Usable.Y,
			WorkWidth:  m.Usable.Width,
			WorkHeight: m.Usable.Height,
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: infos})
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	presetCount := 0
	if metas, err := s.store.List(); err == nil {
		presetCount = len(metas)
	}

	monitorCount := 0
	if monitors, err := topology.Current(s.backend); err == nil {
		monitorCount = len(monitors)
	}

	s.lastRestoreMu.Lock()
	last := s.lastRestore
	s.lastRestoreMu.Unlock()

	status := StatusData{
		PresetCount:   presetCount,
		MonitorCount:  monitorCount,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		LastRestore:   last,
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
