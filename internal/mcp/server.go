// Package mcp exposes layout capture and restore as MCP tools over stdio,
// so assistants can save and replay window arrangements.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bkonrad/snapback/internal/capture"
	"github.com/bkonrad/snapback/internal/platform"
	"github.com/bkonrad/snapback/internal/preset"
	"github.com/bkonrad/snapback/internal/restore"
	"github.com/bkonrad/snapback/internal/topology"
)

const (
	ServerName    = "snapback"
	ServerVersion = "0.1.0"
)

// Server is the MCP server over the layout engine.
type Server struct {
	mcpServer *mcpsdk.Server
	store     *preset.Store
	capturer  *capture.Capturer
	orch      *restore.Orchestrator
	backend   platform.Backend
}

// NewServer creates an MCP server wired to the given engine components.
func NewServer(store *preset.Store, capturer *capture.Capturer, orch *restore.Orchestrator, backend platform.Backend) *Server {
	s := &Server{
		store:    store,
		capturer: capturer,
		orch:     orch,
		backend:  backend,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Capture the current window layout (positions, sizes, states, owning programs) and save it as a named preset.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_layout",
		Description: "Restore a saved preset by id or name: relaunch or reuse each saved program's window and reposition it on the current monitors. Returns per-window outcomes; individual failures never abort the rest.",
	}, s.handleRestoreLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_presets",
		Description: "List all saved layout presets with id, name, creation time, and window count.",
	}, s.handleListPresets)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_preset",
		Description: "Delete a saved preset by id.",
	}, s.handleDeletePreset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rename_preset",
		Description: "Rename a saved preset by id. A name already in use gets a numeric suffix.",
	}, s.handleRenamePreset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the current monitors with bounds and work areas, in the deterministic order used by saved monitor indices.",
	}, s.handleListMonitors)
}

func (s *Server) handleSaveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SaveLayoutInput) (*mcpsdk.CallToolResult, SaveLayoutOutput, error) {
	if args.Name == "" {
		return nil, SaveLayoutOutput{}, fmt.Errorf("name is required")
	}

	result, err := s.capturer.Capture()
	if err != nil {
		return nil, SaveLayoutOutput{}, fmt.Errorf("capture failed: %w", err)
	}

	saved, err := s.store.Save(args.Name, result.Windows, result.MonitorCount)
	if err != nil && saved.ID == "" {
		return nil, SaveLayoutOutput{}, fmt.Errorf("failed to save preset: %w", err)
	}

	return nil, SaveLayoutOutput{
		ID:          saved.ID,
		Name:        saved.Name,
		WindowCount: len(saved.Windows),
		Monitors:    result.MonitorCount,
	}, nil
}

func (s *Server) handleRestoreLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args RestoreLayoutInput) (*mcpsdk.CallToolResult, RestoreLayoutOutput, error) {
	if args.Preset == "" {
		return nil, RestoreLayoutOutput{}, fmt.Errorf("preset is required")
	}

	target, err := s.store.Get(args.Preset)
	if err != nil {
		return nil, RestoreLayoutOutput{}, err
	}

	report, err := s.orch.Restore(ctx, target)
	if err != nil {
		return nil, RestoreLayoutOutput{}, err
	}

	out := RestoreLayoutOutput{
		Preset:   report.Preset,
		Restored: report.Restored(),
		Skipped:  report.Skipped(),
		Windows:  make([]RestoreWindowResult, len(report.Entries)),
	}
	for i, e := range report.Entries {
		r := RestoreWindowResult{
			Executable: e.Executable,
			Title:      e.Title,
			Outcome:    string(e.Outcome),
			Reason:     string(e.Reason),
		}
		if e.Err != nil {
			r.Error = e.Err.Error()
		}
		out.Windows[i] = r
	}
	return nil, out, nil
}

func (s *Server) handleListPresets(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPresetsInput) (*mcpsdk.CallToolResult, ListPresetsOutput, error) {
	metas, err := s.store.List()

	out := ListPresetsOutput{Presets: make([]PresetSummary, len(metas))}
	for i, m := range metas {
		out.Presets[i] = PresetSummary{
			ID:          m.ID,
			Name:        m.Name,
			Created:     m.Created,
			WindowCount: m.WindowCount,
		}
	}
	if err != nil {
		out.StoreWarning = err.Error()
	}
	return nil, out, nil
}

func (s *Server) handleDeletePreset(_ context.Context, _ *mcpsdk.CallToolRequest, args DeletePresetInput) (*mcpsdk.CallToolResult, DeletePresetOutput, error) {
	if args.ID == "" {
		return nil, DeletePresetOutput{}, fmt.Errorf("id is required")
	}
	if err := s.store.Delete(args.ID); err != nil {
		return nil, DeletePresetOutput{}, err
	}
	return nil, DeletePresetOutput{Deleted: true}, nil
}

func (s *Server) handleRenamePreset(_ context.Context, _ *mcpsdk.CallToolRequest, args RenamePresetInput) (*mcpsdk.CallToolResult, RenamePresetOutput, error) {
	if args.ID == "" || args.NewName == "" {
		return nil, RenamePresetOutput{}, fmt.Errorf("id and new_name are required")
	}
	renamed, err := s.store.Rename(args.ID, args.NewName)
	if err != nil {
		return nil, RenamePresetOutput{}, err
	}
	return nil, RenamePresetOutput{ID: renamed.ID, Name: renamed.Name}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	monitors, err := topology.Current(s.backend)
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}

	out := ListMonitorsOutput{Monitors: make([]MonitorSummary, len(monitors))}
	for i, m := range monitors {
		out.Monitors[i] = MonitorSummary{
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
	return nil, out, nil
}
