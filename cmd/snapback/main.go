package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/bkonrad/snapback/internal/capture"
	"github.com/bkonrad/snapback/internal/config"
	"github.com/bkonrad/snapback/internal/ipc"
	"github.com/bkonrad/snapback/internal/platform"
	"github.com/bkonrad/snapback/internal/preset"
	"github.com/bkonrad/snapback/internal/restore"
)

func main() {
	// Optional .env next to the invocation; real environment wins.
	godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "preset":
		os.Exit(runPreset(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: snapback <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  save <name>         Capture the current window layout as a preset")
	fmt.Fprintln(w, "  restore <preset>    Restore a preset by id or name")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  preset list         List saved presets")
	fmt.Fprintln(w, "  preset show         Show a preset's windows")
	fmt.Fprintln(w, "  preset delete       Delete a preset")
	fmt.Fprintln(w, "  preset rename       Rename a preset")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitors            Show the current monitor topology")
	fmt.Fprintln(w, "  serve               Start the IPC daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapback <command> --help' for command-specific options.")
}

// engine bundles the wired components behind the CLI commands.
type engine struct {
	cfg      *config.Config
	backend  *platform.LinuxBackend
	store    *preset.Store
	capturer *capture.Capturer
	orch     *restore.Orchestrator
}

// openEngine loads config, opens the window system, and wires the engine.
// Callers must call close when done.
func openEngine() (*engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = config.DefaultDataDir()
		if err != nil {
			return nil, nil, err
		}
	}
	store, err := preset.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return nil, nil, err
	}

	eng := &engine{
		cfg:      cfg,
		backend:  backend,
		store:    store,
		capturer: capture.New(backend, cfg.Capture, nil),
		orch:     restore.New(backend, cfg.Restore),
	}
	return eng, backend.Disconnect, nil
}

// openStoreOnly wires just the preset store, for commands that never touch
// the window system.
func openStoreOnly() (*engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = config.DefaultDataDir()
		if err != nil {
			return nil, nil, err
		}
	}
	store, err := preset.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	return &engine{cfg: cfg, store: store}, func() {}, nil
}

func runStatus(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: snapback status")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("preset_count:   %d\n", status.PresetCount)
	fmt.Printf("monitor_count:  %d\n", status.MonitorCount)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	if status.LastRestore != "" {
		fmt.Printf("last_restore:   %s\n", status.LastRestore)
	}
	return 0
}
