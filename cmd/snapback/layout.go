package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bkonrad/snapback/internal/apperr"
	"github.com/bkonrad/snapback/internal/topology"
)

func runSave(args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapback save <name>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Capture the current window layout and save it as a named preset.")
		fmt.Fprintln(os.Stderr, "A name already in use gets a numeric suffix instead of overwriting.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "save requires exactly one <name>")
		fs.Usage()
		return 2
	}

	eng, cleanup, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	result, err := eng.capturer.Capture()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(result.Windows) == 0 {
		fmt.Fprintln(os.Stderr, "no capturable windows found")
		return 1
	}

	saved, err := eng.store.Save(fs.Arg(0), result.Windows, result.MonitorCount)
	if err != nil {
		if saved.ID == "" {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		// Corrupted store was quarantined; the save itself went through.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	fmt.Printf("saved %q (%d windows, %d monitors)\n", saved.Name, len(saved.Windows), result.MonitorCount)
	fmt.Printf("id: %s\n", saved.ID)
	return 0
}

func runRestore(args []string) int {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapback restore <preset>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Restore a preset by id or name: reuse or relaunch each saved")
		fmt.Fprintln(os.Stderr, "program's window and reposition it on the current monitors.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "restore requires exactly one <preset>")
		fs.Usage()
		return 2
	}

	eng, cleanup, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	target, err := eng.store.Get(fs.Arg(0))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "preset %q not found\n", fs.Arg(0))
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := eng.orch.Restore(ctx, target)
	if err != nil && report == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, e := range report.Entries {
		fmt.Println(e)
	}
	fmt.Println(report)

	if report.Restored() == 0 && len(report.Entries) > 0 {
		return 1
	}
	return 0
}

func runMonitors(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: snapback monitors")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Show the current monitors in the deterministic order used by")
		fmt.Fprintln(os.Stdout, "saved monitor indices.")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "monitors takes no arguments")
		return 2
	}

	eng, cleanup, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	monitors, err := topology.Current(eng.backend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, m := range monitors {
		fmt.Printf("[%d] %s  %dx%d+%d+%d  work %dx%d+%d+%d\n",
			m.Index, m.Name,
			m.Bounds.Width, m.Bounds.Height, m.Bounds.X, m.Bounds.Y,
			m.Usable.Width, m.Usable.Height, m.Usable.X, m.Usable.Y)
	}
	return 0
}
