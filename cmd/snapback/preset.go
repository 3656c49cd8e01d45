package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bkonrad/snapback/internal/apperr"
)

func printPresetUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snapback preset list")
	fmt.Fprintln(w, "  snapback preset show <preset>")
	fmt.Fprintln(w, "  snapback preset delete [--yes] <id>")
	fmt.Fprintln(w, "  snapback preset rename <id> <new-name>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapback preset <command> --help' for command-specific options.")
}

func runPreset(args []string) int {
	if len(args) == 0 {
		printPresetUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printPresetUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "list":
		return runPresetList(args[1:])
	case "show":
		return runPresetShow(args[1:])
	case "delete":
		return runPresetDelete(args[1:])
	case "rename":
		return runPresetRename(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown preset command: %s\n\n", args[0])
		printPresetUsage(os.Stderr)
		return 2
	}
}

func runPresetList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapback preset list")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "preset list takes no arguments")
		fs.Usage()
		return 2
	}

	eng, cleanup, err := openStoreOnly()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	metas, err := eng.store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if len(metas) == 0 {
		fmt.Println("no presets saved")
		return 0
	}

	for _, m := range metas {
		fmt.Printf("%s  %-24s %2d windows  %s\n",
			m.ID, m.Name, m.WindowCount, m.Created.Local().Format("2006-01-02 15:04"))
	}
	return 0
}

func runPresetShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapback preset show <preset>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a preset's saved windows. Accepts an id or a name.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "preset show requires exactly one <preset>")
		fs.Usage()
		return 2
	}

	eng, cleanup, err := openStoreOnly()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	p, err := eng.store.Get(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("%s (%s)\n", p.Name, p.ID)
	fmt.Printf("created: %s, monitors at capture: %d\n",
		p.Created.Local().Format("2006-01-02 15:04"), p.SavedMonitorCount())
	for i, w := range p.Windows {
		fmt.Printf("[%d] %s  %q\n", i, w.Executable, w.Title)
		fmt.Printf("    %dx%d+%d+%d  state=%s monitor=%d", w.Width, w.Height, w.X, w.Y, w.State, w.Monitor)
		if w.Snap != "" {
			fmt.Printf(" snap=%s", w.Snap)
		}
		fmt.Println()
		if w.Args != "" {
			fmt.Printf("    args: %s\n", w.Args)
		}
		if len(w.Tabs) > 0 {
			fmt.Printf("    tabs: %d\n", len(w.Tabs))
		}
	}
	return 0
}

func runPresetDelete(args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapback preset delete [--yes] <id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "preset delete requires exactly one <id>")
		fs.Usage()
		return 2
	}
	id := fs.Arg(0)

	eng, cleanup, err := openStoreOnly()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	p, err := eng.store.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "preset %q not found\n", id)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if !*yes {
		if !confirm(fmt.Sprintf("Delete preset %q (%d windows)?", p.Name, len(p.Windows))) {
			fmt.Println("aborted")
			return 1
		}
	}

	if err := eng.store.Delete(p.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("deleted %q\n", p.Name)
	return 0
}

func runPresetRename(args []string) int {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapback preset rename <id> <new-name>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "preset rename requires <id> and <new-name>")
		fs.Usage()
		return 2
	}

	eng, cleanup, err := openStoreOnly()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	renamed, err := eng.store.Rename(fs.Arg(0), fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("renamed to %q\n", renamed.Name)
	return 0
}

// confirm asks a yes/no question on the terminal. Non-interactive stdin
// (pipes, scripts) counts as a refusal; use --yes there.
func confirm(prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "stdin is not a terminal; pass --yes to confirm")
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
