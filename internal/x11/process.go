package x11

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProcessPath resolves the absolute executable path of a process by
// following the /proc/<pid>/exe symlink.
func ProcessPath(pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}
	target := filepath.Join("/proc", fmt.Sprintf("%d", pid), "exe")
	path, err := os.Readlink(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable from %s: %w", target, err)
	}
	// A deleted binary reads as "/path/to/exe (deleted)".
	return strings.TrimSuffix(path, " (deleted)"), nil
}

// ProcessArgs reads the launch arguments of a process from
// /proc/<pid>/cmdline, excluding the executable itself.
func ProcessArgs(pid int) ([]string, error) {
	path := filepath.Join("/proc", fmt.Sprintf("%d", pid), "cmdline")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cmdline from %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	parts := strings.Split(string(data), "\x00")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if p == "" || i == 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
