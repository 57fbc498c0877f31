package main

import (
	"os"
	"path/filepath"
)

const appName = "emerald"

// Mode selects which host the process runs.
type Mode int

const (
	// ModeNative runs the Wails webview window.
	ModeNative Mode = iota
	// ModeServe serves the editor to browser tabs.
	ModeServe
	// ModeMCP serves browser tabs and an MCP server on stdio.
	ModeMCP
)

func (m Mode) String() string {
	switch m {
	case ModeServe:
		return "serve"
	case ModeMCP:
		return "mcp"
	default:
		return "native"
	}
}

// Config is assembled from flags and the environment.
type Config struct {
	Mode        Mode
	ShowVersion bool
	StateDir    string
	BuildDir    string
}

// stateDirOverride allows tests to redirect state files to a temp directory.
var stateDirOverride string

func stateDir() string {
	if stateDirOverride != "" {
		return stateDirOverride
	}
	if dir := os.Getenv("EMERALD_STATE_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName)
}

// hasFlag reports whether name appears among the flags in args[1:].
func hasFlag(args []string, name string) bool {
	if len(args) < 2 {
		return false
	}
	for _, arg := range args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func loadConfig(args []string) Config {
	cfg := Config{
		Mode:        ModeNative,
		ShowVersion: hasFlag(args, "--version"),
		StateDir:    stateDir(),
		BuildDir:    os.Getenv("EMERALD_BUILD_DIR"),
	}
	switch {
	case hasFlag(args, "--mcp"):
		cfg.Mode = ModeMCP
	case hasFlag(args, "--serve"):
		cfg.Mode = ModeServe
	}
	return cfg
}
