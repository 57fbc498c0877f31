package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCP tool input/output types

type OpenFileInput struct {
	Path string `json:"path" jsonschema:"path of the markdown file to open, absolute or relative to the editor's working directory"`
}

type OpenFileOutput struct {
	Path    string `json:"path" jsonschema:"the resolved absolute path"`
	Decided string `json:"decided" jsonschema:"deliver when an open window received the file, create when a new window was opened for it"`
}

type ListWindowsInput struct{}

type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows" jsonschema:"the editor windows currently connected"`
}

type PendingOpenInput struct{}

type PendingOpenOutput struct {
	Pending bool `json:"pending" jsonschema:"whether a file is waiting for a window to be shown"`
}

func newMCPServer(shell *Shell, host WindowHost) *mcp.Server {
	s := mcp.NewServer(
		&mcp.Implementation{
			Name:    "emerald",
			Version: Version,
		},
		nil,
	)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "open_file",
		Description: "Open a markdown file in the editor. The focused window receives it, or a new window is opened.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input OpenFileInput) (*mcp.CallToolResult, OpenFileOutput, error) {
		if input.Path == "" {
			return nil, OpenFileOutput{}, fmt.Errorf("path is required")
		}
		d := shell.OpenFile(input.Path)
		return nil, OpenFileOutput{Path: d.Path(), Decided: d.Kind.String()}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_windows",
		Description: "List the open editor windows with their focus and visibility",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ListWindowsInput) (*mcp.CallToolResult, ListWindowsOutput, error) {
		windows := host.Windows()
		if windows == nil {
			windows = []WindowInfo{}
		}
		return nil, ListWindowsOutput{Windows: windows}, nil
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "pending_open",
		Description: "Report whether a file is waiting for the next window to be shown",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input PendingOpenInput) (*mcp.CallToolResult, PendingOpenOutput, error) {
		return nil, PendingOpenOutput{Pending: shell.GetCliArgs()}, nil
	})

	return s
}

// runMCP starts the HTTP server for browser windows and the MCP stdio server.
// The MCP tools route file-opens to those windows.
func runMCP(cfg Config) error {
	host := NewBrowserHost()
	shell := NewShell(host, NewPathResolver(cfg.BuildDir))

	srv, err := startServer(shell, host)
	if err != nil {
		return err
	}
	defer func() {
		srv.shutdown()
		fmt.Fprintln(os.Stderr, "Stopped.")
	}()
	fmt.Fprintf(os.Stderr, "Emerald running at %s\n", srv.url)

	s := newMCPServer(shell, host)
	if err := s.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
