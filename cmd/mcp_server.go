package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/aerospace-layouts/internal/apps"
	"github.com/mj1618/aerospace-layouts/internal/config"
	"github.com/mj1618/aerospace-layouts/internal/display"
	"github.com/mj1618/aerospace-layouts/internal/engine"
	"github.com/mj1618/aerospace-layouts/internal/runner"
	"github.com/mj1618/aerospace-layouts/internal/version"
	"github.com/mj1618/aerospace-layouts/internal/wm"
)

// mcpServer exposes the layout engine over MCP. Applying a layout
// mutates the single shared window-manager state, so tool calls are
// serialized.
type mcpServer struct {
	mu  sync.Mutex
	mcp *mcpserver.MCPServer
}

func newMCPServer() (*mcpServer, error) {
	s := &mcpServer{}
	s.mcp = mcpserver.NewMCPServer("aerospace-layouts", version.Version)
	s.registerTools()
	return s, nil
}

func (s *mcpServer) serve(transport string, port int) error {
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("apply_layout",
			mcp.WithDescription("Apply a named window layout: clears the target workspace, moves the configured application windows into it, arranges and resizes them."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Layout name from the config file")),
		),
		s.handleApplyLayout,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_layouts",
			mcp.WithDescription("List the configured layouts with their target workspace and tiling mode"),
		),
		s.handleListLayouts,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_displays",
			mcp.WithDescription("List the attached displays with resolution, main, and internal flags"),
		),
		s.handleListDisplays,
	)
}

// yamlResult serializes v to YAML for an MCP text result.
func yamlResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func (s *mcpServer) handleApplyLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringParam(request.GetArguments(), "name")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := config.Load(configPath())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	layout, err := cfg.Layout(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r := runner.New(logger)
	eng := engine.New(
		wm.NewAerospace(r),
		&apps.Launcher{Runner: r, Log: logger},
		&display.Lister{Runner: r, Log: logger},
		logger,
	)
	if err := eng.Apply(ctx, layout, cfg.StashWorkspace); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return yamlResult(ApplyResult{
		OK:        true,
		Action:    "apply",
		Layout:    name,
		Workspace: layout.Workspace,
	})
}

func (s *mcpServer) handleListLayouts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries := []layoutEntry{}
	for _, name := range cfg.LayoutNames() {
		l := cfg.Layouts[name]
		entries = append(entries, layoutEntry{
			Name:        name,
			Workspace:   l.Workspace,
			Layout:      string(l.Mode),
			Orientation: string(l.Orientation),
			Display:     l.Display,
			Windows:     countWindows(l.Windows),
		})
	}
	return yamlResult(entries)
}

func (s *mcpServer) handleListDisplays(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lister := &display.Lister{Runner: runner.New(logger), Log: logger}
	displays, err := lister.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(displays)
}
