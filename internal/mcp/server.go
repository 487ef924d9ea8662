package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/shares"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes diagram rendering and sharing tools.
type Server struct {
	renderers *render.Registry
	shares    *shares.Store
	plantuml  string // PlantUML server base URL
	baseURL   string // public URL of the usediagram server, for share links
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. store may be nil, in which case the
// share tools report that sharing is unavailable.
func NewServer(renderers *render.Registry, store *shares.Store, plantumlURL, baseURL string) *Server {
	s := &Server{
		renderers: renderers,
		shares:    store,
		plantuml:  plantumlURL,
		baseURL:   baseURL,
	}

	s.mcp = server.NewMCPServer(
		"usediagram",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(renderDiagramTool, s.handleRenderDiagram)
	s.mcp.AddTool(encodeDiagramTool, s.handleEncodeDiagram)
	s.mcp.AddTool(decodeDiagramTool, s.handleDecodeDiagram)
	s.mcp.AddTool(shareDiagramTool, s.handleShareDiagram)
	s.mcp.AddTool(getSharedDiagramTool, s.handleGetSharedDiagram)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
