package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/sanitize"
	"github.com/ziadkadry99/usediagram/internal/shares"
)

// handleRenderDiagram renders source with the renderer for kind.
func (s *Server) handleRenderDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}
	source, err := request.RequireString("source")
	if err != nil || strings.TrimSpace(source) == "" {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	r, ok := s.renderers.Get(kind)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported diagram kind %q", kind)), nil
	}

	res, err := r.Render(ctx, source)
	if err != nil {
		if errors.Is(err, render.ErrSyntax) {
			return mcp.NewToolResultError("Unable to render diagram, syntax is likely invalid: " + err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}

	svg, err := sanitize.SVG(res.Markup)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("renderer returned invalid svg: %v", err)), nil
	}
	return mcp.NewToolResultText(svg), nil
}

type encodeResult struct {
	Token  string `json:"token"`
	SVGURL string `json:"svg_url"`
	PNGURL string `json:"png_url"`
}

// handleEncodeDiagram encodes PlantUML source into a server token.
func (s *Server) handleEncodeDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	token, err := plantuml.Encode(source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}

	base := strings.TrimRight(s.plantuml, "/")
	return jsonResult(encodeResult{
		Token:  token,
		SVGURL: base + "/svg/" + token,
		PNGURL: base + "/png/" + token,
	})
}

// handleDecodeDiagram turns a token back into source text.
func (s *Server) handleDecodeDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := request.RequireString("token")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: token"), nil
	}

	source, err := plantuml.Decode(token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid token: %v", err)), nil
	}
	return mcp.NewToolResultText(source), nil
}

type shareResult struct {
	ShareID string `json:"share_id"`
	URL     string `json:"url"`
}

// handleShareDiagram stores a share.
func (s *Server) handleShareDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.shares == nil {
		return mcp.NewToolResultError("sharing is not configured"), nil
	}
	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	sh, err := s.shares.Create(ctx, shares.Share{Kind: kind, Content: source})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("share failed: %v", err)), nil
	}
	return jsonResult(shareResult{
		ShareID: sh.ShareID,
		URL:     strings.TrimRight(s.baseURL, "/") + shares.URL(sh.ShareID),
	})
}

// handleGetSharedDiagram looks up a share by ID.
func (s *Server) handleGetSharedDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.shares == nil {
		return mcp.NewToolResultError("sharing is not configured"), nil
	}
	id, err := request.RequireString("share_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: share_id"), nil
	}

	sh, err := s.shares.Get(ctx, id)
	if errors.Is(err, shares.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no shared diagram with id %q", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return jsonResult(sh)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
