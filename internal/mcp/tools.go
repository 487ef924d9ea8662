package mcp

import "github.com/mark3labs/mcp-go/mcp"

// renderDiagramTool defines the render_diagram MCP tool.
var renderDiagramTool = mcp.NewTool("render_diagram",
	mcp.WithDescription("Render Mermaid or PlantUML source to sanitized SVG markup."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Diagram language"),
		mcp.Enum("mermaid", "plantuml"),
	),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Diagram source text"),
	),
)

// encodeDiagramTool defines the encode_diagram MCP tool.
var encodeDiagramTool = mcp.NewTool("encode_diagram",
	mcp.WithDescription("Encode PlantUML source into a PlantUML server token and return the SVG and PNG URLs for it."),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("PlantUML source text"),
	),
)

// decodeDiagramTool defines the decode_diagram MCP tool.
var decodeDiagramTool = mcp.NewTool("decode_diagram",
	mcp.WithDescription("Decode a PlantUML server token back into diagram source."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Encoded PlantUML token, as found in PlantUML server URLs"),
	),
)

// shareDiagramTool defines the share_diagram MCP tool.
var shareDiagramTool = mcp.NewTool("share_diagram",
	mcp.WithDescription("Store a diagram and return a link that opens it read-only in the editor."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Diagram language"),
		mcp.Enum("mermaid", "plantuml"),
	),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Diagram source text"),
	),
)

// getSharedDiagramTool defines the get_shared_diagram MCP tool.
var getSharedDiagramTool = mcp.NewTool("get_shared_diagram",
	mcp.WithDescription("Fetch the kind and source of a shared diagram by its share ID."),
	mcp.WithString("share_id",
		mcp.Required(),
		mcp.Description("Share ID from a /s/{id} link"),
	),
)
