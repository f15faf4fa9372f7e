package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Prefix namespaces every tool so catalogs from several MCP servers can be
// merged without collisions.
const Prefix = "figma_"

var catalog = []mcp.Tool{
	mcp.NewTool(Prefix+"get_screenshot",
		mcp.WithDescription("Render a PNG screenshot of a node in a Figma file and return its image URL."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the Figma file")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node in the Figma document")),
		mcp.WithString("clientLanguages", mcp.Description("Programming languages used by the client")),
	),
	mcp.NewTool(Prefix+"get_design_context",
		mcp.WithDescription("Fetch a node and return a simplified, style-annotated tree suitable for UI code generation."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the Figma file")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node in the Figma document")),
		mcp.WithString("clientLanguages", mcp.Description("Programming languages used by the client")),
		mcp.WithString("clientFrameworks", mcp.Description("Frameworks used by the client")),
		mcp.WithBoolean("forceCode", mcp.Description("Request full code output regardless of node size")),
	),
	mcp.NewTool(Prefix+"get_metadata",
		mcp.WithDescription("Fetch a node's metadata and raw document payload."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the Figma file")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node in the Figma document")),
		mcp.WithString("clientLanguages", mcp.Description("Programming languages used by the client")),
	),
	mcp.NewTool(Prefix+"get_variable_defs",
		mcp.WithDescription("Fetch the local variable and variable collection definitions of a Figma file."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the Figma file")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node in the Figma document")),
		mcp.WithString("clientLanguages", mcp.Description("Programming languages used by the client")),
	),
	mcp.NewTool(Prefix+"get_figjam",
		mcp.WithDescription("Fetch node data from a FigJam board."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the FigJam board")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node on the board")),
		mcp.WithString("clientLanguages", mcp.Description("Programming languages used by the client")),
		mcp.WithBoolean("includeImagesOfNodes", mcp.Description("Include rendered images of board nodes")),
	),
	mcp.NewTool(Prefix+"get_code_connect_map",
		mcp.WithDescription("Map Figma components to code components via Code Connect."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the Figma file")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node in the Figma document")),
		mcp.WithString("codeConnectLabel", mcp.Description("Label of the Code Connect mapping to use")),
	),
	mcp.NewTool(Prefix+"create_design_system_rules",
		mcp.WithDescription("Produce guidance for deriving design system rules from a node's design context."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
		mcp.WithString("fileKey", mcp.Required(), mcp.Description("Key of the Figma file")),
		mcp.WithString("nodeId", mcp.Required(), mcp.Description("ID of the node in the Figma document")),
		mcp.WithString("clientLanguages", mcp.Description("Programming languages used by the client")),
		mcp.WithString("clientFrameworks", mcp.Description("Frameworks used by the client")),
	),
	mcp.NewTool(Prefix+"whoami",
		mcp.WithDescription("Look up the identity behind the supplied access token. Useful for diagnosing credential problems."),
		mcp.WithString("apiKey", mcp.Required(), mcp.Description("Figma API access token")),
	),
}

// Catalog returns the full tool list in registration order. The slice is
// shared and must not be mutated.
func Catalog() []mcp.Tool {
	return catalog
}

// Lookup finds a tool definition by its full prefixed name.
func Lookup(name string) (mcp.Tool, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return mcp.Tool{}, false
}
