package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/figbridge/figbridge/internal/config"
	"github.com/figbridge/figbridge/internal/figma"
	"github.com/figbridge/figbridge/internal/logx"
	"github.com/figbridge/figbridge/internal/metrics"
	"github.com/figbridge/figbridge/internal/simplify"
)

// FigmaAPI is the slice of the Figma client the executor drives. Tests
// substitute a fake to observe or suppress upstream traffic.
type FigmaAPI interface {
	FileNodes(ctx context.Context, fileKey string, nodeIDs []string) (*figma.NodesResponse, error)
	Images(ctx context.Context, fileKey string, nodeIDs []string) (*figma.ImagesResponse, error)
	LocalVariables(ctx context.Context, fileKey string) (*figma.VariablesResponse, error)
	Me(ctx context.Context) (*figma.User, error)
}

// Executor resolves tool calls into upstream requests and result payloads.
// It holds no per-call state; a fresh Figma client is built from the
// caller-supplied token on every invocation.
type Executor struct {
	maxDepth  int
	newClient func(token string) FigmaAPI
}

// NewExecutor builds an Executor wired to the real Figma API.
func NewExecutor(cfg config.Config) *Executor {
	return &Executor{
		maxDepth: cfg.MaxDepth,
		newClient: func(token string) FigmaAPI {
			return figma.New(figma.Config{
				BaseURL:        cfg.FigmaBaseURL,
				Token:          token,
				Timeout:        cfg.RequestTimeout,
				MaxAttempts:    cfg.MaxAttempts,
				BackoffCeiling: cfg.BackoffCeiling,
			})
		},
	}
}

const codeConnectUnavailable = "Code Connect mappings are not available via the public Figma API."

const designSystemRules = `Derive design system rules from this file:

1. Call figma_get_design_context for a representative top-level frame.
2. Collect backgroundColor, fontFamily, fontSize, gap and padding values from the styles of each node.
3. Promote values that repeat across nodes to named tokens (color palette, type scale, spacing scale).
4. Express recurring components as reusable rules: tag, layout direction, gap, padding and color tokens.
5. Keep generated code consistent with the client languages and frameworks in use.`

// Execute runs one tool call. Validation failures and classified upstream
// failures come back as tool-level error results; a non-nil error means the
// gateway itself failed and the dispatcher should answer with an internal
// error.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	tool := strings.TrimPrefix(name, Prefix)
	invocation := uuid.NewString()
	logx.Log.Info().Str("invocation", invocation).Str("tool", tool).Msg("tool call")

	apiKey := stringArg(args, "apiKey")
	if apiKey == "" {
		metrics.RecordToolCall(tool, "validation_error")
		return mcp.NewToolResultError("apiKey is required"), nil
	}
	client := e.newClient(apiKey)

	if tool == "whoami" {
		user, err := client.Me(ctx)
		if err != nil {
			return e.upstreamError(tool, err), nil
		}
		text, err := indentJSON(user.Raw)
		if err != nil {
			return nil, err
		}
		metrics.RecordToolCall(tool, "success")
		return mcp.NewToolResultText(text), nil
	}

	fileKey := stringArg(args, "fileKey")
	nodeID := stringArg(args, "nodeId")
	if fileKey == "" || nodeID == "" {
		metrics.RecordToolCall(tool, "validation_error")
		return mcp.NewToolResultError("fileKey and nodeId are required"), nil
	}

	switch tool {
	case "get_screenshot":
		return e.screenshot(ctx, client, tool, fileKey, nodeID)
	case "get_design_context":
		return e.designContext(ctx, client, tool, fileKey, nodeID)
	case "get_metadata", "get_figjam":
		return e.nodeDump(ctx, client, tool, fileKey, nodeID)
	case "get_variable_defs":
		return e.variableDefs(ctx, client, tool, fileKey)
	case "get_code_connect_map":
		metrics.RecordToolCall(tool, "success")
		return mcp.NewToolResultText(codeConnectUnavailable), nil
	case "create_design_system_rules":
		metrics.RecordToolCall(tool, "success")
		return mcp.NewToolResultText(designSystemRules), nil
	default:
		metrics.RecordToolCall(tool, "unknown_tool")
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

func (e *Executor) screenshot(ctx context.Context, client FigmaAPI, tool, fileKey, nodeID string) (*mcp.CallToolResult, error) {
	images, err := client.Images(ctx, fileKey, []string{nodeID})
	if err != nil {
		return e.upstreamError(tool, err), nil
	}
	if images.Images[nodeID] == "" {
		metrics.RecordToolCall(tool, "not_found")
		return mcp.NewToolResultError(fmt.Sprintf("no image available for node %s (not found or not renderable)", nodeID)), nil
	}
	text, err := marshalIndent(images.Images)
	if err != nil {
		return nil, err
	}
	metrics.RecordToolCall(tool, "success")
	return mcp.NewToolResultText(text), nil
}

func (e *Executor) designContext(ctx context.Context, client FigmaAPI, tool, fileKey, nodeID string) (*mcp.CallToolResult, error) {
	resp, err := client.FileNodes(ctx, fileKey, []string{nodeID})
	if err != nil {
		return e.upstreamError(tool, err), nil
	}
	entry, ok := resp.Nodes[nodeID]
	if !ok {
		metrics.RecordToolCall(tool, "not_found")
		return mcp.NewToolResultError(fmt.Sprintf("node %s not found in file %s", nodeID, fileKey)), nil
	}

	// Image rendering is best effort; a failure only means no image link.
	var imageURLs map[string]string
	if images, imgErr := client.Images(ctx, fileKey, []string{nodeID}); imgErr == nil {
		imageURLs = images.Images
	} else {
		logx.Log.Debug().Err(imgErr).Str("node", nodeID).Msg("image rendering unavailable")
	}

	simplified := simplify.Simplify(&entry.Document, simplify.Options{
		IncludeImages: true,
		Images:        imageURLs,
		MaxDepth:      e.maxDepth,
	})
	text, err := marshalIndent(simplified)
	if err != nil {
		return nil, err
	}
	metrics.RecordToolCall(tool, "success")
	return mcp.NewToolResultText("Design Context:\n" + text), nil
}

func (e *Executor) nodeDump(ctx context.Context, client FigmaAPI, tool, fileKey, nodeID string) (*mcp.CallToolResult, error) {
	resp, err := client.FileNodes(ctx, fileKey, []string{nodeID})
	if err != nil {
		return e.upstreamError(tool, err), nil
	}
	raw, err := indentJSON(resp.Raw)
	if err != nil {
		return nil, err
	}
	summary := fmt.Sprintf("File: %s\nNode: %s", resp.Name, nodeID)
	if entry, ok := resp.Nodes[nodeID]; ok {
		summary = fmt.Sprintf("File: %s\nNode: %s (%s %q)\nChildren: %d", resp.Name, nodeID, entry.Document.Type, entry.Document.Name, len(entry.Document.Children))
	}
	metrics.RecordToolCall(tool, "success")
	return mcp.NewToolResultText(summary + "\n\n" + raw), nil
}

func (e *Executor) variableDefs(ctx context.Context, client FigmaAPI, tool, fileKey string) (*mcp.CallToolResult, error) {
	vars, err := client.LocalVariables(ctx, fileKey)
	if err != nil {
		return e.upstreamError(tool, err), nil
	}
	if vars.Meta.Empty() {
		metrics.RecordToolCall(tool, "success")
		return mcp.NewToolResultText("No variables found in this file."), nil
	}
	text, err := indentJSON(vars.Raw)
	if err != nil {
		return nil, err
	}
	metrics.RecordToolCall(tool, "success")
	return mcp.NewToolResultText(text), nil
}

// upstreamError translates a classified client failure into a display-ready
// tool error.
func (e *Executor) upstreamError(tool string, err error) *mcp.CallToolResult {
	var outcome, msg string
	switch {
	case figma.IsAuthDenied(err):
		outcome, msg = "auth_denied", "Figma rejected the access token; check the apiKey and its permissions"
	case figma.IsNotFound(err):
		outcome, msg = "not_found", "file or node not found; check fileKey and nodeId"
	case figma.IsRateLimited(err):
		outcome, msg = "rate_limited", "Figma rate limit persisted through every retry; try again later"
	case figma.IsTimeout(err):
		outcome, msg = "timeout", "Figma API did not respond in time"
	default:
		outcome, msg = "upstream_error", "Figma API request failed"
	}
	metrics.RecordToolCall(tool, outcome)
	logx.Log.Warn().Err(err).Str("tool", tool).Str("outcome", outcome).Msg("tool call failed")
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func indentJSON(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("indent payload: %w", err)
	}
	return buf.String(), nil
}

func marshalIndent(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(b), nil
}
