package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/figbridge/figbridge/internal/logx"
	"github.com/figbridge/figbridge/internal/metrics"
	"github.com/figbridge/figbridge/internal/tools"
)

const instructions = "Tools for reading Figma documents: fetch node trees, simplified design context, rendered screenshots and variable definitions. Every tool needs a Figma API token in apiKey; node-scoped tools also need fileKey and nodeId."

// ToolExecutor runs one tool call. Tool-level failures come back inside the
// result; a non-nil error means the gateway itself failed.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

// Dispatcher terminates the JSON-RPC method surface. It holds no per-request
// state, so one instance serves all requests concurrently.
type Dispatcher struct {
	version string
	exec    ToolExecutor
}

// NewDispatcher builds a Dispatcher answering as the given server version.
func NewDispatcher(version string, exec ToolExecutor) *Dispatcher {
	return &Dispatcher{version: version, exec: exec}
}

// Handle parses one raw JSON-RPC message and dispatches it. Unparseable
// input yields a parse error envelope with a null id.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.RecordRPCRequest("parse", false)
		return ParseErrorResponse(err.Error())
	}
	return d.Dispatch(ctx, req)
}

// Dispatch answers one parsed request. The response id echoes the request id
// verbatim, null included. Panics anywhere below are reported as internal
// errors rather than taking the process down.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logx.Log.Error().Str("method", req.Method).Interface("panic", r).Msg("rpc handler panicked")
			resp = errorResponse(req.ID, CodeInternalError, "Internal error", fmt.Sprint(r))
		}
		metrics.RecordRPCRequest(req.Method, resp.Error == nil)
		metrics.ObserveRPCDuration(req.Method, time.Since(start))
	}()

	switch req.Method {
	case "initialize":
		return successResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    ServerCapabilities{Tools: ToolsCapability{}},
			ServerInfo:      ServerInfo{Name: "figbridge", Version: d.version},
			Instructions:    instructions,
		})
	case "tools/list":
		return successResponse(req.ID, ListToolsResult{Tools: tools.Catalog()})
	case "tools/call":
		return d.call(ctx, req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found", req.Method)
	}
}

func (d *Dispatcher) call(ctx context.Context, req Request) Response {
	var params CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
	}
	if _, ok := tools.Lookup(params.Name); !ok {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", fmt.Sprintf("unknown tool: %s", params.Name))
	}
	result, err := d.exec.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		logx.Log.Error().Err(err).Str("tool", params.Name).Msg("tool execution failed")
		return errorResponse(req.ID, CodeInternalError, "Internal error", err.Error())
	}
	return successResponse(req.ID, result)
}
