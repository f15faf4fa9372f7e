package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/figbridge/figbridge/internal/logx"
	"github.com/figbridge/figbridge/internal/mcpserver"
	"github.com/figbridge/figbridge/internal/metrics"
	"github.com/figbridge/figbridge/internal/tools"
)

// handleMessages terminates the JSON-RPC transport over plain HTTP POST.
// The response is always 200 with a JSON-RPC envelope; protocol-level
// failures live inside the envelope, not in the HTTP status.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusOK, mcpserver.ParseErrorResponse("read request body: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, s.dispatcher.Handle(r.Context(), body))
}

// handleSSE keeps a long-lived event stream open: one connection event up
// front, then a ping every interval until the client goes away.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	metrics.StreamClientConnected("sse")
	defer metrics.StreamClientDisconnected("sse")

	if err := writeEvent(w, map[string]any{"type": "connection", "status": "connected"}); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := writeEvent(w, map[string]any{"type": "ping", "timestamp": time.Now().Unix()}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

// handleWS serves JSON-RPC over a WebSocket: each text frame in is one
// request, each frame out is its response envelope.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.cfg.AllowedOrigins})
	if err != nil {
		return
	}
	defer func() {
		_ = c.Close(websocket.StatusInternalError, "server error")
	}()
	metrics.StreamClientConnected("ws")
	defer metrics.StreamClientDisconnected("ws")

	ctx := r.Context()
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		resp := s.dispatcher.Handle(ctx, data)
		b, err := json.Marshal(resp)
		if err != nil {
			logx.Log.Error().Err(err).Msg("encode ws response")
			return
		}
		if err := c.Write(ctx, websocket.MessageText, b); err != nil {
			return
		}
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHealth reports gateway identity plus process stats for dashboards.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	var rss uint64
	var cpu float64
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil && mi != nil {
			rss = mi.RSS
		}
		if pct, err := proc.CPUPercent(); err == nil {
			cpu = pct
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"version":         s.version,
		"protocolVersion": mcpserver.ProtocolVersion,
		"toolCount":       len(tools.Catalog()),
		"toolPrefix":      tools.Prefix,
		"rssBytes":        rss,
		"cpuPercent":      cpu,
		"uptimeSeconds":   int64(time.Since(s.started).Seconds()),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "figbridge",
		"version":  s.version,
		"protocol": "MCP " + mcpserver.ProtocolVersion,
		"endpoints": map[string]string{
			"messages": "POST /figma/messages",
			"sse":      "GET /figma/sse",
			"ws":       "GET /figma/ws",
			"health":   "GET /figma/mcp/health",
			"saveCode": "POST /save-code",
			"metrics":  "GET /metrics",
		},
	})
}

type saveCodeRequest struct {
	DesignName string `json:"design_name"`
	HTML       string `json:"html"`
	CSS        string `json:"css"`
	JS         string `json:"js"`
}

func (s *Server) handleSaveCode(w http.ResponseWriter, r *http.Request) {
	var req saveCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
		return
	}
	folder, files, err := s.store.Save(req.DesignName, req.HTML, req.CSS, req.JS)
	if err != nil {
		logx.Log.Error().Err(err).Str("design", req.DesignName).Msg("save design code")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "folder": folder, "files": files})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("write response")
	}
}
