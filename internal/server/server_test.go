package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/figbridge/figbridge/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.SetDefaults()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func postJSON(t *testing.T, url, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestMessagesToolsList(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(t), "test"))
	defer srv.Close()

	out := postJSON(t, srv.URL+"/figma/messages", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	result, _ := out["result"].(map[string]any)
	list, ok := result["tools"].([]any)
	if !ok || len(list) == 0 {
		t.Fatalf("no tools listed: %v", out)
	}
}

func TestMessagesUnknownTool(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(t), "test"))
	defer srv.Close()

	out := postJSON(t, srv.URL+"/figma/messages", `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"nope"}}`)
	errObj, _ := out["error"].(map[string]any)
	if errObj["code"] != float64(-32602) {
		t.Fatalf("code = %v", errObj["code"])
	}
	if out["id"] != float64(9) {
		t.Fatalf("id = %v", out["id"])
	}
}

func TestMessagesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(t), "test"))
	defer srv.Close()

	out := postJSON(t, srv.URL+"/figma/messages", `{broken`)
	errObj, _ := out["error"].(map[string]any)
	if errObj["code"] != float64(-32700) {
		t.Fatalf("code = %v", errObj["code"])
	}
}

func TestMessagesEndToEndMetadata(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Figma-Token") != "tok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Site","nodes":{"1:2":{"document":{"id":"1:2","name":"Hero","type":"FRAME"}}}}`))
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.FigmaBaseURL = upstream.URL
	srv := httptest.NewServer(New(cfg, "test"))
	defer srv.Close()

	out := postJSON(t, srv.URL+"/figma/messages",
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"figma_get_metadata","arguments":{"apiKey":"tok","fileKey":"F","nodeId":"1:2"}}}`)
	result, _ := out["result"].(map[string]any)
	content, _ := result["content"].([]any)
	if len(content) == 0 {
		t.Fatalf("no content: %v", out)
	}
	text, _ := content[0].(map[string]any)["text"].(string)
	if !strings.Contains(text, "Site") || !strings.Contains(text, "Hero") {
		t.Fatalf("metadata text = %q", text)
	}
}

func TestSSEEmitsConnectionThenPing(t *testing.T) {
	s := newServer(testConfig(t), "test")
	s.pingInterval = 20 * time.Millisecond
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/figma/sse", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %s", ct)
	}

	reader := bufio.NewReader(resp.Body)
	events := []string{}
	for len(events) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			events = append(events, strings.TrimSpace(strings.TrimPrefix(line, "data: ")))
		}
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(events[0]), &first); err != nil {
		t.Fatalf("decode first event: %v", err)
	}
	if first["type"] != "connection" || first["status"] != "connected" {
		t.Fatalf("first event = %v", first)
	}
	var second map[string]any
	if err := json.Unmarshal([]byte(events[1]), &second); err != nil {
		t.Fatalf("decode second event: %v", err)
	}
	if second["type"] != "ping" {
		t.Fatalf("second event = %v", second)
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(t), "test"))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/figma/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = c.Close(websocket.StatusNormalClosure, "") }()

	if err := c.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","id":3,"method":"initialize"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := c.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["id"] != float64(3) || out["result"] == nil {
		t.Fatalf("response = %s", data)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(t), "1.0.0"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	var basic map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&basic); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	_ = resp.Body.Close()
	if basic["status"] != "ok" {
		t.Fatalf("healthz = %v", basic)
	}

	resp, err = http.Get(srv.URL + "/figma/mcp/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	var detail map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	_ = resp.Body.Close()
	if detail["version"] != "1.0.0" {
		t.Fatalf("version = %v", detail["version"])
	}
	if detail["toolCount"] == float64(0) {
		t.Fatal("toolCount should not be zero")
	}
}

func TestIndex(t *testing.T) {
	srv := httptest.NewServer(New(testConfig(t), "test"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["name"] != "figbridge" {
		t.Fatalf("index = %v", out)
	}
	endpoints, _ := out["endpoints"].(map[string]any)
	if endpoints["messages"] == nil {
		t.Fatalf("endpoints = %v", endpoints)
	}
}

func TestSaveCode(t *testing.T) {
	cfg := testConfig(t)
	srv := httptest.NewServer(New(cfg, "test"))
	defer srv.Close()

	body := `{"design_name":"My Page","html":"<html></html>","css":"body{}","js":""}`
	resp, err := http.Post(srv.URL+"/save-code", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["success"] != true {
		t.Fatalf("save failed: %v", out)
	}
	if out["folder"] != filepath.Join(cfg.OutputDir, "my-page") {
		t.Fatalf("folder = %v", out["folder"])
	}
	files, _ := out["files"].([]any)
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
}
