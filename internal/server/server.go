package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/figbridge/figbridge/internal/artifacts"
	"github.com/figbridge/figbridge/internal/config"
	"github.com/figbridge/figbridge/internal/mcpserver"
	"github.com/figbridge/figbridge/internal/metrics"
	"github.com/figbridge/figbridge/internal/tools"
)

// Server owns the HTTP surface of the gateway: the JSON-RPC message
// endpoint, the SSE and WebSocket transports, health and index pages, and
// the save-code artifact endpoint.
type Server struct {
	cfg          config.Config
	version      string
	dispatcher   *mcpserver.Dispatcher
	store        *artifacts.Store
	started      time.Time
	pingInterval time.Duration
}

// New constructs the HTTP handler for the gateway.
func New(cfg config.Config, version string) http.Handler {
	return newServer(cfg, version).routes()
}

func newServer(cfg config.Config, version string) *Server {
	return &Server{
		cfg:          cfg,
		version:      version,
		dispatcher:   mcpserver.NewDispatcher(version, tools.NewExecutor(cfg)),
		store:        artifacts.NewStore(cfg.OutputDir),
		started:      time.Now(),
		pingInterval: 30 * time.Second,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range MiddlewareChain() {
		r.Use(m)
	}

	preg := prometheus.NewRegistry()
	metrics.Register(preg)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Route("/figma", func(fr chi.Router) {
		fr.Post("/messages", s.handleMessages)
		fr.Get("/sse", s.handleSSE)
		fr.Get("/ws", s.handleWS)
		fr.Get("/mcp/health", s.handleHealth)
	})
	r.Post("/save-code", s.handleSaveCode)
	r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))

	return r
}
