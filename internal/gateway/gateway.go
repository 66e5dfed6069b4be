// ABOUTME: HTTP gateway exposing the chat API
// ABOUTME: Wires auth middleware, the turn dedupe guard, and the orchestrator

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/dedupe"
	"github.com/helperhub/agent-gateway/internal/orchestrator"
	"github.com/helperhub/agent-gateway/internal/store"
)

// Defaults for the dedupe guard.
const (
	defaultDedupeTTL  = 30 * time.Second
	defaultDedupeSize = 10000
)

// Config contains configuration options for the Gateway.
type Config struct {
	Addr         string
	Orchestrator *orchestrator.Orchestrator
	Store        store.Store
	Verifier     auth.TokenVerifier
	Logger       *slog.Logger

	// DedupeTTL is the window within which a repeated delivery is dropped.
	DedupeTTL time.Duration
	// DedupeSize caps the dedupe guard's entry count.
	DedupeSize int
}

// Gateway is the HTTP server fronting the orchestrator.
type Gateway struct {
	addr   string
	orch   *orchestrator.Orchestrator
	store  store.Store
	guard  *dedupe.Guard
	logger *slog.Logger
	server *http.Server
}

// New creates a Gateway from the config. Orchestrator, Store, and Verifier
// are required.
func New(cfg Config) (*Gateway, error) {
	if cfg.Orchestrator == nil || cfg.Store == nil || cfg.Verifier == nil {
		return nil, fmt.Errorf("gateway requires orchestrator, store, and verifier")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.DedupeTTL
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	size := cfg.DedupeSize
	if size <= 0 {
		size = defaultDedupeSize
	}

	g := &Gateway{
		addr:   cfg.Addr,
		orch:   cfg.Orchestrator,
		store:  cfg.Store,
		guard:  dedupe.NewGuard(ttl, size),
		logger: logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", g.handleHealth)

	authed := auth.HTTPAuthMiddleware(cfg.Verifier)
	mux.Handle("POST /ai/chat", authed(http.HandlerFunc(g.handleChat)))
	mux.Handle("GET /ai/threads/{id}/messages", authed(http.HandlerFunc(g.handleThreadMessages)))
	mux.Handle("GET /ai/threads", authed(http.HandlerFunc(g.handleListThreads)))

	g.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g, nil
}

// Handler returns the gateway's HTTP handler, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (g *Gateway) Start() error {
	g.logger.Info("gateway listening", "addr", g.addr)
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the dedupe guard.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.guard.Close()
	return g.server.Shutdown(ctx)
}

// handleHealth reports liveness. No auth, no dependencies touched.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
