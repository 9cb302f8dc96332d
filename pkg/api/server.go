package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loomhq/loom/pkg/apikey"
	"github.com/loomhq/loom/pkg/auth"
	"github.com/loomhq/loom/pkg/dispatcher"
	"github.com/loomhq/loom/pkg/gateway"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/metrics"
	"github.com/loomhq/loom/pkg/protocol"
	"github.com/loomhq/loom/pkg/schema"
	"github.com/loomhq/loom/pkg/session"
	"github.com/loomhq/loom/pkg/storage"
	"github.com/loomhq/loom/pkg/types"
)

const maxBodySize = 1 << 20

// Server is the bridge's HTTP surface: the RPC endpoints, the public
// manifests, the websocket gateway, key registration and health checks.
// Errors on well-formed RPC traffic are encoded inside response
// envelopes, never as HTTP status codes.
type Server struct {
	mux        *http.ServeMux
	dispatcher *dispatcher.Dispatcher
	chain      *auth.Chain
	catalog    *schema.Catalog
	keys       *apikey.Service
	store      storage.Store
	contexts   *session.ContextStore

	registrationSecret string
	version            string
}

// Config wires the server's collaborators.
type Config struct {
	Dispatcher         *dispatcher.Dispatcher
	Chain              *auth.Chain
	Catalog            *schema.Catalog
	Keys               *apikey.Service
	Store              storage.Store
	Contexts           *session.ContextStore
	Gateway            *gateway.Gateway
	RegistrationSecret string
	Version            string
}

// NewServer creates the HTTP server and registers all endpoints.
func NewServer(cfg Config) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:                mux,
		dispatcher:         cfg.Dispatcher,
		chain:              cfg.Chain,
		catalog:            cfg.Catalog,
		keys:               cfg.Keys,
		store:              cfg.Store,
		contexts:           cfg.Contexts,
		registrationSecret: cfg.RegistrationSecret,
		version:            cfg.Version,
	}

	mux.HandleFunc("/rpc", s.rpcHandler)
	mux.HandleFunc("/rpc/batch", s.batchHandler)
	mux.HandleFunc("/manifest/tools", s.toolManifestHandler)
	mux.HandleFunc("/manifest/openapi", s.openAPIHandler)
	mux.HandleFunc("/register", s.registerHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.Handle("/metrics", metrics.Handler())
	if cfg.Gateway != nil {
		mux.Handle("/ws", cfg.Gateway)
	}

	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:        addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger := log.WithComponent("api")
	logger.Info().Str("addr", addr).Msg("http api listening")
	return server.ListenAndServe()
}

// credentialsFrom extracts the caller's credentials from RPC request
// headers. API keys may arrive in X-API-Key or as a prefixed bearer.
func credentialsFrom(r *http.Request) auth.Credentials {
	creds := auth.Credentials{
		APIKey: r.Header.Get("X-API-Key"),
	}

	if header := r.Header.Get("Authorization"); header != "" {
		value := strings.TrimPrefix(header, "Bearer ")
		if value != header {
			if apikey.HasPrefix(value) {
				creds.APIKey = value
			} else {
				creds.BearerToken = value
			}
		}
	}
	return creds
}

// rpcHandler serves a single request envelope. Always HTTP 200 for a
// readable body; failures are error envelopes.
func (s *Server) rpcHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, protocol.NewErrorResponse(nil, protocol.ParseError("unreadable body")))
		return
	}

	req, err := protocol.DecodeRequest(body)
	if err != nil {
		writeJSON(w, protocol.NewErrorResponse(nil, protocol.ParseError(err.Error())))
		return
	}

	caller, err := s.chain.Authenticate(r.Context(), credentialsFrom(r))
	if err != nil {
		writeJSON(w, protocol.NewErrorResponse(req.ID, &protocol.Error{
			Code:    protocol.CodePermissionDenied,
			Message: "Authentication failed",
		}))
		return
	}

	writeJSON(w, s.dispatcher.Process(r.Context(), req, caller))
}

// batchHandler serves a non-empty array of request envelopes. A
// malformed batch is a client error before any dispatch happens.
func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, protocol.NewErrorResponse(nil, protocol.ParseError("unreadable body")))
		return
	}

	reqs, err := protocol.DecodeBatch(body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(protocol.NewErrorResponse(nil, protocol.InvalidRequest(err.Error())))
		return
	}

	caller, err := s.chain.Authenticate(r.Context(), credentialsFrom(r))
	if err != nil {
		writeJSON(w, protocol.NewErrorResponse(nil, &protocol.Error{
			Code:    protocol.CodePermissionDenied,
			Message: "Authentication failed",
		}))
		return
	}

	writeJSON(w, s.dispatcher.ProcessBatch(r.Context(), reqs, caller))
}

// toolManifestHandler is public: AI assistants fetch it to register the
// bridge's methods as callable tools.
func (s *Server) toolManifestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"tools": s.catalog.ToolManifest()})
}

// openAPIHandler is public documentation; no per-method routes exist.
func (s *Server) openAPIHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.catalog.OpenAPIDocument("Loom Bridge API", s.version))
}

// RegisterRequest is the body of the machine-client bootstrap endpoint.
type RegisterRequest struct {
	Secret      string `json:"secret"`
	UserID      string `json:"userId"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
}

// registerHandler creates an API key gated by the static registration
// secret instead of a user session. Intended for bootstrapping machine
// clients; disabled when no secret is configured.
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.registrationSecret == "" {
		http.Error(w, "Registration disabled", http.StatusForbidden)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if req.Secret != s.registrationSecret {
		http.Error(w, "Invalid registration secret", http.StatusForbidden)
		return
	}
	if req.UserID == "" || req.WorkspaceID == "" || req.Name == "" {
		http.Error(w, "userId, workspaceId and name are required", http.StatusBadRequest)
		return
	}

	plaintext, key, err := s.keys.Generate(req.UserID, req.WorkspaceID, req.Name)
	if err != nil {
		logger := log.WithComponent("api")
		logger.Error().Err(err).Msg("registration failed")
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	// Bootstrapped machine identities must pass the membership check on
	// key authentication.
	_ = s.store.PutMembership(&types.Membership{
		UserID:      req.UserID,
		WorkspaceID: req.WorkspaceID,
		AddedAt:     time.Now(),
	})

	writeJSON(w, map[string]any{
		"id":        key.ID,
		"name":      key.Name,
		"key":       plaintext,
		"createdAt": key.CreatedAt,
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// healthHandler is a simple liveness check.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
	})
}

// readyHandler checks that backing stores can serve traffic.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := map[string]string{"context_store": "ok"}
	status := "ready"
	code := http.StatusOK

	if s.contexts != nil && !s.contexts.Ready() {
		checks["context_store"] = "not ready"
		status = "not ready"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
