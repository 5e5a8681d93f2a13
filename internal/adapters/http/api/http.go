// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/relief/internal/domain/classify"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/triage"
	"github.com/okian/relief/internal/domain/types"
	"github.com/okian/relief/pkg/logger"
	"github.com/okian/relief/pkg/metrics"
)

// Route default profiles.
const (
	QuickProfile    = "quick"
	StandardProfile = "standard"

	defaultMaxBodyBytes = 8 << 20
	corsMaxAgeSeconds   = 300
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Match(ctx context.Context, profile string, req matching.Request, o matching.Overrides) (types.MatchResponse, error)
	Classify(ctx context.Context, in classify.Input) classify.Result
	Chat(ctx context.Context, message string) triage.Reply
	Profiles() []string
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	classifyHandler *ClassifyHandler
	chatHandler     *ChatHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps, deps.Profiles)
	s.classifyHandler = NewClassifyHandler(deps, s.maxBodyBytes)
	s.chatHandler = NewChatHandler(deps, s.maxBodyBytes)
	return s
}

// Router builds a chi router with the middleware stack and every route.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(jsonRecoverer(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         corsMaxAgeSeconds,
	}))
	r.Use(requestLogger(s.logger))
	r.Use(MetricsMiddleware)
	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/", s.healthHandler.HandleIndex)
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/health", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Post("/api/match-volunteers", NewMatchHandler(s.deps, QuickProfile, s.maxBodyBytes).HandleMatch)
	r.Post("/api/classify-emergency", s.classifyHandler.HandleClassify)
	r.Post("/api/emergency-chat", s.chatHandler.HandleChat)

	r.Route("/ai", func(r chi.Router) {
		r.Post("/match-volunteers", NewMatchHandler(s.deps, StandardProfile, s.maxBodyBytes).HandleMatch)
		r.Post("/classify-emergency", s.classifyHandler.HandleClassify)
		r.Post("/emergency-chat", s.chatHandler.HandleChat)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads one JSON document from a size-limited body.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrPayloadTooLarge
		}
		return err
	}
	return nil
}

// writeDecodeError maps a decodeJSON failure to a response.
func writeDecodeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrPayloadTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", wrapKind(op, ErrPayloadTooLarge, nil))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
}
