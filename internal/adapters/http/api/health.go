package api

import (
	"net/http"
	"time"

	"github.com/okian/relief/internal/domain/types"
)

// ProfileLister reports the configured scoring profiles.
type ProfileLister interface {
	Profiles() []string
}

// HealthHandler handles health check and index requests.
type HealthHandler struct {
	profiles ProfileLister
	now      func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(p ProfileLister) *HealthHandler {
	return &HealthHandler{profiles: p, now: time.Now}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Profiles:  h.profiles.Profiles(),
	})
}

type indexResponse struct {
	Service   string   `json:"service"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
	Docs      string   `json:"docs"`
}

// HandleIndex handles GET / with a short description of the service.
func (h *HealthHandler) HandleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Service: "relief volunteer matching",
		Status:  "online",
		Endpoints: []string{
			"POST /api/match-volunteers",
			"POST /ai/match-volunteers",
			"POST /api/classify-emergency",
			"POST /api/emergency-chat",
			"GET /healthz",
			"GET /stats",
			"GET /metrics",
		},
		Docs: "/api-docs",
	})
}
