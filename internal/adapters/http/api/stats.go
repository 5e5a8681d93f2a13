package api

import (
	"net/http"
	"time"
)

// StatsProvider reports service counters.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

type statsResponse struct {
	Service       map[string]interface{} `json:"service"`
	Profiles      []string               `json:"profiles"`
	UptimeSeconds int64                  `json:"uptimeSeconds"`
}

// StatsHandler serves the service counters together with the profile list
// and the time since the handler was built.
type StatsHandler struct {
	stats    StatsProvider
	profiles func() []string
	started  time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats StatsProvider, profiles func() []string) *StatsHandler {
	return &StatsHandler{stats: stats, profiles: profiles, started: time.Now()}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		Service:       h.stats.GetStats(),
		Profiles:      []string{},
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if h.profiles != nil {
		if p := h.profiles(); p != nil {
			resp.Profiles = p
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
