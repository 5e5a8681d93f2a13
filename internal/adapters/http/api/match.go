package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/relief/internal/app"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/types"
)

// Matcher ranks volunteers for one request.
type Matcher interface {
	Match(ctx context.Context, profile string, req matching.Request, o matching.Overrides) (types.MatchResponse, error)
}

// MatchHandler handles the match endpoints. The route decides which profile
// applies when the body names none.
type MatchHandler struct {
	matcher        Matcher
	defaultProfile string
	maxBodyBytes   int64
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(m Matcher, defaultProfile string, maxBodyBytes int64) *MatchHandler {
	return &MatchHandler{matcher: m, defaultProfile: defaultProfile, maxBodyBytes: maxBodyBytes}
}

// HandleMatch handles POST /api/match-volunteers and /ai/match-volunteers.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_volunteers"

	var req types.MatchRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	if _, ok := req.EmergencyPayload(); !ok {
		writeError(w, http.StatusBadRequest, "invalid_emergency",
			wrapKind(op, ErrBadRequest, errors.New("missing emergency")))
		return
	}

	profile := req.Profile
	if profile == "" {
		profile = h.defaultProfile
	}
	resp, err := h.matcher.Match(r.Context(), profile, req.ToMatching(), req.Overrides())
	if err != nil {
		status, code := matchErrorStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func matchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, matching.ErrInvalidEmergency):
		return http.StatusBadRequest, "invalid_emergency"
	case errors.Is(err, matching.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_options"
	case errors.Is(err, service.ErrUnknownProfile):
		return http.StatusBadRequest, "unknown_profile"
	case errors.Is(err, service.ErrTooManyVolunteers):
		return http.StatusRequestEntityTooLarge, "too_many_volunteers"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
