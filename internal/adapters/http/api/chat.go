package api

import (
	"context"
	"net/http"

	"github.com/okian/relief/internal/domain/triage"
	"github.com/okian/relief/internal/domain/types"
)

// Responder triages chat messages.
type Responder interface {
	Chat(ctx context.Context, message string) triage.Reply
}

// ChatHandler handles chat requests.
type ChatHandler struct {
	responder    Responder
	maxBodyBytes int64
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(r Responder, maxBodyBytes int64) *ChatHandler {
	return &ChatHandler{responder: r, maxBodyBytes: maxBodyBytes}
}

// HandleChat handles POST /api/emergency-chat. An empty message gets the
// routine greeting.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.emergency_chat"

	var req types.ChatRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.responder.Chat(r.Context(), req.Message))
}
