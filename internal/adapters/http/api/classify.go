package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/relief/internal/domain/classify"
	"github.com/okian/relief/internal/domain/types"
)

// Classifier analyses free-text emergency reports.
type Classifier interface {
	Classify(ctx context.Context, in classify.Input) classify.Result
}

// ClassifyHandler handles classification requests.
type ClassifyHandler struct {
	classifier   Classifier
	maxBodyBytes int64
}

// NewClassifyHandler creates a new classification handler.
func NewClassifyHandler(c Classifier, maxBodyBytes int64) *ClassifyHandler {
	return &ClassifyHandler{classifier: c, maxBodyBytes: maxBodyBytes}
}

// HandleClassify handles POST /api/classify-emergency.
func (h *ClassifyHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify_emergency"

	var req types.ClassifyRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	if strings.TrimSpace(req.Description) == "" && strings.TrimSpace(req.Type) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, errors.New("description or type is required")))
		return
	}
	writeJSON(w, http.StatusOK, h.classifier.Classify(r.Context(), req.ToInput()))
}
