package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"runpal/internal/coach"
)

const maxMessageLen = 2000

type CoachHandler struct {
	coach *coach.Resilient
	log   *zap.Logger
}

func NewCoachHandler(c *coach.Resilient, log *zap.Logger) *CoachHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CoachHandler{coach: c, log: log}
}

func (h *CoachHandler) RegisterRoutes(r chi.Router) {
	r.Post("/coach", h.reply)
}

type coachRequest struct {
	Message string `json:"message"`
}

type coachResponse struct {
	Reply string `json:"reply"`
}

func (h *CoachHandler) reply(w http.ResponseWriter, r *http.Request) {
	var req coachRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid coach request", err)
		return
	}
	message := truncate(strings.TrimSpace(req.Message), maxMessageLen)
	if message == "" {
		respondError(w, h.log, http.StatusBadRequest, "message required", nil)
		return
	}
	writeJSON(w, coachResponse{Reply: h.coach.Reply(r.Context(), message)})
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
