package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"runpal/internal/viewport"
)

type HealthHandler struct {
	viewports *viewport.Store
}

func NewHealthHandler(viewports *viewport.Store) *HealthHandler {
	return &HealthHandler{viewports: viewports}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)
}

func (h *HealthHandler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"viewports": h.viewports.Len(),
	})
}
