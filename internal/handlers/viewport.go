package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"runpal/internal/viewport"
)

const maxEventBody = 4 << 10

type ViewportHandler struct {
	store *viewport.Store
	log   *zap.Logger
}

func NewViewportHandler(store *viewport.Store, log *zap.Logger) *ViewportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ViewportHandler{store: store, log: log}
}

func (h *ViewportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/viewports/{vid}", func(r chi.Router) {
		r.Get("/", h.state)
		r.Delete("/", h.close)
		r.Get("/stream", h.stream)
		r.Post("/pointerdown", h.pointerDown)
		r.Post("/zoom-in", h.zoomIn)
		r.Post("/zoom-out", h.zoomOut)
		r.Post("/reset", h.reset)
		r.Post("/bind", h.bind)
	})
	r.Post("/pointer/{event}", h.pointer)
}

type pointerRequest struct {
	PointerID int64   `json:"pointer_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type bindRequest struct {
	Identifier string `json:"identifier"`
}

func (h *ViewportHandler) lookup(w http.ResponseWriter, r *http.Request) (*viewport.Viewport, bool) {
	v, ok := h.store.Get(chi.URLParam(r, "vid"))
	if !ok {
		respondError(w, h.log, http.StatusNotFound, "viewport not found", nil)
		return nil, false
	}
	return v, true
}

func (h *ViewportHandler) state(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, v.Payload())
}

func (h *ViewportHandler) close(w http.ResponseWriter, r *http.Request) {
	if !h.store.Close(chi.URLParam(r, "vid")) {
		respondError(w, h.log, http.StatusNotFound, "viewport not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewportHandler) pointerDown(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	req, err := decodePointer(w, r)
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid pointer event", err)
		return
	}
	key := pointerKey(clientID(w, r), req.PointerID)
	if h.store.Dispatcher().Down(key, v, viewport.Vec{X: req.X, Y: req.Y}) {
		h.store.PublishState(v)
	}
	writeJSON(w, v.Payload())
}

// pointer routes move/up/leave/cancel to whichever viewport captured the
// pointer. Nothing captured means 204.
func (h *ViewportHandler) pointer(w http.ResponseWriter, r *http.Request) {
	req, err := decodePointer(w, r)
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid pointer event", err)
		return
	}
	key := pointerKey(clientID(w, r), req.PointerID)
	p := viewport.Vec{X: req.X, Y: req.Y}
	d := h.store.Dispatcher()

	var (
		owner   *viewport.Viewport
		changed bool
	)
	switch chi.URLParam(r, "event") {
	case "move":
		owner, changed = d.Move(key, p)
	case "up":
		owner, changed = d.Up(key, p)
	case "leave", "cancel":
		owner, changed = d.Leave(key, p)
	default:
		respondError(w, h.log, http.StatusNotFound, "unknown pointer event", nil)
		return
	}
	if owner == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if changed {
		h.store.PublishState(owner)
	}
	writeJSON(w, owner.Payload())
}

func (h *ViewportHandler) zoomIn(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*viewport.Viewport).ZoomIn)
}

func (h *ViewportHandler) zoomOut(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*viewport.Viewport).ZoomOut)
}

func (h *ViewportHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(v *viewport.Viewport) bool {
		v.Reset()
		return true
	})
}

func (h *ViewportHandler) apply(w http.ResponseWriter, r *http.Request, op func(*viewport.Viewport) bool) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if op(v) {
		h.store.PublishState(v)
	}
	writeJSON(w, v.Payload())
}

func (h *ViewportHandler) bind(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req bindRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid bind request", err)
		return
	}
	if v.SetIdentifier(req.Identifier) {
		h.store.Dispatcher().Forget(v)
		h.store.PublishState(v)
	}
	writeJSON(w, v.Payload())
}

func (h *ViewportHandler) stream(w http.ResponseWriter, r *http.Request) {
	vid := chi.URLParam(r, "vid")
	hub, ok := h.store.Broadcaster(vid)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	// The viewport may have been closed between the lookup and Subscribe.
	v, ok := h.store.Get(vid)
	if !ok {
		writeSSE(w, viewport.EventExpired, vid)
		flusher.Flush()
		return
	}
	data, err := json.Marshal(v.Payload())
	if err != nil {
		h.log.Error("encode viewport state", zap.String("viewport", vid), zap.Error(err))
		return
	}
	writeSSE(w, viewport.EventState, string(data))
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			writeSSE(w, event.Name, event.Data)
			flusher.Flush()
			if event.Name == viewport.EventExpired {
				return
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func decodePointer(w http.ResponseWriter, r *http.Request) (pointerRequest, error) {
	var req pointerRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&req)
	return req, err
}

func pointerKey(client string, pointerID int64) string {
	return strings.Join([]string{client, strconv.FormatInt(pointerID, 10)}, ":")
}
