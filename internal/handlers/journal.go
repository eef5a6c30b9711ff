package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"runpal/internal/config"
	"runpal/internal/journal"
	routerender "runpal/internal/render"
	"runpal/internal/route"
	"runpal/internal/viewmodel"
	"runpal/internal/viewport"
	"runpal/views/pages"
)

const maxPNGQueryWidth = 2400

type JournalHandler struct {
	catalog   *journal.Catalog
	profile   journal.Profile
	viewports *viewport.Store
	raster    config.RenderConfig
	baseURL   string
	log       *zap.Logger
}

func NewJournalHandler(catalog *journal.Catalog, profile journal.Profile, viewports *viewport.Store, cfg config.Config, log *zap.Logger) *JournalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &JournalHandler{
		catalog:   catalog,
		profile:   profile,
		viewports: viewports,
		raster:    cfg.Render,
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.Server.BaseURL), "/"),
		log:       log,
	}
}

func (h *JournalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Route("/runs/{id}", func(r chi.Router) {
		r.Get("/", h.runDetail)
		r.Get("/route.svg", h.routeSVG)
		r.Get("/route.png", h.routePNG)
		r.Get("/route.geojson", h.routeGeoJSON)
		r.Get("/route.json", h.routeJSON)
	})
}

func (h *JournalHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	runs := h.catalog.All()
	cards := make([]viewmodel.RunCard, 0, len(runs))
	namer := h.viewports.Namer()
	for _, run := range runs {
		cards = append(cards, viewmodel.RunCard{
			Run:       run,
			MoodLabel: moodLabel(run.Mood),
			DetailURL: "/runs/" + run.ID,
			Map: viewmodel.RouteMap{
				DefsID:     namer.Next(run.ID),
				Identifier: run.ID,
				Path:       route.Generate(run.ID),
				Minimal:    true,
			},
		})
	}
	render(w, r, pages.Dashboard(viewmodel.Dashboard{
		Title:   "RunPal",
		Profile: h.profile,
		Summary: journal.Summarize(runs),
		Cards:   cards,
	}))
}

func (h *JournalHandler) runDetail(w http.ResponseWriter, r *http.Request) {
	run, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	v := h.viewports.Open(viewport.Config{Identifier: run.ID, Interactive: true})
	state := v.Payload()
	base := h.absoluteURL(r, "/runs/"+run.ID)
	w.Header().Set("Cache-Control", "no-store")
	render(w, r, pages.RunDetail(viewmodel.RunDetail{
		Title:     run.Route + " · RunPal",
		Run:       run,
		MoodLabel: moodLabel(run.Mood),
		Map: viewmodel.RouteMap{
			ViewportID:  v.ID(),
			DefsID:      state.DefsID,
			Identifier:  run.ID,
			Path:        v.Path(),
			Interactive: true,
			Transform:   state.Transform,
			Transition:  state.Transition,
		},
		Exports: []viewmodel.ExportLink{
			{Label: "SVG", URL: base + "/route.svg"},
			{Label: "PNG", URL: base + "/route.png"},
			{Label: "GeoJSON", URL: base + "/route.geojson"},
			{Label: "JSON", URL: base + "/route.json"},
		},
	}))
}

func (h *JournalHandler) routeSVG(w http.ResponseWriter, r *http.Request) {
	run, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	opts := routerender.SVGOptions{DefsID: "route", Minimal: queryBool(r, "minimal"), Standalone: true}
	if err := routerender.SVG(&buf, route.Generate(run.ID), opts); err != nil {
		respondError(w, h.log, http.StatusInternalServerError, "render svg", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = buf.WriteTo(w)
}

func (h *JournalHandler) routePNG(w http.ResponseWriter, r *http.Request) {
	run, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	width := parseInt(r.URL.Query().Get("width"), h.raster.PNGWidth)
	if width < 1 || width > maxPNGQueryWidth {
		respondError(w, h.log, http.StatusBadRequest, "width out of range", nil)
		return
	}
	var buf bytes.Buffer
	opts := routerender.PNGOptions{Width: width, Supersample: h.raster.Supersample, Minimal: queryBool(r, "minimal")}
	if err := routerender.PNG(&buf, route.Generate(run.ID), opts); err != nil {
		respondError(w, h.log, http.StatusInternalServerError, "render png", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

func (h *JournalHandler) routeGeoJSON(w http.ResponseWriter, r *http.Request) {
	run, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := routerender.GeoJSON(route.Generate(run.ID), run.ID)
	if err != nil {
		respondError(w, h.log, http.StatusInternalServerError, "render geojson", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

type routeResponse struct {
	Identifier string        `json:"identifier"`
	Segments   int           `json:"segments"`
	Start      route.Point   `json:"start"`
	End        route.Point   `json:"end"`
	Points     []route.Point `json:"points"`
}

func (h *JournalHandler) routeJSON(w http.ResponseWriter, r *http.Request) {
	run, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	path := route.Generate(run.ID)
	writeJSON(w, routeResponse{
		Identifier: run.ID,
		Segments:   path.Segments(),
		Start:      path.Start,
		End:        path.End,
		Points:     path.Points,
	})
}

// absoluteURL prefixes path with the configured base URL, or with the
// request's own scheme and host when none is set.
func (h *JournalHandler) absoluteURL(r *http.Request, path string) string {
	if h.baseURL != "" {
		return h.baseURL + path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

func moodLabel(m journal.Mood) string {
	s := string(m)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return err == nil && v
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
