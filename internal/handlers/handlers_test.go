package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"runpal/internal/coach"
	"runpal/internal/config"
	"runpal/internal/journal"
	"runpal/internal/viewport"
)

type testApp struct {
	router    chi.Router
	viewports *viewport.Store
	opened    []string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, config.Default())
}

func newTestAppWith(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := viewport.NewStore(time.Hour, cfg.Viewport.MaxInstances, nil)

	r := chi.NewRouter()
	NewJournalHandler(journal.NewCatalog(journal.SampleRuns), journal.SampleProfile, store, cfg, log).RegisterRoutes(r)
	NewViewportHandler(store, log).RegisterRoutes(r)
	NewCoachHandler(coach.NewResilient(nil, nil, log), log).RegisterRoutes(r)
	NewHealthHandler(store).RegisterRoutes(r)
	app := &testApp{router: r, viewports: store}
	t.Cleanup(func() {
		for _, id := range app.opened {
			store.Close(id)
		}
	})
	return app
}

func (a *testApp) open(cfg viewport.Config) *viewport.Viewport {
	v := a.viewports.Open(cfg)
	a.opened = append(a.opened, v.ID())
	return v
}

// trackViewports records viewports mounted by a rendered page for cleanup.
func (a *testApp) trackViewports(body string) {
	for _, chunk := range strings.Split(body, `data-viewport="`)[1:] {
		a.opened = append(a.opened, chunk[:strings.Index(chunk, `"`)])
	}
}

func (a *testApp) do(method, path, body, client string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if client != "" {
		req.AddCookie(&http.Cookie{Name: clientCookieName, Value: client})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) viewport.Payload {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p viewport.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Hi, Safora")
	assert.Equal(t, 5, strings.Count(body, `class="run-card"`))
	assert.Contains(t, body, "28.5")
	assert.NotContains(t, body, "GPS TRACK")
	assert.NotContains(t, body, "data-viewport")

	// Every card gets its own defs namespace.
	ids := map[string]bool{}
	for _, chunk := range strings.Split(body, `id="glow-`)[1:] {
		id := chunk[:strings.Index(chunk, `"`)]
		assert.False(t, ids[id], "duplicate defs id %s", id)
		ids[id] = true
	}
	assert.Len(t, ids, 5)
	assert.Equal(t, 0, app.viewports.Len(), "static cards do not mount viewports")
}

func TestRunDetail(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/runs/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	app.trackViewports(rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, "Hill Route")
	assert.Contains(t, body, `data-viewport="`)
	assert.Contains(t, body, `data-action="zoom-in"`)
	assert.Contains(t, body, "translate(0px, 0px) scale(1)")
	assert.Contains(t, body, `href="http://example.com/runs/2/route.geojson"`)
	assert.Equal(t, 1, app.viewports.Len())

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/runs/99", "", "").Code)
}

func TestRunDetail_ExportLinksUseBaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.Server.BaseURL = "https://runpal.example/"
	app := newTestAppWith(t, cfg)

	rec := app.do(http.MethodGet, "/runs/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	app.trackViewports(rec.Body.String())

	body := rec.Body.String()
	for _, ext := range []string{"svg", "png", "geojson", "json"} {
		assert.Contains(t, body, `href="https://runpal.example/runs/3/route.`+ext+`"`)
	}
}

func TestRunDetail_ViewportsAreCapped(t *testing.T) {
	cfg := config.Default()
	cfg.Viewport.MaxInstances = 3
	app := newTestAppWith(t, cfg)

	for i := 0; i < 8; i++ {
		rec := app.do(http.MethodGet, "/runs/1", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		app.trackViewports(rec.Body.String())
		assert.LessOrEqual(t, app.viewports.Len(), 3)
	}
	assert.Equal(t, 3, app.viewports.Len())

	// Only the most recently mounted maps survive.
	for _, id := range app.opened[:5] {
		assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/viewports/"+id, "", "").Code)
	}
	for _, id := range app.opened[5:] {
		assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/viewports/"+id, "", "").Code)
	}
}

func TestRouteExports(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/runs/1/route.svg", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `xmlns="http://www.w3.org/2000/svg"`)

	rec = app.do(http.MethodGet, "/runs/1/route.png?width=120", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/runs/1/route.png?width=0", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/runs/1/route.png?width=2401", "", "").Code)

	// A one pixel wide export still yields a valid image.
	rec = app.do(http.MethodGet, "/runs/1/route.png?width=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	img, err = png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())

	rec = app.do(http.MethodGet, "/runs/1/route.geojson", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 3)

	rec = app.do(http.MethodGet, "/runs/1/route.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got routeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1", got.Identifier)
	assert.Equal(t, 7, got.Segments)
	assert.Len(t, got.Points, 8)
	assert.Equal(t, 30.0, got.Start.X)

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/runs/nope/route.svg", "", "").Code)
}

func TestRoutePNG_MaxWidth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/runs/2/route.png?width=2400", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 2400, img.Bounds().Dx())
	assert.Equal(t, 1200, img.Bounds().Dy())
}

func TestViewport_DragWithCapture(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1", Interactive: true})
	base := "/viewports/" + v.ID()

	p := decodeState(t, app.do(http.MethodPost, base+"/pointerdown", `{"pointer_id":1,"x":100,"y":100}`, "client-a"))
	assert.True(t, p.Dragging)
	assert.Equal(t, viewport.NoTransition, p.Transition)

	p = decodeState(t, app.do(http.MethodPost, "/pointer/move", `{"pointer_id":1,"x":130,"y":90}`, "client-a"))
	assert.Equal(t, viewport.Vec{X: 30, Y: -10}, p.Offset)
	assert.Equal(t, "translate(30px, -10px) scale(1)", p.Transform)

	// Another client's pointer with the same id is not captured.
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/pointer/move", `{"pointer_id":1,"x":0,"y":0}`, "client-b").Code)

	p = decodeState(t, app.do(http.MethodPost, "/pointer/up", `{"pointer_id":1,"x":130,"y":90}`, "client-a"))
	assert.False(t, p.Dragging)
	assert.Equal(t, viewport.EasedTransition, p.Transition)

	// Capture is released: later moves reach nobody.
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/pointer/move", `{"pointer_id":1,"x":0,"y":0}`, "client-a").Code)
	assert.Equal(t, viewport.Vec{X: 30, Y: -10}, v.Snapshot().Offset)
}

func TestViewport_LeaveAndCancelEndDrag(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1", Interactive: true})

	for _, event := range []string{"leave", "cancel"} {
		decodeState(t, app.do(http.MethodPost, "/viewports/"+v.ID()+"/pointerdown", `{"pointer_id":7,"x":0,"y":0}`, "c"))
		p := decodeState(t, app.do(http.MethodPost, "/pointer/"+event, `{"pointer_id":7,"x":5,"y":5}`, "c"))
		assert.False(t, p.Dragging, event)
	}
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodPost, "/pointer/hover", `{"pointer_id":7}`, "c").Code)
}

func TestViewport_NonInteractiveIgnoresPointer(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1"})

	p := decodeState(t, app.do(http.MethodPost, "/viewports/"+v.ID()+"/pointerdown", `{"pointer_id":1,"x":10,"y":10}`, "c"))
	assert.False(t, p.Dragging)
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/pointer/move", `{"pointer_id":1,"x":50,"y":50}`, "c").Code)
}

func TestViewport_ZoomResetBind(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1", Interactive: true})
	base := "/viewports/" + v.ID()

	assert.Equal(t, 1.5, decodeState(t, app.do(http.MethodPost, base+"/zoom-in", "", "")).Scale)
	for i := 0; i < 10; i++ {
		app.do(http.MethodPost, base+"/zoom-in", "", "")
	}
	assert.Equal(t, viewport.MaxScale, decodeState(t, app.do(http.MethodGet, base, "", "")).Scale)
	assert.Equal(t, 3.5, decodeState(t, app.do(http.MethodPost, base+"/zoom-out", "", "")).Scale)

	p := decodeState(t, app.do(http.MethodPost, base+"/reset", "", ""))
	assert.Equal(t, viewport.MinScale, p.Scale)
	assert.Equal(t, viewport.Vec{}, p.Offset)

	before := p.DefsID
	app.do(http.MethodPost, base+"/zoom-in", "", "")
	p = decodeState(t, app.do(http.MethodPost, base+"/bind", `{"identifier":"2"}`, ""))
	assert.Equal(t, "2", p.Identifier)
	assert.Equal(t, viewport.MinScale, p.Scale)
	assert.NotEqual(t, before, p.DefsID)

	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, base+"/bind", `{`, "").Code)
}

func TestViewport_CloseAndMissing(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1", Interactive: true})
	base := "/viewports/" + v.ID()

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodDelete, base, "", "").Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, base, "", "").Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodDelete, base, "", "").Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodPost, base+"/zoom-in", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/pointer/move", `not json`, "c").Code)
}

func TestViewport_Stream(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1", Interactive: true})

	srv := httptest.NewServer(app.router)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/viewports/"+v.ID()+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && name != "":
				return name, data
			}
		}
	}

	name, data := readEvent()
	assert.Equal(t, viewport.EventState, name)
	assert.Contains(t, data, `"scale":1`)

	app.do(http.MethodPost, "/viewports/"+v.ID()+"/zoom-in", "", "")
	name, data = readEvent()
	assert.Equal(t, viewport.EventState, name)
	assert.Contains(t, data, `"scale":1.5`)

	app.viewports.Close(v.ID())
	_, err = reader.ReadString('\n')
	for err == nil {
		_, err = reader.ReadString('\n')
	}
}

func TestStream_UnknownViewport(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/viewports/nope/stream", "", "").Code)
}

func TestCoach(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/coach", `{"message":"I skipped my run today"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got coachResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, coach.FallbackReply, got.Reply)

	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/coach", `{"message":"  "}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/coach", `[`, "").Code)
}

func TestCoach_LongMultibyteMessage(t *testing.T) {
	app := newTestApp(t)
	body, err := json.Marshal(coachRequest{Message: strings.Repeat("é", maxMessageLen)})
	require.NoError(t, err)

	rec := app.do(http.MethodPost, "/coach", string(body), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))

	// "é" is two bytes: an odd limit must back off to a rune boundary.
	got := truncate(strings.Repeat("é", 10), 5)
	assert.Equal(t, "éé", got)
	assert.True(t, utf8.ValidString(got))

	got = truncate("a🏃b", 3)
	assert.Equal(t, "a", got)
	assert.Equal(t, "", truncate("🏃", 2))
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	app.open(viewport.Config{Identifier: "1", Interactive: true})

	rec := app.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","viewports":1}`, rec.Body.String())
}

func TestClientCookieIssuedOnce(t *testing.T) {
	app := newTestApp(t)
	v := app.open(viewport.Config{Identifier: "1", Interactive: true})

	rec := app.do(http.MethodPost, "/viewports/"+v.ID()+"/pointerdown", `{"pointer_id":1}`, "")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, clientCookieName, cookies[0].Name)

	rec = app.do(http.MethodPost, "/pointer/up", `{"pointer_id":1}`, cookies[0].Value)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMoodLabel(t *testing.T) {
	assert.Equal(t, "Amazing", moodLabel(journal.MoodAmazing))
	assert.Equal(t, "", moodLabel(""))
}
