package components

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runpal/internal/journal"
	"runpal/internal/route"
	"runpal/internal/viewmodel"
)

func TestRouteMap_Interactive(t *testing.T) {
	var b strings.Builder
	m := viewmodel.RouteMap{
		ViewportID:  "vp-1",
		DefsID:      "rm-2-1",
		Identifier:  "2",
		Path:        route.Generate("2"),
		Interactive: true,
		Transform:   "translate(4px, -2px) scale(1.5)",
		Transition:  "none",
	}
	require.NoError(t, RouteMap(m).Render(context.Background(), &b))
	html := b.String()

	assert.Contains(t, html, `<div class="route-map route-map--interactive" data-viewport="vp-1" data-stream="/viewports/vp-1/stream" data-identifier="2">`)
	assert.Contains(t, html, `style="transform:translate(4px, -2px) scale(1.5);transition:none;"`)
	assert.Contains(t, html, `id="glow-rm-2-1"`)
	assert.Contains(t, html, `data-action="zoom-in"`)
	assert.Contains(t, html, `data-action="reset"`)
	assert.NotContains(t, html, "GPS TRACK")
}

func TestRouteMap_Static(t *testing.T) {
	var b strings.Builder
	m := viewmodel.RouteMap{DefsID: "rm-1-1", Identifier: `<x>`, Path: route.Generate("1")}
	require.NoError(t, RouteMap(m).Render(context.Background(), &b))
	html := b.String()

	assert.Contains(t, html, `<div class="route-map" data-identifier="&lt;x&gt;"><div class="route-map-content">`)
	assert.Contains(t, html, "GPS TRACK")
	assert.NotContains(t, html, "data-viewport")
	assert.NotContains(t, html, "data-action")
}

func TestRunCard(t *testing.T) {
	run := journal.SampleRuns[1]
	var b strings.Builder
	card := viewmodel.RunCard{
		Run:       run,
		MoodLabel: "Happy",
		DetailURL: "/runs/" + run.ID,
		Map:       viewmodel.RouteMap{DefsID: "rm-2-1", Identifier: run.ID, Path: route.Generate(run.ID), Minimal: true},
	}
	require.NoError(t, RunCard(card).Render(context.Background(), &b))
	html := b.String()

	assert.True(t, strings.HasPrefix(html, `<a class="run-card" href="/runs/2">`), html[:60])
	assert.Contains(t, html, `class="route-map route-map--minimal"`)
	assert.Contains(t, html, `<span class="mood mood--happy">Happy</span>`)
	assert.Contains(t, html, "7.1 km · 42 min · 5:52/km")
	assert.Contains(t, html, "<h3>Hill Route</h3>")
}
