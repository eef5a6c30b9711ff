package viewmodel

import (
	"strconv"

	"runpal/internal/journal"
	"runpal/internal/route"
)

// RouteMap holds data for one embedded route map.
type RouteMap struct {
	// ViewportID is empty for static maps.
	ViewportID  string
	DefsID      string
	Identifier  string
	Path        route.PathResult
	Interactive bool
	Minimal     bool
	Transform   string
	Transition  string
}

// ShowTrackLabel reports whether the "GPS TRACK" badge is drawn.
func (m RouteMap) ShowTrackLabel() bool {
	return !m.Minimal && !m.Interactive
}

// StreamURL is the event stream the client subscribes to for this map.
func (m RouteMap) StreamURL() string {
	return "/viewports/" + m.ViewportID + "/stream"
}

// RunCard holds data for a run on the dashboard.
type RunCard struct {
	Run       journal.Run
	MoodLabel string
	DetailURL string
	Map       RouteMap
}

// Dashboard holds data for the home page.
type Dashboard struct {
	Title   string
	Profile journal.Profile
	Summary journal.Summary
	Cards   []RunCard
}

// ExportLink points at a downloadable rendering of a route.
type ExportLink struct {
	Label string
	URL   string
}

// RunDetail holds data for a single run page.
type RunDetail struct {
	Title     string
	Run       journal.Run
	MoodLabel string
	Map       RouteMap
	Exports   []ExportLink
}

// MoodClass returns the CSS modifier for a mood badge.
func MoodClass(m journal.Mood) string {
	return "mood--" + string(m)
}

// Km formats a distance in kilometres to one decimal place.
func Km(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
