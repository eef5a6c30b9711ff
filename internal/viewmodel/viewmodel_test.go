package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"runpal/internal/journal"
)

func TestRouteMapHelpers(t *testing.T) {
	assert.Equal(t, "/viewports/abc/stream", RouteMap{ViewportID: "abc"}.StreamURL())
	assert.True(t, RouteMap{}.ShowTrackLabel())
	assert.False(t, RouteMap{Minimal: true}.ShowTrackLabel())
	assert.False(t, RouteMap{Interactive: true}.ShowTrackLabel())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "mood--tired", MoodClass(journal.MoodTired))
	assert.Equal(t, "28.5", Km(28.5))
	assert.Equal(t, "4.0", Km(4))
	assert.Equal(t, "5.7", Km(5.66))
}
