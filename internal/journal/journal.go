// Package journal holds the runner's logged runs.
package journal

import (
	"strings"
	"sync"
)

// Mood is the emotional tone attached to a run.
type Mood string

const (
	MoodStrong     Mood = "strong"
	MoodHappy      Mood = "happy"
	MoodDetermined Mood = "determined"
	MoodAmazing    Mood = "amazing"
	MoodTired      Mood = "tired"
	MoodNeutral    Mood = "neutral"
)

// Moods lists every valid mood.
var Moods = []Mood{MoodStrong, MoodHappy, MoodDetermined, MoodAmazing, MoodTired, MoodNeutral}

// ParseMood normalises s, falling back to MoodNeutral for unknown values.
func ParseMood(s string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Moods {
		if m == known {
			return m
		}
	}
	return MoodNeutral
}

// Run is one logged run.
type Run struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	DistanceKm float64 `json:"distance_km"`
	Duration   string  `json:"duration"`
	Pace       string  `json:"pace"`
	Route      string  `json:"route"`
	Mood       Mood    `json:"mood"`
	PhotoNote  string  `json:"photo_note"`
	Memory     string  `json:"memory"`
	ImageURL   string  `json:"image_url"`
}

// Profile describes the runner.
type Profile struct {
	Name           string
	Goal           string
	PreferredTimes string
	Motivations    []string
	Struggles      []string
}

// Catalog is a read-only, in-memory list of runs.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	runs  map[string]Run
}

// NewCatalog creates a catalog holding runs in the given order. Later
// duplicates of an ID replace earlier ones in place.
func NewCatalog(runs []Run) *Catalog {
	c := &Catalog{runs: make(map[string]Run, len(runs))}
	for _, r := range runs {
		if _, ok := c.runs[r.ID]; !ok {
			c.order = append(c.order, r.ID)
		}
		c.runs[r.ID] = r
	}
	return c
}

// All returns the runs in insertion order.
func (c *Catalog) All() []Run {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Run, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.runs[id])
	}
	return out
}

// Get returns a run by ID.
func (c *Catalog) Get(id string) (Run, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.runs[id]
	return r, ok
}

// Len returns the number of runs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
