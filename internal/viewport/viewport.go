// Package viewport holds the pan/zoom state of a rendered route map.
//
// A Viewport never fails: events that do not apply to its current
// configuration are ignored and zoom requests saturate at the bounds.
package viewport

import (
	"math"
	"strconv"
	"sync"
	"time"

	"runpal/internal/route"
)

const (
	MinScale = 1.0
	MaxScale = 4.0
	ZoomStep = 0.5

	// Easing applied when the transform changes outside of a drag.
	EasedTransition = "transform 0.2s cubic-bezier(0.25, 0.46, 0.45, 0.94)"
	NoTransition    = "none"
)

// Vec is a 2-D pointer coordinate or translation in screen pixels.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Config is supplied by the embedding view.
type Config struct {
	Identifier  string
	Interactive bool
	Minimal     bool
}

// State is a point-in-time copy of a viewport's mutable state.
type State struct {
	Scale      float64 `json:"scale"`
	Offset     Vec     `json:"offset"`
	Dragging   bool    `json:"dragging"`
	DragAnchor Vec     `json:"-"`
}

// Viewport owns the pan/zoom state for one mounted map.
type Viewport struct {
	mu         sync.Mutex
	id         string
	cfg        Config
	namer      *Namer
	defsID     string
	scale      float64
	offset     Vec
	dragging   bool
	anchor     Vec
	lastActive time.Time
}

// New creates a viewport at scale 1 with no offset. namer may be nil, in
// which case a private one is used.
func New(id string, cfg Config, namer *Namer) *Viewport {
	if namer == nil {
		namer = NewNamer()
	}
	return &Viewport{
		id:         id,
		cfg:        cfg,
		namer:      namer,
		defsID:     namer.Next(cfg.Identifier),
		scale:      MinScale,
		lastActive: time.Now().UTC(),
	}
}

// ID returns the instance id.
func (v *Viewport) ID() string {
	return v.id
}

// Config returns the current configuration.
func (v *Viewport) Config() Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// DefsID returns the namespace for this instance's gradient and filter ids.
func (v *Viewport) DefsID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.defsID
}

// Path generates the route for the bound identifier.
func (v *Viewport) Path() route.PathResult {
	return route.Generate(v.Config().Identifier)
}

// SetIdentifier rebinds the viewport. A changed identifier resets the view,
// ends any drag and issues a fresh defs namespace.
func (v *Viewport) SetIdentifier(identifier string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touchLocked()
	if identifier == v.cfg.Identifier {
		return false
	}
	v.cfg.Identifier = identifier
	v.defsID = v.namer.Next(identifier)
	v.resetLocked()
	v.dragging = false
	v.anchor = Vec{}
	return true
}

// PointerDown starts a drag. It reports whether the pointer should be
// captured by this viewport.
func (v *Viewport) PointerDown(p Vec) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.cfg.Interactive {
		return false
	}
	v.touchLocked()
	v.dragging = true
	v.anchor = p.Sub(v.offset)
	return true
}

// PointerMove pans while dragging. Panning is 1:1 with the pointer
// regardless of scale.
func (v *Viewport) PointerMove(p Vec) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.cfg.Interactive || !v.dragging {
		return false
	}
	v.touchLocked()
	v.offset = p.Sub(v.anchor)
	return true
}

// PointerUp ends a drag. Calling it when not dragging is a no-op.
func (v *Viewport) PointerUp(Vec) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.dragging {
		return false
	}
	v.touchLocked()
	v.dragging = false
	return true
}

// PointerLeave terminates a drag exactly like PointerUp.
func (v *Viewport) PointerLeave(p Vec) bool {
	return v.PointerUp(p)
}

// ZoomIn raises the scale by one step, saturating at MaxScale.
func (v *Viewport) ZoomIn() bool {
	return v.zoom(ZoomStep)
}

// ZoomOut lowers the scale by one step, saturating at MinScale.
func (v *Viewport) ZoomOut() bool {
	return v.zoom(-ZoomStep)
}

func (v *Viewport) zoom(delta float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touchLocked()
	next := clamp(v.scale+delta, MinScale, MaxScale)
	if next == v.scale {
		return false
	}
	v.scale = next
	return true
}

// Reset restores scale 1 and zero offset.
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touchLocked()
	v.resetLocked()
}

func (v *Viewport) resetLocked() {
	v.scale = MinScale
	v.offset = Vec{}
}

// Snapshot returns a consistent copy of the state.
func (v *Viewport) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Scale:      v.scale,
		Offset:     v.offset,
		Dragging:   v.dragging,
		DragAnchor: v.anchor,
	}
}

// LastActive returns when the viewport last received an event.
func (v *Viewport) LastActive() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastActive
}

func (v *Viewport) touchLocked() {
	v.lastActive = time.Now().UTC()
}

// Transform renders the CSS transform for the content layer: translate
// first, in unscaled pixels, then scale.
func (s State) Transform() string {
	return "translate(" + formatPx(s.Offset.X) + ", " + formatPx(s.Offset.Y) + ") scale(" +
		strconv.FormatFloat(s.Scale, 'f', -1, 64) + ")"
}

// Transition is disabled while dragging so the content tracks the pointer.
func (s State) Transition() string {
	if s.Dragging {
		return NoTransition
	}
	return EasedTransition
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
