package viewport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"runpal/pkg/realtime"
)

// SSE event names published for a viewport.
const (
	EventState   = "state"
	EventExpired = "expired"
)

const (
	// DefaultIdleTTL is how long an interactive viewport survives without events.
	DefaultIdleTTL = 30 * time.Minute
	// DefaultMaxViewports bounds the number of mounted viewports.
	DefaultMaxViewports = 1000
)

// Payload is the wire form of a viewport's state.
type Payload struct {
	ID         string  `json:"id"`
	Identifier string  `json:"identifier"`
	DefsID     string  `json:"defs_id"`
	Scale      float64 `json:"scale"`
	Offset     Vec     `json:"offset"`
	Dragging   bool    `json:"dragging"`
	Transform  string  `json:"transform"`
	Transition string  `json:"transition"`
}

// Payload captures the current state for the wire.
func (v *Viewport) Payload() Payload {
	cfg := v.Config()
	s := v.Snapshot()
	return Payload{
		ID:         v.ID(),
		Identifier: cfg.Identifier,
		DefsID:     v.DefsID(),
		Scale:      s.Scale,
		Offset:     s.Offset,
		Dragging:   s.Dragging,
		Transform:  s.Transform(),
		Transition: s.Transition(),
	}
}

// Store keeps mounted interactive viewports and evicts idle ones. Once
// full, opening a viewport evicts the least recently active one.
type Store struct {
	r        *realtime.RoomStore[*Viewport]
	namer    *Namer
	dispatch *Dispatcher
	idleTTL  time.Duration
	max      int
	openMu   sync.Mutex
	log      *zap.Logger
}

// NewStore creates a viewport store. Non-positive limits use DefaultIdleTTL
// and DefaultMaxViewports.
func NewStore(idleTTL time.Duration, maxViewports int, logger *zap.Logger) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if maxViewports <= 0 {
		maxViewports = DefaultMaxViewports
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		r:        realtime.NewRoomStore[*Viewport](),
		namer:    NewNamer(),
		dispatch: NewDispatcher(),
		idleTTL:  idleTTL,
		max:      maxViewports,
		log:      logger,
	}
}

// Namer returns the store's defs namer, shared with stateless renders.
func (s *Store) Namer() *Namer {
	return s.namer
}

// Dispatcher returns the pointer-capture dispatcher.
func (s *Store) Dispatcher() *Dispatcher {
	return s.dispatch
}

// Open mounts a new viewport and starts its idle timer.
func (s *Store) Open(cfg Config) *Viewport {
	v := New(uuid.NewString(), cfg, s.namer)
	s.openMu.Lock()
	for s.r.Len() >= s.max {
		if !s.evictOldest() {
			break
		}
	}
	s.r.Create(v.ID(), v)
	s.openMu.Unlock()
	s.ensureReaper(v.ID())
	s.log.Debug("viewport opened",
		zap.String("viewport", v.ID()),
		zap.String("identifier", cfg.Identifier),
		zap.Bool("interactive", cfg.Interactive))
	return v
}

// Get returns a mounted viewport.
func (s *Store) Get(id string) (*Viewport, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Close unmounts a viewport, releasing any pointer it captured.
func (s *Store) Close(id string) bool {
	room, ok := s.r.Delete(id)
	if !ok {
		return false
	}
	s.dispatch.Forget(room.State)
	s.log.Debug("viewport closed", zap.String("viewport", id))
	return true
}

// evictOldest closes the least recently active viewport, telling its
// subscribers it expired.
func (s *Store) evictOldest() bool {
	var oldest *Viewport
	for _, room := range s.r.Rooms() {
		if oldest == nil || room.State.LastActive().Before(oldest.LastActive()) {
			oldest = room.State
		}
	}
	if oldest == nil {
		return false
	}
	s.r.Publish(oldest.ID(), realtime.Event{Name: EventExpired, Data: oldest.ID()})
	s.log.Info("viewport evicted", zap.String("viewport", oldest.ID()), zap.Int("max", s.max))
	return s.Close(oldest.ID())
}

// Max returns the most viewports the store keeps mounted.
func (s *Store) Max() int {
	return s.max
}

// Len returns the number of mounted viewports.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the SSE broadcaster for a viewport.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// PublishState pushes the viewport's current state to its subscribers.
func (s *Store) PublishState(v *Viewport) {
	data, err := json.Marshal(v.Payload())
	if err != nil {
		s.log.Error("encode viewport state", zap.String("viewport", v.ID()), zap.Error(err))
		return
	}
	s.r.Publish(v.ID(), realtime.Event{Name: EventState, Data: string(data)})
}

func (s *Store) ensureReaper(id string) {
	getState := func() *Viewport {
		v, ok := s.Get(id)
		if !ok {
			return nil
		}
		return v
	}
	tick := func(v *Viewport, now time.Time) (time.Time, []realtime.Event, bool) {
		if v == nil {
			return time.Time{}, nil, true
		}
		deadline := v.LastActive().Add(s.idleTTL)
		if now.Before(deadline) {
			return deadline, nil, false
		}
		s.r.Publish(id, realtime.Event{Name: EventExpired, Data: id})
		s.log.Info("viewport expired", zap.String("viewport", id), zap.Duration("idle", now.Sub(v.LastActive())))
		s.Close(id)
		return time.Time{}, nil, true
	}
	s.r.RunLoop(id, getState, tick)
}
