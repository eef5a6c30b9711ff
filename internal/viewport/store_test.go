package viewport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestStore_OpenGetClose(t *testing.T) {
	s := NewStore(time.Hour, 0, zaptest.NewLogger(t))
	v := s.Open(Config{Identifier: "1", Interactive: true})
	require.NotEmpty(t, v.ID())

	got, ok := s.Get(v.ID())
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.Equal(t, 1, s.Len())

	s.Dispatcher().Down("k", v, Vec{})
	assert.True(t, s.Close(v.ID()))
	assert.Nil(t, s.Dispatcher().Owner("k"))
	assert.False(t, s.Close(v.ID()))
	_, ok = s.Get(v.ID())
	assert.False(t, ok)
}

func TestStore_InstancesAreIsolated(t *testing.T) {
	s := NewStore(time.Hour, 0, nil)
	a := s.Open(Config{Identifier: "1", Interactive: true})
	b := s.Open(Config{Identifier: "1", Interactive: true})
	defer s.Close(a.ID())
	defer s.Close(b.ID())

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, a.DefsID(), b.DefsID())

	a.ZoomIn()
	assert.Equal(t, 1.5, a.Snapshot().Scale)
	assert.Equal(t, 1.0, b.Snapshot().Scale)
}

func TestStore_PublishState(t *testing.T) {
	s := NewStore(time.Hour, 0, nil)
	v := s.Open(Config{Identifier: "run-1", Interactive: true})
	defer s.Close(v.ID())

	hub, ok := s.Broadcaster(v.ID())
	require.True(t, ok)
	ch := hub.Subscribe()

	v.ZoomIn()
	s.PublishState(v)

	ev := <-ch
	assert.Equal(t, EventState, ev.Name)
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(ev.Data), &p))
	assert.Equal(t, v.ID(), p.ID)
	assert.Equal(t, "run-1", p.Identifier)
	assert.Equal(t, 1.5, p.Scale)
	assert.Equal(t, "translate(0px, 0px) scale(1.5)", p.Transform)
	assert.Equal(t, EasedTransition, p.Transition)
}

func TestStore_EvictsIdleViewports(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewStore(50*time.Millisecond, 0, nil)
	v := s.Open(Config{Identifier: "1", Interactive: true})
	hub, ok := s.Broadcaster(v.ID())
	require.True(t, ok)
	ch := hub.Subscribe()

	var names []string
	for ev := range ch {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{EventExpired}, names)

	_, ok = s.Get(v.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_EvictsLeastRecentlyActiveWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewStore(time.Hour, 2, nil)
	assert.Equal(t, 2, s.Max())
	a := s.Open(Config{Identifier: "1", Interactive: true})
	time.Sleep(2 * time.Millisecond)
	b := s.Open(Config{Identifier: "2", Interactive: true})
	time.Sleep(2 * time.Millisecond)
	a.ZoomIn()
	time.Sleep(2 * time.Millisecond)

	hub, ok := s.Broadcaster(b.ID())
	require.True(t, ok)
	ch := hub.Subscribe()

	c := s.Open(Config{Identifier: "3", Interactive: true})
	assert.Equal(t, 2, s.Len())

	var names []string
	for ev := range ch {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{EventExpired}, names)

	_, ok = s.Get(b.ID())
	assert.False(t, ok, "least recently active viewport should be evicted")
	for _, v := range []*Viewport{a, c} {
		_, ok := s.Get(v.ID())
		assert.True(t, ok)
		s.Close(v.ID())
	}
}

func TestStore_DefaultLimits(t *testing.T) {
	s := NewStore(0, 0, nil)
	assert.Equal(t, DefaultMaxViewports, s.Max())
}
