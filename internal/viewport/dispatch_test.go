package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RoutesToOwnerOnly(t *testing.T) {
	d := NewDispatcher()
	namer := NewNamer()
	a := New("a", Config{Identifier: "1", Interactive: true}, namer)
	b := New("b", Config{Identifier: "2", Interactive: true}, namer)

	require.True(t, d.Down("c1:1", a, Vec{10, 10}))
	assert.Same(t, a, d.Owner("c1:1"))

	owner, changed := d.Move("c1:1", Vec{40, 30})
	assert.Same(t, a, owner)
	assert.True(t, changed)
	assert.Equal(t, Vec{30, 20}, a.Snapshot().Offset)
	assert.Equal(t, Vec{}, b.Snapshot().Offset)

	owner, _ = d.Up("c1:1", Vec{40, 30})
	assert.Same(t, a, owner)
	assert.False(t, a.Snapshot().Dragging)
	assert.Nil(t, d.Owner("c1:1"))

	owner, changed = d.Move("c1:1", Vec{90, 90})
	assert.Nil(t, owner)
	assert.False(t, changed)
	assert.Equal(t, Vec{30, 20}, a.Snapshot().Offset)
}

func TestDispatcher_NonInteractiveNotCaptured(t *testing.T) {
	d := NewDispatcher()
	v := New("a", Config{Identifier: "1"}, nil)
	assert.False(t, d.Down("c1:1", v, Vec{}))
	assert.Nil(t, d.Owner("c1:1"))
	assert.False(t, d.Down("c1:1", nil, Vec{}))
}

func TestDispatcher_LeaveReleases(t *testing.T) {
	d := NewDispatcher()
	v := New("a", Config{Identifier: "1", Interactive: true}, nil)
	d.Down("k", v, Vec{})
	owner, changed := d.Leave("k", Vec{})
	assert.Same(t, v, owner)
	assert.True(t, changed)
	assert.False(t, v.Snapshot().Dragging)

	owner, changed = d.Leave("k", Vec{})
	assert.Nil(t, owner)
	assert.False(t, changed)
}

func TestDispatcher_RecaptureEndsPreviousDrag(t *testing.T) {
	d := NewDispatcher()
	a := New("a", Config{Identifier: "1", Interactive: true}, nil)
	b := New("b", Config{Identifier: "2", Interactive: true}, nil)
	d.Down("k", a, Vec{})
	d.Down("k", b, Vec{})
	assert.False(t, a.Snapshot().Dragging)
	assert.True(t, b.Snapshot().Dragging)
	assert.Same(t, b, d.Owner("k"))
}

func TestDispatcher_Forget(t *testing.T) {
	d := NewDispatcher()
	v := New("a", Config{Identifier: "1", Interactive: true}, nil)
	d.Down("k1", v, Vec{})
	d.Down("k2", v, Vec{})
	d.Forget(v)
	assert.Nil(t, d.Owner("k1"))
	assert.Nil(t, d.Owner("k2"))
}
