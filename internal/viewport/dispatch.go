package viewport

import "sync"

// Dispatcher gives viewports pointer capture: once a viewport accepts a
// pointer-down, every later event for that pointer key goes to it alone
// until the pointer is released.
type Dispatcher struct {
	mu     sync.Mutex
	owners map[string]*Viewport
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{owners: make(map[string]*Viewport)}
}

// Down delivers a pointer-down to target and captures the pointer if the
// viewport starts a drag.
func (d *Dispatcher) Down(key string, target *Viewport, p Vec) bool {
	if target == nil || !target.PointerDown(p) {
		return false
	}
	d.mu.Lock()
	prev := d.owners[key]
	d.owners[key] = target
	d.mu.Unlock()
	if prev != nil && prev != target {
		prev.PointerUp(p)
	}
	return true
}

// Move routes a pointer-move to the capturing viewport.
func (d *Dispatcher) Move(key string, p Vec) (*Viewport, bool) {
	owner := d.Owner(key)
	if owner == nil {
		return nil, false
	}
	return owner, owner.PointerMove(p)
}

// Up routes a pointer-up to the capturing viewport and releases capture.
func (d *Dispatcher) Up(key string, p Vec) (*Viewport, bool) {
	owner := d.release(key)
	if owner == nil {
		return nil, false
	}
	return owner, owner.PointerUp(p)
}

// Leave ends the drag like Up.
func (d *Dispatcher) Leave(key string, p Vec) (*Viewport, bool) {
	owner := d.release(key)
	if owner == nil {
		return nil, false
	}
	return owner, owner.PointerLeave(p)
}

// Owner returns the viewport holding capture for key, if any.
func (d *Dispatcher) Owner(key string) *Viewport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.owners[key]
}

// Forget drops every capture held by v, e.g. when it is discarded.
func (d *Dispatcher) Forget(v *Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, owner := range d.owners {
		if owner == v {
			delete(d.owners, key)
		}
	}
}

func (d *Dispatcher) release(key string) *Viewport {
	d.mu.Lock()
	defer d.mu.Unlock()
	owner := d.owners[key]
	delete(d.owners, key)
	return owner
}
