package core

import "sync"

// PositionIndex maps object ids to world positions. The rendering layer (or
// the ephemeris, in headless runs) maintains it; the camera module queries it
// instead of walking a scene graph.
//
// An object can be registered twice: once for its orbit holder (the composite
// transform that carries the body around its parent) and once for the body
// itself. Holders may coincide with the parent's position before the body has
// been placed inside them, so lookups always prefer the body position.
type PositionIndex struct {
	mu      sync.RWMutex
	holders map[string]Vec3
	bodies  map[string]Vec3
}

// NewPositionIndex constructs an empty index.
func NewPositionIndex() *PositionIndex {
	return &PositionIndex{
		holders: make(map[string]Vec3),
		bodies:  make(map[string]Vec3),
	}
}

// SetHolder records the world position of an object's orbit holder.
func (p *PositionIndex) SetHolder(id string, pos Vec3) {
	if id == "" {
		return
	}
	p.mu.Lock()
	p.holders[id] = pos
	p.mu.Unlock()
}

// SetBody records the world position of the body itself.
func (p *PositionIndex) SetBody(id string, pos Vec3) {
	if id == "" {
		return
	}
	p.mu.Lock()
	p.bodies[id] = pos
	p.mu.Unlock()
}

// WorldPositionOf returns the best-known world position for an object: the
// body position when placed, otherwise the holder position. The second
// return is false for unknown ids.
func (p *PositionIndex) WorldPositionOf(id string) (Vec3, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if pos, ok := p.bodies[id]; ok {
		return pos, true
	}
	if pos, ok := p.holders[id]; ok {
		return pos, true
	}
	return Vec3{}, false
}

// Remove drops all entries for an id.
func (p *PositionIndex) Remove(id string) {
	p.mu.Lock()
	delete(p.holders, id)
	delete(p.bodies, id)
	p.mu.Unlock()
}

// Clear empties the index; called when the active system changes.
func (p *PositionIndex) Clear() {
	p.mu.Lock()
	p.holders = make(map[string]Vec3)
	p.bodies = make(map[string]Vec3)
	p.mu.Unlock()
}
