package viewer

import (
	"sync"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/timectrl"
)

// defaultUnpauseFallback bounds how long a missed animation-complete callback
// can leave the simulation paused.
const defaultUnpauseFallback = 5 * time.Second

// SelectionState is the externally visible selection/focus state. Focused
// metadata fields are nil until something sets them.
type SelectionState struct {
	SelectedObjectID   string
	SelectedObjectData *model.CelestialObjectDescriptor

	HoveredObjectID string

	FocusedObjectID    string
	FocusedObjectName  string
	FocusedVisualSize  *float64
	FocusedRadius      *float64
	FocusedMass        *float64
	FocusedOrbitRadius *float64
}

// FocusDetails carries the display metadata recorded by Focus. Nil fields
// leave the current value untouched, which is what makes the select/focus
// call orderings converge.
type FocusDetails struct {
	VisualSize  *float64
	Radius      *float64
	Mass        *float64
	OrbitRadius *float64
}

// SelectionMachine owns hover/select/focus/pause transitions for one viewer
// session. All mutation goes through its methods; reads get a snapshot.
//
// Pause ownership is transition-scoped: selecting a new object takes exactly
// one pause hold on the simulation clock, released by AnimationComplete (or
// the fallback timer). A system change never releases holds.
type SelectionMachine struct {
	mu sync.Mutex

	state SelectionState

	// previous is a one-level stack for hierarchical drill-down; Back pops it.
	previous *SelectionState

	clock            timectrl.SimClock
	pauseHeld        bool
	awaitingAnim     bool
	fallback         *time.Timer
	fallbackDuration time.Duration

	subs []func(SelectionState)
}

// NewSelectionMachine constructs a machine bound to the simulation clock.
// A zero fallback duration uses the default.
func NewSelectionMachine(clock timectrl.SimClock, fallback time.Duration) *SelectionMachine {
	if fallback <= 0 {
		fallback = defaultUnpauseFallback
	}
	return &SelectionMachine{
		clock:            clock,
		fallbackDuration: fallback,
	}
}

// Subscribe registers a callback invoked after every state change.
func (m *SelectionMachine) Subscribe(fn func(SelectionState)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// State returns a snapshot of the current selection state.
func (m *SelectionMachine) State() SelectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Hover records the hovered object. Hovering the already-hovered id is a
// no-op and emits no event.
func (m *SelectionMachine) Hover(id string) {
	m.mu.Lock()
	if m.state.HoveredObjectID == id {
		m.mu.Unlock()
		return
	}
	m.state.HoveredObjectID = id
	m.notifyLocked()
}

// Select makes an object the current selection.
//
// Selecting a different object while the clock runs pauses it exactly once
// and arms the awaiting-animation flag; re-selecting the same object while
// paused unpauses immediately (toggle semantics). When drillDown is set, the
// pre-selection state is pushed for later restoration via Back.
//
// Focused metadata already recorded by a preceding Focus call in the same
// transition survives: Select never overwrites a non-nil value with nil.
func (m *SelectionMachine) Select(id string, data *model.CelestialObjectDescriptor, name string, drillDown bool) {
	m.mu.Lock()

	sameObject := m.state.SelectedObjectID == id && id != ""
	if sameObject {
		if m.clock != nil && m.clock.Paused() {
			m.releasePauseLocked()
		}
	} else {
		if drillDown {
			snapshot := m.state
			m.previous = &snapshot
		}
		if m.clock != nil && !m.clock.Paused() {
			m.clock.Pause()
			m.pauseHeld = true
			m.awaitingAnim = true
			m.armFallbackLocked()
		}
	}

	m.state.SelectedObjectID = id
	m.state.SelectedObjectData = data
	if m.state.FocusedObjectID != id {
		// The focus moves to a different object: stale metadata from the
		// previous focal object is cleared. When a preceding Focus call in
		// this same transition already set the id, everything it recorded
		// survives untouched.
		m.state.FocusedObjectID = id
		m.state.FocusedVisualSize = nil
		m.state.FocusedRadius = nil
		m.state.FocusedMass = nil
		m.state.FocusedOrbitRadius = nil
	}
	if name != "" {
		m.state.FocusedObjectName = name
	}
	m.notifyLocked()
}

// Focus records display metadata for the focal object. It may run before or
// after Select for the same transition; the most recent non-nil values win.
func (m *SelectionMachine) Focus(id, name string, details FocusDetails) {
	m.mu.Lock()
	if id != "" && m.state.FocusedObjectID != id {
		m.state.FocusedObjectID = id
		m.state.FocusedVisualSize = nil
		m.state.FocusedRadius = nil
		m.state.FocusedMass = nil
		m.state.FocusedOrbitRadius = nil
	}
	if name != "" {
		m.state.FocusedObjectName = name
	}
	if details.VisualSize != nil {
		m.state.FocusedVisualSize = details.VisualSize
	}
	if details.Radius != nil {
		m.state.FocusedRadius = details.Radius
	}
	if details.Mass != nil {
		m.state.FocusedMass = details.Mass
	}
	if details.OrbitRadius != nil {
		m.state.FocusedOrbitRadius = details.OrbitRadius
	}
	m.notifyLocked()
}

// AnimationComplete releases the pause hold taken by the current transition.
// Calls with no outstanding hold are no-ops.
func (m *SelectionMachine) AnimationComplete() {
	m.mu.Lock()
	if !m.pauseHeld {
		m.mu.Unlock()
		return
	}
	m.releasePauseLocked()
	m.notifyLocked()
}

// Back pops and restores the one-level previous-state snapshot, if present.
func (m *SelectionMachine) Back() {
	m.mu.Lock()
	if m.previous == nil {
		m.mu.Unlock()
		return
	}
	m.state = *m.previous
	m.previous = nil
	m.notifyLocked()
}

// SystemChanged clears selection references and the snapshot stack when the
// active system changes. Pause holds are transition-scoped, not
// system-scoped, so the clock is deliberately left alone.
func (m *SelectionMachine) SystemChanged() {
	m.mu.Lock()
	m.state = SelectionState{}
	m.previous = nil
	m.notifyLocked()
}

// releasePauseLocked drops our pause hold and disarms the fallback timer.
// Caller holds the mutex.
func (m *SelectionMachine) releasePauseLocked() {
	if m.fallback != nil {
		m.fallback.Stop()
		m.fallback = nil
	}
	if m.pauseHeld {
		m.pauseHeld = false
		m.awaitingAnim = false
		if m.clock != nil {
			m.clock.Resume()
		}
	} else if m.clock != nil && m.clock.Paused() {
		m.clock.Resume()
	}
}

// armFallbackLocked starts the bounded unpause timer. Caller holds the mutex.
func (m *SelectionMachine) armFallbackLocked() {
	if m.fallback != nil {
		m.fallback.Stop()
	}
	m.fallback = time.AfterFunc(m.fallbackDuration, m.AnimationComplete)
}

// notifyLocked snapshots the state, releases the mutex, and invokes
// subscribers. The mutex must be held on entry and is released on return.
func (m *SelectionMachine) notifyLocked() {
	snapshot := m.state
	subs := make([]func(SelectionState), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
