package viewer

import (
	"testing"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/timectrl"
)

func newTestClock() *timectrl.TimeController {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return timectrl.NewTimeController(start, time.Second, timectrl.Accelerated)
}

func f64(v float64) *float64 { return &v }

func TestSelectPausesExactlyOnce(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Select("earth", nil, "Earth", false)
	if !clock.Paused() {
		t.Fatal("selecting a new object must pause the clock")
	}

	// The transition completes: exactly one resume.
	m.AnimationComplete()
	if clock.Paused() {
		t.Fatal("AnimationComplete must release the pause hold")
	}

	// A second AnimationComplete has no outstanding hold: no-op, and must
	// not underflow another owner's hold.
	clock.Pause()
	m.AnimationComplete()
	if !clock.Paused() {
		t.Fatal("AnimationComplete with no outstanding hold must not release someone else's")
	}
}

func TestReselectSameObjectTogglesUnpause(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Select("earth", nil, "Earth", false)
	if !clock.Paused() {
		t.Fatal("first select should pause")
	}

	m.Select("earth", nil, "Earth", false)
	if clock.Paused() {
		t.Fatal("re-selecting the selected object while paused must unpause immediately")
	}
}

func TestFocusThenSelectKeepsSize(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Focus("earth", "Earth", FocusDetails{VisualSize: f64(1.8)})
	m.Select("earth", &model.CelestialObjectDescriptor{ID: "earth"}, "Earth", false)

	st := m.State()
	if st.FocusedVisualSize == nil || *st.FocusedVisualSize != 1.8 {
		t.Fatalf("FocusedVisualSize = %v, want 1.8 (select must not overwrite focus data with nil)", st.FocusedVisualSize)
	}
}

func TestSelectThenFocusKeepsSize(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Select("earth", &model.CelestialObjectDescriptor{ID: "earth"}, "Earth", false)
	m.Focus("earth", "Earth", FocusDetails{VisualSize: f64(1.8)})

	st := m.State()
	if st.FocusedVisualSize == nil || *st.FocusedVisualSize != 1.8 {
		t.Fatalf("FocusedVisualSize = %v, want 1.8 (both call orderings must converge)", st.FocusedVisualSize)
	}
}

func TestSwitchingFocusClearsStaleMetadata(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Focus("earth", "Earth", FocusDetails{VisualSize: f64(1.8), Mass: f64(5.9e24)})
	m.Select("mars", nil, "Mars", false)

	st := m.State()
	if st.FocusedObjectID != "mars" {
		t.Fatalf("FocusedObjectID = %q, want mars", st.FocusedObjectID)
	}
	if st.FocusedVisualSize != nil || st.FocusedMass != nil {
		t.Fatal("metadata recorded for a different object must not leak into the new focus")
	}
}

func TestHoverIsIdempotent(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	events := 0
	m.Subscribe(func(SelectionState) { events++ })

	m.Hover("earth")
	m.Hover("earth")
	m.Hover("earth")
	if events != 1 {
		t.Fatalf("events = %d, want 1 (repeat hover emits nothing)", events)
	}

	m.Hover("")
	if events != 2 {
		t.Fatalf("events = %d, want 2 after clearing hover", events)
	}
}

func TestBackRestoresSnapshot(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Select("jupiter", nil, "Jupiter", false)
	m.AnimationComplete()

	// Drill down into a moon: the pre-selection state is pushed.
	m.Select("europa", nil, "Europa", true)
	m.AnimationComplete()
	if got := m.State().SelectedObjectID; got != "europa" {
		t.Fatalf("SelectedObjectID = %q, want europa", got)
	}

	m.Back()
	if got := m.State().SelectedObjectID; got != "jupiter" {
		t.Fatalf("after Back: SelectedObjectID = %q, want jupiter", got)
	}

	// The stack is one level deep: a second Back is a no-op.
	m.Back()
	if got := m.State().SelectedObjectID; got != "jupiter" {
		t.Fatalf("after second Back: SelectedObjectID = %q, want jupiter", got)
	}
}

func TestFallbackTimerUnpauses(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, 20*time.Millisecond)

	m.Select("earth", nil, "Earth", false)
	if !clock.Paused() {
		t.Fatal("select should pause")
	}

	// AnimationComplete never arrives; the bounded fallback must unpause.
	deadline := time.After(2 * time.Second)
	for clock.Paused() {
		select {
		case <-deadline:
			t.Fatal("fallback timer did not unpause the clock")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestSystemChangedClearsStateButNotPause(t *testing.T) {
	clock := newTestClock()
	m := NewSelectionMachine(clock, time.Minute)

	m.Select("earth", nil, "Earth", true)
	m.SystemChanged()

	st := m.State()
	if st.SelectedObjectID != "" || st.FocusedObjectName != "" {
		t.Fatalf("state after system change = %+v, want cleared", st)
	}
	m.Back()
	if m.State().SelectedObjectID != "" {
		t.Fatal("snapshot stack must be cleared on system change")
	}
	if !clock.Paused() {
		t.Fatal("system change must not implicitly unpause; pause ownership is transition-scoped")
	}
}
