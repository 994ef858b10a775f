package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/davidwyly/chart-citizen-sub001/core"
	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

type fakeCatalog struct {
	systems map[string][]*model.CelestialObjectDescriptor
	fail    bool
	calls   int
}

func (c *fakeCatalog) ListObjects(ctx context.Context, systemID string) ([]*model.CelestialObjectDescriptor, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("catalog unavailable")
	}
	objects, ok := c.systems[systemID]
	if !ok {
		return nil, errors.New("unknown system")
	}
	return objects, nil
}

func (c *fakeCatalog) AvailableSystems(ctx context.Context, mode string) ([]string, error) {
	names := make([]string, 0, len(c.systems))
	for name := range c.systems {
		names = append(names, name)
	}
	return names, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{systems: map[string][]*model.CelestialObjectDescriptor{
		"sol": {
			{ID: "sol", Name: "Sol", Classification: model.ClassStar,
				Properties: model.PhysicalProperties{RadiusKm: 1.2}},
			{ID: "earth", Name: "Earth", Classification: model.ClassPlanet,
				Properties: model.PhysicalProperties{RadiusKm: 1.8},
				Orbit:      &model.OrbitElements{Parent: "sol", SemiMajorAxisAU: 1.0}},
		},
		"stanton": {
			{ID: "stanton", Name: "Stanton", Classification: model.ClassStar,
				Properties: model.PhysicalProperties{RadiusKm: 1.1}},
		},
	}}
}

func TestLoadSystemPopulatesSizing(t *testing.T) {
	v := NewViewer(nil, testCatalog(), core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.LoadSystem(context.Background(), "sol"); err != nil {
		t.Fatalf("LoadSystem: %v", err)
	}

	if got := v.SystemID(); got != "sol" {
		t.Fatalf("SystemID = %q, want sol", got)
	}
	if got := v.GetObjectSizing("earth"); got == 1.0 {
		t.Fatalf("GetObjectSizing(earth) = %v, want computed visual radius", got)
	}
	if got := v.GetObjectSizing("ghost"); got != 1.0 {
		t.Fatalf("GetObjectSizing(unknown) = %v, want default 1.0", got)
	}
}

func TestLoadSystemFailureKeepsOldState(t *testing.T) {
	catalog := testCatalog()
	v := NewViewer(nil, catalog, core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.LoadSystem(context.Background(), "sol"); err != nil {
		t.Fatalf("LoadSystem: %v", err)
	}
	sizing := v.GetObjectSizing("earth")

	catalog.fail = true
	if err := v.LoadSystem(context.Background(), "stanton"); err == nil {
		t.Fatal("expected error from failing catalog")
	}

	if got := v.SystemID(); got != "sol" {
		t.Fatalf("SystemID after failed load = %q, want sol", got)
	}
	if got := v.GetObjectSizing("earth"); got != sizing {
		t.Fatalf("sizing after failed load = %v, want %v (old mechanics stay valid)", got, sizing)
	}
}

func TestLoadSystemCancelledMidSwitchKeepsOldSession(t *testing.T) {
	// The calculation fails after the catalog read; the session must stay on
	// the old system with its selection and positions untouched.
	v := NewViewer(nil, testCatalog(), core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.LoadSystem(context.Background(), "sol"); err != nil {
		t.Fatalf("LoadSystem: %v", err)
	}
	v.FocusObject("earth", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.LoadSystem(ctx, "stanton"); err == nil {
		t.Fatal("expected error from cancelled context")
	}

	if got := v.SystemID(); got != "sol" {
		t.Fatalf("SystemID after cancelled switch = %q, want sol", got)
	}
	if got := v.Selection.State().SelectedObjectID; got != "earth" {
		t.Fatalf("selection after cancelled switch = %q, want earth", got)
	}
	if _, ok := v.Positions.WorldPositionOf("earth"); !ok {
		t.Fatal("old system's positions must survive a cancelled switch")
	}
}

func TestSystemSwitchResetsSelectionAndPositions(t *testing.T) {
	v := NewViewer(nil, testCatalog(), core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.LoadSystem(context.Background(), "sol"); err != nil {
		t.Fatalf("LoadSystem sol: %v", err)
	}

	v.FocusObject("earth", false)
	if got := v.Selection.State().SelectedObjectID; got != "earth" {
		t.Fatalf("SelectedObjectID = %q, want earth", got)
	}

	if err := v.LoadSystem(context.Background(), "stanton"); err != nil {
		t.Fatalf("LoadSystem stanton: %v", err)
	}
	if got := v.Selection.State().SelectedObjectID; got != "" {
		t.Fatalf("selection after system switch = %q, want cleared", got)
	}
	if _, ok := v.Positions.WorldPositionOf("earth"); ok {
		t.Fatal("old system's positions must be cleared on switch")
	}
	if got := v.GetObjectSizing("earth"); got != 1.0 {
		t.Fatalf("GetObjectSizing(earth) after switch = %v, want default 1.0", got)
	}
}

func TestSetModeRecomputesMechanics(t *testing.T) {
	v := NewViewer(nil, testCatalog(), core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.LoadSystem(context.Background(), "sol"); err != nil {
		t.Fatalf("LoadSystem: %v", err)
	}
	explorational := v.GetObjectSizing("earth")

	if err := v.SetMode(context.Background(), viewmode.ModeProfile); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if got := v.Mode(); got != viewmode.ModeProfile {
		t.Fatalf("Mode = %q, want profile", got)
	}
	if got := v.GetObjectSizing("earth"); got == explorational {
		t.Fatalf("sizing unchanged across modes: %v (profile flattens object scales)", got)
	}
}

func TestSetModeUnknownFallsBack(t *testing.T) {
	v := NewViewer(nil, testCatalog(), core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.SetMode(context.Background(), "cinematic"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if got := v.Mode(); got != viewmode.ModeExplorational {
		t.Fatalf("Mode = %q, want explorational fallback", got)
	}
}

func TestFocusObjectRecordsMetadataAndFrames(t *testing.T) {
	v := NewViewer(nil, testCatalog(), core.NewMechanicsPipeline(nil, nil), newTestClock())
	if err := v.LoadSystem(context.Background(), "sol"); err != nil {
		t.Fatalf("LoadSystem: %v", err)
	}

	v.FocusObject("earth", false)
	st := v.Selection.State()
	if st.FocusedObjectName != "Earth" {
		t.Fatalf("FocusedObjectName = %q, want Earth", st.FocusedObjectName)
	}
	if st.FocusedVisualSize == nil {
		t.Fatal("FocusedVisualSize not recorded")
	}
	if *st.FocusedVisualSize != v.GetObjectSizing("earth") {
		t.Fatalf("FocusedVisualSize = %v, want %v", *st.FocusedVisualSize, v.GetObjectSizing("earth"))
	}
}
