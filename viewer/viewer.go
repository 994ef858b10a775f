package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/davidwyly/chart-citizen-sub001/camera"
	"github.com/davidwyly/chart-citizen-sub001/core"
	"github.com/davidwyly/chart-citizen-sub001/internal/logging"
	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/timectrl"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

// Catalog is the external loader boundary: it owns descriptor data and file
// formats; the viewer only reads through it.
type Catalog interface {
	ListObjects(ctx context.Context, systemID string) ([]*model.CelestialObjectDescriptor, error)
	AvailableSystems(ctx context.Context, mode string) ([]string, error)
}

// ErrNoSystem is returned by operations that need a loaded system.
var ErrNoSystem = errors.New("no system loaded")

// Viewer is one viewer session: the active system, view mode, mechanics
// results, world positions, camera animator, and selection state. It is the
// top-level controller the rendering and UI layers talk to.
type Viewer struct {
	SessionID string

	mu sync.Mutex

	log      logging.Logger
	catalog  Catalog
	pipeline *core.MechanicsPipeline
	clock    timectrl.SimClock

	Positions *core.PositionIndex
	Selection *SelectionMachine
	Animator  *camera.Animator

	systemID    string
	mode        string
	objects     []*model.CelestialObjectDescriptor
	mechanics   core.MechanicsResult
	ephemerides []core.Ephemeris
}

// NewViewer constructs a session in explorational mode with nothing loaded.
func NewViewer(log logging.Logger, catalog Catalog, pipeline *core.MechanicsPipeline, clock timectrl.SimClock) *Viewer {
	if log == nil {
		log = logging.Noop()
	}
	return &Viewer{
		SessionID: uuid.NewString(),
		log:       log,
		catalog:   catalog,
		pipeline:  pipeline,
		clock:     clock,
		Positions: core.NewPositionIndex(),
		Selection: NewSelectionMachine(clock, 0),
		Animator:  camera.NewAnimator(camera.Vector3{}, camera.Vector3{}),
		mode:      viewmode.ModeExplorational,
	}
}

// LoadSystem switches the session to a new system. The old system's cache is
// invalidated synchronously before the new calculation starts, so stale and
// fresh results can never both be current. Selection and position state are
// reset only once the new mechanics arrive; a failed switch leaves the whole
// old session intact.
func (v *Viewer) LoadSystem(ctx context.Context, systemID string) error {
	ctx, span := otel.Tracer("viewer").Start(ctx, "Viewer.LoadSystem")
	defer span.End()
	span.SetAttributes(attribute.String("system_id", systemID))

	objects, err := v.catalog.ListObjects(ctx, systemID)
	if err != nil {
		return fmt.Errorf("load system %q: %w", systemID, err)
	}

	v.mu.Lock()
	oldSystem := v.systemID
	mode := v.mode
	v.mu.Unlock()

	if oldSystem != "" {
		v.pipeline.Invalidate(oldSystem)
	}

	mechanics, err := v.pipeline.Calculate(ctx, systemID, objects, mode)
	if err != nil {
		if errors.Is(err, core.ErrSuperseded) {
			return nil
		}
		return fmt.Errorf("mechanics for system %q: %w", systemID, err)
	}

	v.Selection.SystemChanged()
	v.Positions.Clear()
	v.installSystem(systemID, objects, mechanics)
	v.log.Info(ctx, "system loaded",
		logging.String("system_id", systemID),
		logging.Int("objects", len(objects)))
	return nil
}

// SetMode switches the active view mode and recomputes mechanics for the
// current system.
func (v *Viewer) SetMode(ctx context.Context, mode string) error {
	v.mu.Lock()
	systemID := v.systemID
	objects := v.objects
	v.mode = viewmode.Get(mode).Name
	mode = v.mode
	v.mu.Unlock()

	if systemID == "" {
		return nil
	}
	mechanics, err := v.pipeline.Calculate(ctx, systemID, objects, mode)
	if err != nil {
		if errors.Is(err, core.ErrSuperseded) {
			return nil
		}
		return fmt.Errorf("mechanics for mode %q: %w", mode, err)
	}
	v.installSystem(systemID, objects, mechanics)
	return nil
}

// installSystem swaps in the new system state and rebuilds ephemerides.
func (v *Viewer) installSystem(systemID string, objects []*model.CelestialObjectDescriptor, mechanics core.MechanicsResult) {
	epoch := time.Now().UTC()
	if v.clock != nil {
		epoch = v.clock.Now()
	}

	ephemerides := core.NewSystemEphemerides(objects, mechanics, epoch)

	v.mu.Lock()
	v.systemID = systemID
	v.objects = objects
	v.mechanics = mechanics
	v.ephemerides = ephemerides
	v.mu.Unlock()

	v.UpdatePositions(epoch)
}

// UpdatePositions advances every ephemeris to the given simulation time.
// Catalog order keeps parents ahead of their children.
func (v *Viewer) UpdatePositions(simTime time.Time) {
	v.mu.Lock()
	ephemerides := v.ephemerides
	v.mu.Unlock()
	for _, e := range ephemerides {
		e.UpdatePosition(simTime, v.Positions)
	}
}

// GetObjectSizing returns the visual size for an object id. Unknown ids get
// a default of 1.0; this accessor never fails.
func (v *Viewer) GetObjectSizing(id string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if m, ok := v.mechanics[id]; ok && m.VisualRadius > 0 {
		return m.VisualRadius
	}
	return 1.0
}

// SystemID returns the active system id, empty when nothing is loaded.
func (v *Viewer) SystemID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.systemID
}

// Clock returns the simulation clock driving this session.
func (v *Viewer) Clock() timectrl.SimClock {
	return v.clock
}

// Mode returns the active view mode name.
func (v *Viewer) Mode() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// Objects returns the active system's descriptors.
func (v *Viewer) Objects() []*model.CelestialObjectDescriptor {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.objects
}

// AvailableSystems lists the systems the catalog offers for a mode.
func (v *Viewer) AvailableSystems(ctx context.Context, mode string) ([]string, error) {
	return v.catalog.AvailableSystems(ctx, mode)
}

// ListSystemObjects reads a system's descriptors from the catalog without
// switching the session to it.
func (v *Viewer) ListSystemObjects(ctx context.Context, systemID string) ([]*model.CelestialObjectDescriptor, error) {
	return v.catalog.ListObjects(ctx, systemID)
}

// Frame computes the camera framing target for a focal object under the
// active mode. Like every framing lookup it degrades to defaults for
// unknown ids.
func (v *Viewer) Frame(focalID string, birdsEye bool) camera.FramingTarget {
	v.mu.Lock()
	objects := v.objects
	mode := v.mode
	v.mu.Unlock()

	return camera.Frame(camera.FrameRequest{
		FocalID:         focalID,
		Mode:            mode,
		Objects:         objects,
		WorldPositionOf: v.Positions.WorldPositionOf,
		BirdsEye:        birdsEye,
	}, viewmode.Get(mode))
}

// FocusObject selects an object, starts the camera transition to it, and
// wires the transition's completion into the selection machine so the
// simulation unpauses when the camera arrives.
func (v *Viewer) FocusObject(id string, drillDown bool) {
	v.mu.Lock()
	objects := v.objects
	mode := v.mode
	mech, hasMech := v.mechanics[id]
	v.mu.Unlock()

	descriptor := findByID(objects, id)
	name := id
	if descriptor != nil {
		name = descriptor.Name
	}

	v.Selection.Select(id, descriptor, name, drillDown)
	if hasMech {
		size := mech.VisualRadius
		details := FocusDetails{VisualSize: &size}
		if descriptor != nil {
			radius := descriptor.Properties.RadiusKm
			mass := descriptor.Properties.MassKg
			details.Radius = &radius
			details.Mass = &mass
			if descriptor.HasOrbit() {
				orbit := mech.OrbitDistance
				details.OrbitRadius = &orbit
			}
		}
		v.Selection.Focus(id, name, details)
	}

	cfg := viewmode.Get(mode)
	target := v.Frame(id, false)
	v.Animator.FocusOn(target, cfg.Camera.Animation, false, v.Selection.AnimationComplete)
}

func findByID(objects []*model.CelestialObjectDescriptor, id string) *model.CelestialObjectDescriptor {
	for _, d := range objects {
		if d != nil && d.ID == id {
			return d
		}
	}
	return nil
}
