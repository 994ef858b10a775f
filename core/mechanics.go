package core

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/davidwyly/chart-citizen-sub001/internal/logging"
	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

// ErrSuperseded is returned when a newer calculation for the same pipeline
// started before this one finished. The superseded result is never written
// back into the cache; callers must discard it.
var ErrSuperseded = errors.New("mechanics calculation superseded by a newer one")

// ObjectMechanics is one object's entry in a MechanicsResult.
type ObjectMechanics struct {
	VisualRadius  float64
	OrbitDistance float64
}

// MechanicsResult maps object ids to their visual size and orbit distance for
// one (system, mode) pair. Unknown ids are simply absent.
type MechanicsResult map[string]ObjectMechanics

// PipelineMetrics receives pipeline cache and calculation events. The
// observability layer implements it; a nil recorder disables reporting.
type PipelineMetrics interface {
	CacheHit()
	CacheMiss()
	StaleDrop()
	CalculationDone(mode string, objects int)
}

type mechanicsKey struct {
	systemID string
	mode     string
}

// MechanicsPipeline computes visual-size/position maps for whole systems.
// Results are memoized per (systemID, mode). Every Calculate call is tagged
// with a monotonically increasing generation; a result whose generation is no
// longer the latest is dropped on arrival so a slow calculation for a
// previously active system can never corrupt current state.
type MechanicsPipeline struct {
	mu         sync.Mutex
	cache      map[mechanicsKey]MechanicsResult
	generation uint64

	log     logging.Logger
	metrics PipelineMetrics
}

// NewMechanicsPipeline constructs an empty pipeline. Both arguments may be
// nil.
func NewMechanicsPipeline(log logging.Logger, metrics PipelineMetrics) *MechanicsPipeline {
	if log == nil {
		log = logging.Noop()
	}
	return &MechanicsPipeline{
		cache:   make(map[mechanicsKey]MechanicsResult),
		log:     log,
		metrics: metrics,
	}
}

// Calculate resolves visual magnitudes for every object in the system under
// the given mode. Cached results are returned as-is. The context cancels the
// calculation cooperatively between objects.
func (p *MechanicsPipeline) Calculate(ctx context.Context, systemID string, objects []*model.CelestialObjectDescriptor, mode string) (MechanicsResult, error) {
	ctx, span := otel.Tracer("core.mechanics").Start(ctx, "MechanicsPipeline.Calculate")
	defer span.End()
	span.SetAttributes(
		attribute.String("system_id", systemID),
		attribute.String("view_mode", mode),
		attribute.Int("objects", len(objects)),
	)

	key := mechanicsKey{systemID: systemID, mode: mode}

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok {
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.CacheHit()
		}
		return cloneMechanics(cached), nil
	}
	p.generation++
	gen := p.generation
	p.mu.Unlock()
	if p.metrics != nil {
		p.metrics.CacheMiss()
	}

	result, err := computeMechanics(ctx, objects, viewmode.Get(mode))
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, key, gen, result)
}

// commit writes a finished calculation back into the cache, unless a newer
// generation has started in the meantime; stale results are dropped and
// reported as ErrSuperseded.
func (p *MechanicsPipeline) commit(ctx context.Context, key mechanicsKey, gen uint64, result MechanicsResult) (MechanicsResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		if p.metrics != nil {
			p.metrics.StaleDrop()
		}
		p.log.Debug(ctx, "dropping stale mechanics result",
			logging.String("system_id", key.systemID),
			logging.String("view_mode", key.mode))
		return nil, ErrSuperseded
	}

	p.cache[key] = cloneMechanics(result)
	if p.metrics != nil {
		p.metrics.CalculationDone(key.mode, len(result))
	}
	return result, nil
}

// Invalidate drops cached results for one system, for every mode. Callers
// must invalidate synchronously when the active system changes, before
// kicking off the next calculation.
func (p *MechanicsPipeline) Invalidate(systemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.cache {
		if key.systemID == systemID {
			delete(p.cache, key)
		}
	}
	p.generation++
}

// InvalidateAll clears the whole cache.
func (p *MechanicsPipeline) InvalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[mechanicsKey]MechanicsResult)
	p.generation++
}

// computeMechanics does the per-object resolution. For diagrammatic modes the
// nth child of a parent (in traversal order) is placed at
// baseSpacing*(1+n*spacingMultiplier) from the parent instead of its scaled
// real orbit, so diagrams stay evenly spaced.
func computeMechanics(ctx context.Context, objects []*model.CelestialObjectDescriptor, cfg viewmode.Config) (MechanicsResult, error) {
	result := make(MechanicsResult, len(objects))

	// Per-parent child ordinals, by traversal order.
	childOrdinal := make(map[string]int)

	for _, d := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d == nil || d.ID == "" {
			continue
		}

		orbitRadius := 0.0
		if d.HasOrbit() {
			orbitRadius = d.Orbit.SemiMajorAxisAU
		}

		props := ResolveDualProperties(ResolveInput{
			Name:            d.Name,
			Classification:  d.Classification,
			RealRadiusKm:    d.Properties.RadiusKm,
			RealOrbitRadius: orbitRadius,
			RealMassKg:      d.Properties.MassKg,
		}, cfg)

		orbitDistance := props.VisualOrbitRadius
		if cfg.Diagrammatic && d.HasOrbit() {
			// Siblings may reference the same parent by id or by display
			// name; the ordinal sequence must be keyed by the resolved
			// parent so mixed references share one sequence.
			parent := findDescriptor(objects, d.Orbit.Parent)
			parentKey := normalizeRef(d.Orbit.Parent)
			if parent != nil {
				parentKey = normalizeRef(parent.ID)
			}
			n := childOrdinal[parentKey]
			childOrdinal[parentKey] = n + 1

			orbitDistance = cfg.Spacing.BaseSpacing * (1 + float64(n)*cfg.Spacing.SpacingMultiplier)
			if clearance := descriptorClearance(parent, cfg); orbitDistance < clearance {
				orbitDistance = clearance
			}
		}

		if !wellFormed(props.VisualRadius) || !wellFormed(orbitDistance) {
			// A malformed value must never reach the renderer; the whole
			// map degrades to empty rather than shipping partial garbage.
			return MechanicsResult{}, nil
		}

		result[d.ID] = ObjectMechanics{
			VisualRadius:  props.VisualRadius,
			OrbitDistance: orbitDistance,
		}
	}
	return result, nil
}

// descriptorClearance returns the minimum spacing distance a child must keep
// from its parent's surface in diagrammatic modes.
func descriptorClearance(parent *model.CelestialObjectDescriptor, cfg viewmode.Config) float64 {
	if parent == nil {
		return 0
	}
	props := ResolveDualProperties(ResolveInput{
		Name:           parent.Name,
		Classification: parent.Classification,
		RealRadiusKm:   parent.Properties.RadiusKm,
		RealMassKg:     parent.Properties.MassKg,
	}, cfg)
	return props.VisualRadius * cfg.SafetyFactor
}

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

func wellFormed(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}

func cloneMechanics(in MechanicsResult) MechanicsResult {
	out := make(MechanicsResult, len(in))
	for id, m := range in {
		out[id] = m
	}
	return out
}
