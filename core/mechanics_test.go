package core

import (
	"context"
	"errors"
	"testing"

	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

func planetSystem() []*model.CelestialObjectDescriptor {
	return []*model.CelestialObjectDescriptor{
		{
			ID: "sol", Name: "Sol", Classification: model.ClassStar,
			Properties: model.PhysicalProperties{RadiusKm: 0.9, MassKg: 2e30},
		},
		{
			ID: "mercury", Name: "Mercury", Classification: model.ClassPlanet,
			Properties: model.PhysicalProperties{RadiusKm: 0.4},
			Orbit:      &model.OrbitElements{Parent: "sol", SemiMajorAxisAU: 0.39},
		},
		{
			ID: "venus", Name: "Venus", Classification: model.ClassPlanet,
			Properties: model.PhysicalProperties{RadiusKm: 0.9},
			Orbit:      &model.OrbitElements{Parent: "sol", SemiMajorAxisAU: 0.72},
		},
		{
			ID: "earth", Name: "Earth", Classification: model.ClassPlanet,
			Properties: model.PhysicalProperties{RadiusKm: 1.0},
			Orbit:      &model.OrbitElements{Parent: "Sol", SemiMajorAxisAU: 1.0},
		},
	}
}

func TestCalculateEquidistantSpacingIsBounded(t *testing.T) {
	// In a diagrammatic mode, K children of one parent must span well under
	// a small constant multiple of K, independent of real orbit radii.
	p := NewMechanicsPipeline(nil, nil)
	objects := planetSystem()

	result, err := p.Calculate(context.Background(), "sol-system", objects, viewmode.ModeProfile)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	cfg := viewmode.Get(viewmode.ModeProfile)
	want := []struct {
		id       string
		distance float64
	}{
		{"mercury", cfg.Spacing.BaseSpacing},
		{"venus", cfg.Spacing.BaseSpacing * (1 + cfg.Spacing.SpacingMultiplier)},
		{"earth", cfg.Spacing.BaseSpacing * (1 + 2*cfg.Spacing.SpacingMultiplier)},
	}
	for _, w := range want {
		got, ok := result[w.id]
		if !ok {
			t.Fatalf("result missing %q", w.id)
		}
		if got.OrbitDistance != w.distance {
			t.Fatalf("%s: OrbitDistance = %v, want %v", w.id, got.OrbitDistance, w.distance)
		}
		if got.OrbitDistance >= 5 {
			t.Fatalf("%s: OrbitDistance %v exceeds diagram bound", w.id, got.OrbitDistance)
		}
	}
}

func TestCalculateSpacingMergesIDAndNameParentRefs(t *testing.T) {
	// One sibling references the parent by id, the other by display name.
	// Both belong to the same ordinal sequence and must land on distinct
	// rings.
	p := NewMechanicsPipeline(nil, nil)
	objects := []*model.CelestialObjectDescriptor{
		{
			ID: "sol-star", Name: "Sol", Classification: model.ClassStar,
			Properties: model.PhysicalProperties{RadiusKm: 0.9, MassKg: 2e30},
		},
		{
			ID: "mercury", Name: "Mercury", Classification: model.ClassPlanet,
			Properties: model.PhysicalProperties{RadiusKm: 0.4},
			Orbit:      &model.OrbitElements{Parent: "sol-star", SemiMajorAxisAU: 0.39},
		},
		{
			ID: "venus", Name: "Venus", Classification: model.ClassPlanet,
			Properties: model.PhysicalProperties{RadiusKm: 0.9},
			Orbit:      &model.OrbitElements{Parent: "Sol", SemiMajorAxisAU: 0.72},
		},
	}

	result, err := p.Calculate(context.Background(), "sol-system", objects, viewmode.ModeProfile)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	cfg := viewmode.Get(viewmode.ModeProfile)
	if got, want := result["mercury"].OrbitDistance, cfg.Spacing.BaseSpacing; got != want {
		t.Fatalf("mercury OrbitDistance = %v, want %v", got, want)
	}
	if got, want := result["venus"].OrbitDistance, cfg.Spacing.BaseSpacing*(1+cfg.Spacing.SpacingMultiplier); got != want {
		t.Fatalf("venus OrbitDistance = %v, want %v (second slot, not a repeat of the first)", got, want)
	}
	if result["mercury"].OrbitDistance == result["venus"].OrbitDistance {
		t.Fatal("siblings of one parent collapsed onto the same ring")
	}
}

func TestCalculateRealOrbitScalingInExplorational(t *testing.T) {
	p := NewMechanicsPipeline(nil, nil)
	result, err := p.Calculate(context.Background(), "sol-system", planetSystem(), viewmode.ModeExplorational)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	cfg := viewmode.Get(viewmode.ModeExplorational)
	earth := result["earth"]
	if want := 1.0 * cfg.OrbitScalingFactor; earth.OrbitDistance != want {
		t.Fatalf("earth OrbitDistance = %v, want %v", earth.OrbitDistance, want)
	}
	if sol := result["sol"]; sol.OrbitDistance != 0 {
		t.Fatalf("sol OrbitDistance = %v, want 0 (primary has no orbit)", sol.OrbitDistance)
	}
}

func TestCalculateMemoizesPerSystemAndMode(t *testing.T) {
	metrics := &countingMetrics{}
	p := NewMechanicsPipeline(nil, metrics)
	objects := planetSystem()

	if _, err := p.Calculate(context.Background(), "sol-system", objects, viewmode.ModeExplorational); err != nil {
		t.Fatalf("first Calculate: %v", err)
	}
	if _, err := p.Calculate(context.Background(), "sol-system", objects, viewmode.ModeExplorational); err != nil {
		t.Fatalf("second Calculate: %v", err)
	}
	if metrics.hits != 1 || metrics.misses != 1 {
		t.Fatalf("hits/misses = %d/%d, want 1/1", metrics.hits, metrics.misses)
	}

	// A different mode for the same system is a separate cache entry.
	if _, err := p.Calculate(context.Background(), "sol-system", objects, viewmode.ModeProfile); err != nil {
		t.Fatalf("profile Calculate: %v", err)
	}
	if metrics.misses != 2 {
		t.Fatalf("misses = %d, want 2 after new mode", metrics.misses)
	}
}

func TestInvalidateDropsOldSystemOnly(t *testing.T) {
	metrics := &countingMetrics{}
	p := NewMechanicsPipeline(nil, metrics)

	if _, err := p.Calculate(context.Background(), "sol-system", planetSystem(), viewmode.ModeExplorational); err != nil {
		t.Fatalf("Calculate sol: %v", err)
	}
	other := []*model.CelestialObjectDescriptor{{
		ID: "stanton", Name: "Stanton", Classification: model.ClassStar,
		Properties: model.PhysicalProperties{RadiusKm: 1.1},
	}}
	if _, err := p.Calculate(context.Background(), "stanton-system", other, viewmode.ModeExplorational); err != nil {
		t.Fatalf("Calculate stanton: %v", err)
	}

	p.Invalidate("sol-system")

	if _, err := p.Calculate(context.Background(), "sol-system", planetSystem(), viewmode.ModeExplorational); err != nil {
		t.Fatalf("Calculate sol after invalidate: %v", err)
	}
	if _, err := p.Calculate(context.Background(), "stanton-system", other, viewmode.ModeExplorational); err != nil {
		t.Fatalf("Calculate stanton after invalidate: %v", err)
	}
	// sol misses twice (initial + post-invalidate), stanton once then hits.
	if metrics.misses != 3 {
		t.Fatalf("misses = %d, want 3", metrics.misses)
	}
	if metrics.hits != 1 {
		t.Fatalf("hits = %d, want 1 (stanton entry must survive sol invalidation)", metrics.hits)
	}
}

func TestCommitDropsSupersededResult(t *testing.T) {
	metrics := &countingMetrics{}
	p := NewMechanicsPipeline(nil, metrics)
	objects := planetSystem()

	// An older calculation finishes after a newer one has started: the
	// generation gate must drop it and never write it into the cache.
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	result, err := computeMechanics(context.Background(), objects, viewmode.Get(viewmode.ModeExplorational))
	if err != nil {
		t.Fatalf("computeMechanics: %v", err)
	}

	p.Invalidate("sol-system") // bumps generation past gen

	key := mechanicsKey{systemID: "sol-system", mode: viewmode.ModeExplorational}
	if _, err := p.commit(context.Background(), key, gen, result); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("commit with stale generation: err = %v, want ErrSuperseded", err)
	}
	if metrics.staleDrops != 1 {
		t.Fatalf("staleDrops = %d, want 1", metrics.staleDrops)
	}
	p.mu.Lock()
	_, cached := p.cache[key]
	p.mu.Unlock()
	if cached {
		t.Fatal("stale result must not be written back into the cache")
	}
}

func TestCalculateCancelledContext(t *testing.T) {
	p := NewMechanicsPipeline(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Calculate(ctx, "sol-system", planetSystem(), viewmode.ModeExplorational); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestCalculateSkipsMalformedEntries(t *testing.T) {
	p := NewMechanicsPipeline(nil, nil)
	objects := []*model.CelestialObjectDescriptor{
		nil,
		{ID: "", Name: "anonymous"},
		{
			ID: "ok", Name: "OK", Classification: model.ClassPlanet,
			Properties: model.PhysicalProperties{RadiusKm: 1},
		},
	}
	result, err := p.Calculate(context.Background(), "s", objects, viewmode.ModeExplorational)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1 (nil and id-less entries skipped)", len(result))
	}
	if _, ok := result["ok"]; !ok {
		t.Fatal("result missing well-formed entry")
	}
}

type countingMetrics struct {
	hits, misses, staleDrops, calcs int
}

func (m *countingMetrics) CacheHit()  { m.hits++ }
func (m *countingMetrics) CacheMiss() { m.misses++ }
func (m *countingMetrics) StaleDrop() { m.staleDrops++ }

func (m *countingMetrics) CalculationDone(mode string, objects int) {
	m.calcs++
}
