package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

// System is one loaded star system: its identity, the view modes it is
// available in, and its object descriptors in catalog order (primaries
// first, so position updates see parents before children).
type System struct {
	ID      string
	Name    string
	Modes   []string
	Objects []*model.CelestialObjectDescriptor
}

// internal JSON shapes, unexported so the file format can evolve freely.
type systemJSON struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Modes   []string     `json:"modes"`
	Objects []objectJSON `json:"objects"`
}

type objectJSON struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Classification string          `json:"classification"`
	Properties     propertiesJSON  `json:"properties"`
	Orbit          json.RawMessage `json:"orbit"` // tolerated when malformed
	TLE            []string        `json:"tle"`
}

type propertiesJSON struct {
	MassKg         float64  `json:"mass_kg"`
	RadiusKm       float64  `json:"radius_km"`
	TemperatureK   float64  `json:"temperature_k"`
	LuminositySuns *float64 `json:"luminosity_suns"`
}

type orbitJSON struct {
	Parent          string  `json:"parent"`
	SemiMajorAxisAU float64 `json:"semi_major_axis_au"`
	Eccentricity    float64 `json:"eccentricity"`
	InclinationDeg  float64 `json:"inclination_deg"`
}

// LoadSystem reads one system definition from JSON. It fails only on JSON or
// structural errors (missing ids); a malformed orbit block on an individual
// object is treated as "no orbit data" rather than a fault, because upstream
// catalogs routinely carry junk there.
func LoadSystem(r io.Reader) (*System, error) {
	var payload systemJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadSystem: decode failed: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("LoadSystem: system with empty id")
	}

	sys := &System{
		ID:      payload.ID,
		Name:    payload.Name,
		Modes:   payload.Modes,
		Objects: make([]*model.CelestialObjectDescriptor, 0, len(payload.Objects)),
	}

	for _, jsObj := range payload.Objects {
		if jsObj.ID == "" {
			return nil, fmt.Errorf("LoadSystem: object with empty id in system %q", payload.ID)
		}

		d := &model.CelestialObjectDescriptor{
			ID:             jsObj.ID,
			Name:           jsObj.Name,
			Classification: model.ClassificationFromString(jsObj.Classification),
			Properties: model.PhysicalProperties{
				MassKg:         jsObj.Properties.MassKg,
				RadiusKm:       jsObj.Properties.RadiusKm,
				TemperatureK:   jsObj.Properties.TemperatureK,
				LuminositySuns: jsObj.Properties.LuminositySuns,
			},
			Orbit: parseOrbit(jsObj.Orbit),
		}
		if len(jsObj.TLE) == 2 {
			d.TLELine1 = jsObj.TLE[0]
			d.TLELine2 = jsObj.TLE[1]
		}
		sys.Objects = append(sys.Objects, d)
	}
	return sys, nil
}

// parseOrbit decodes an orbit block, returning nil for absent, non-object,
// or otherwise unusable data.
func parseOrbit(raw json.RawMessage) *model.OrbitElements {
	if len(raw) == 0 {
		return nil
	}
	var o orbitJSON
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	if o.Parent == "" {
		return nil
	}
	return &model.OrbitElements{
		Parent:          o.Parent,
		SemiMajorAxisAU: o.SemiMajorAxisAU,
		Eccentricity:    o.Eccentricity,
		InclinationDeg:  o.InclinationDeg,
	}
}

// MemoryCatalog is a thread-safe in-memory catalog, used by tests and the
// CLI demo. It satisfies the viewer's Catalog boundary.
type MemoryCatalog struct {
	mu      sync.RWMutex
	systems map[string]*System
}

// NewMemoryCatalog constructs an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{systems: make(map[string]*System)}
}

// PutSystem adds or replaces a system.
func (c *MemoryCatalog) PutSystem(sys *System) error {
	if sys == nil || sys.ID == "" {
		return fmt.Errorf("nil or empty system")
	}
	c.mu.Lock()
	c.systems[sys.ID] = sys
	c.mu.Unlock()
	return nil
}

// ListObjects returns the descriptors of one system.
func (c *MemoryCatalog) ListObjects(ctx context.Context, systemID string) ([]*model.CelestialObjectDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sys, ok := c.systems[systemID]
	if !ok {
		return nil, fmt.Errorf("system %q not found", systemID)
	}
	return sys.Objects, nil
}

// AvailableSystems lists systems offered for a mode, sorted by id. Systems
// with no mode list are available everywhere.
func (c *MemoryCatalog) AvailableSystems(ctx context.Context, mode string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []string
	for id, sys := range c.systems {
		if systemSupportsMode(sys, mode) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func systemSupportsMode(sys *System, mode string) bool {
	if len(sys.Modes) == 0 {
		return true
	}
	for _, m := range sys.Modes {
		if strings.EqualFold(m, mode) {
			return true
		}
	}
	return false
}
