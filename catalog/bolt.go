package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

var systemsBucket = []byte("systems")

// BoltStore persists system catalogs in a bbolt file so a viewer server can
// restart without re-ingesting its source JSON. Values are stored in the
// same JSON shape LoadSystem reads.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) a catalog database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("OpenBoltStore: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(systemsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenBoltStore: create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PutSystem writes or replaces one system.
func (s *BoltStore) PutSystem(sys *System) error {
	if sys == nil || sys.ID == "" {
		return fmt.Errorf("nil or empty system")
	}
	data, err := json.Marshal(encodeSystem(sys))
	if err != nil {
		return fmt.Errorf("PutSystem %q: %w", sys.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(systemsBucket).Put([]byte(sys.ID), data)
	})
}

// GetSystem reads one system, or nil when absent.
func (s *BoltStore) GetSystem(id string) (*System, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(systemsBucket).Get([]byte(id))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var payload systemJSON
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("GetSystem %q: %w", id, err)
	}
	return decodeSystem(&payload), nil
}

// ListObjects returns the descriptors of one stored system.
func (s *BoltStore) ListObjects(ctx context.Context, systemID string) ([]*model.CelestialObjectDescriptor, error) {
	sys, err := s.GetSystem(systemID)
	if err != nil {
		return nil, err
	}
	if sys == nil {
		return nil, fmt.Errorf("system %q not found", systemID)
	}
	return sys.Objects, nil
}

// AvailableSystems lists stored systems offered for a mode, in key order.
func (s *BoltStore) AvailableSystems(ctx context.Context, mode string) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(systemsBucket).ForEach(func(k, v []byte) error {
			var payload systemJSON
			if err := json.Unmarshal(v, &payload); err != nil {
				return fmt.Errorf("corrupt system record %q: %w", string(k), err)
			}
			if systemSupportsMode(decodeSystem(&payload), mode) {
				ids = append(ids, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func encodeSystem(sys *System) *systemJSON {
	out := &systemJSON{
		ID:      sys.ID,
		Name:    sys.Name,
		Modes:   sys.Modes,
		Objects: make([]objectJSON, 0, len(sys.Objects)),
	}
	for _, d := range sys.Objects {
		obj := objectJSON{
			ID:             d.ID,
			Name:           d.Name,
			Classification: d.Classification.String(),
			Properties: propertiesJSON{
				MassKg:         d.Properties.MassKg,
				RadiusKm:       d.Properties.RadiusKm,
				TemperatureK:   d.Properties.TemperatureK,
				LuminositySuns: d.Properties.LuminositySuns,
			},
		}
		if d.Orbit != nil {
			raw, err := json.Marshal(orbitJSON{
				Parent:          d.Orbit.Parent,
				SemiMajorAxisAU: d.Orbit.SemiMajorAxisAU,
				Eccentricity:    d.Orbit.Eccentricity,
				InclinationDeg:  d.Orbit.InclinationDeg,
			})
			if err == nil {
				obj.Orbit = raw
			}
		}
		if d.TLELine1 != "" && d.TLELine2 != "" {
			obj.TLE = []string{d.TLELine1, d.TLELine2}
		}
		out.Objects = append(out.Objects, obj)
	}
	return out
}

func decodeSystem(payload *systemJSON) *System {
	sys := &System{
		ID:      payload.ID,
		Name:    payload.Name,
		Modes:   payload.Modes,
		Objects: make([]*model.CelestialObjectDescriptor, 0, len(payload.Objects)),
	}
	for _, jsObj := range payload.Objects {
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
	return sys
}
