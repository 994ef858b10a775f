package core

import (
	"strings"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

// parentMatches reports whether an orbit's parent reference points at the
// given descriptor. Upstream catalogs reference parents by id or by name,
// case-insensitively.
func parentMatches(ref string, d *model.CelestialObjectDescriptor) bool {
	if ref == "" || d == nil {
		return false
	}
	return strings.EqualFold(ref, d.ID) || strings.EqualFold(ref, d.Name)
}

// findDescriptor locates a descriptor by id or name, case-insensitively.
func findDescriptor(objects []*model.CelestialObjectDescriptor, id string) *model.CelestialObjectDescriptor {
	for _, d := range objects {
		if d == nil {
			continue
		}
		if strings.EqualFold(d.ID, id) || strings.EqualFold(d.Name, id) {
			return d
		}
	}
	return nil
}

// ChildrenOf returns every object whose orbit parent is the object with the
// given id. Objects with malformed or missing orbit data are never children.
// The scan is linear; systems are tens to low hundreds of objects.
func ChildrenOf(objects []*model.CelestialObjectDescriptor, id string) []*model.CelestialObjectDescriptor {
	target := findDescriptor(objects, id)
	if target == nil {
		return nil
	}
	var children []*model.CelestialObjectDescriptor
	for _, d := range objects {
		if d == nil || d.Orbit == nil || d == target {
			continue
		}
		if parentMatches(d.Orbit.Parent, target) {
			children = append(children, d)
		}
	}
	return children
}

// ParentOf returns the parent of the object with the given id, or nil when
// the object is the system primary, unknown, or carries no orbit data.
func ParentOf(objects []*model.CelestialObjectDescriptor, id string) *model.CelestialObjectDescriptor {
	d := findDescriptor(objects, id)
	if d == nil || d.Orbit == nil || d.Orbit.Parent == "" {
		return nil
	}
	return findDescriptor(objects, d.Orbit.Parent)
}
