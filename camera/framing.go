package camera

import (
	"github.com/chewxy/math32"

	"github.com/davidwyly/chart-citizen-sub001/core"
	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

// PositionLookup resolves an object id to its world position. The rendering
// layer maintains the index behind it; core.PositionIndex.WorldPositionOf
// satisfies it directly.
type PositionLookup func(id string) (core.Vec3, bool)

// FrameRequest describes one framing computation.
type FrameRequest struct {
	FocalID string
	Mode    string

	// Objects is the raw object list of the active system; it drives the
	// parent/child resolution.
	Objects []*model.CelestialObjectDescriptor

	// WorldPositionOf must already resolve orbit holders to the body they
	// carry (see core.PositionIndex); a holder origin coinciding with the
	// parent would otherwise collapse child distances to zero.
	WorldPositionOf PositionLookup

	// BirdsEye selects the overview elevation instead of the default.
	BirdsEye bool

	// BareObject frames just the focal object with no hierarchy at all;
	// the distance is then OptimalViewDistance from the resolver.
	BareObject          bool
	OptimalViewDistance float64
}

// FramingTarget is the computed destination for a camera transition. It is
// transient: recomputed on every focus change, never stored.
type FramingTarget struct {
	FocalCenter     Vector3
	OutermostCenter Vector3
	LayoutMidpoint  Vector3
	Distance        float32
	ElevationAngle  float32
	CameraPosition  Vector3
	LookAt          Vector3
}

// Frame computes the camera destination for a focal object. One code path
// serves every trigger (mode switch, object focus, breadcrumb navigation);
// the distance an object is viewed from must never depend on how the user
// got there.
//
// Frame is total: unknown ids and missing positions degrade to defined
// defaults instead of failing.
func Frame(req FrameRequest, cfg viewmode.Config) FramingTarget {
	lookup := req.WorldPositionOf
	if lookup == nil {
		lookup = func(string) (core.Vec3, bool) { return core.Vec3{}, false }
	}

	focalCenter, _ := lookup(req.FocalID)

	elevation := cfg.Camera.ViewingAngles.DefaultElevation
	if req.BirdsEye {
		elevation = cfg.Camera.ViewingAngles.BirdsEyeElevation
	}

	if req.BareObject {
		distance := req.OptimalViewDistance
		if distance <= 0 {
			distance = cfg.SingleObjectFallbackDistance
		}
		return place(focalCenter, focalCenter, distance, elevation)
	}

	// Frame the focal object together with its children; when it has none,
	// fall back to the parent's context so the object is seen among its
	// siblings.
	frameCenter := focalCenter
	framingSet := core.ChildrenOf(req.Objects, req.FocalID)
	if len(framingSet) == 0 {
		if parent := core.ParentOf(req.Objects, req.FocalID); parent != nil {
			if pos, ok := lookup(parent.ID); ok {
				frameCenter = pos
			}
			framingSet = core.ChildrenOf(req.Objects, parent.ID)
		}
	}

	outermost := frameCenter
	maxDist := 0.0
	for _, child := range framingSet {
		pos, ok := lookup(child.ID)
		if !ok {
			continue
		}
		if d := pos.DistanceTo(frameCenter); d > maxDist {
			maxDist = d
			outermost = pos
		}
	}

	span := frameCenter.DistanceTo(outermost)
	distance := span * cfg.LayoutMultiplier
	if distance < cfg.SingleObjectFallbackDistance {
		distance = cfg.SingleObjectFallbackDistance
	}

	return place(frameCenter, outermost, distance, elevation)
}

// place positions the camera at the configured elevation above the layout
// midpoint, looking back at it. Conversion to render precision happens here;
// the midpoint and offset are computed in camera space.
func place(focalCenter, outermost core.Vec3, distance, elevation float64) FramingTarget {
	focal := FromVec3(focalCenter)
	outer := FromVec3(outermost)
	mid := Midpoint(focal, outer)

	e := float32(elevation)
	d := float32(distance)
	offset := Vector3{
		X: 0,
		Y: d * math32.Sin(e),
		Z: d * math32.Cos(e),
	}

	return FramingTarget{
		FocalCenter:     focal,
		OutermostCenter: outer,
		LayoutMidpoint:  mid,
		Distance:        d,
		ElevationAngle:  e,
		CameraPosition:  mid.Add(offset),
		LookAt:          mid,
	}
}
