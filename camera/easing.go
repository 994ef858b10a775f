package camera

import (
	"github.com/chewxy/math32"

	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

// EasingFunc maps linear progress t in [0, 1] to eased progress.
type EasingFunc func(t float32) float32

// Linear passes progress through unchanged.
func Linear(t float32) float32 { return t }

// InOutCubic accelerates in, decelerates out.
func InOutCubic(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math32.Pow(-2*t+2, 3)/2
}

// OutQuart decelerates hard at the end of the transition.
func OutQuart(t float32) float32 {
	return 1 - math32.Pow(1-t, 4)
}

// easingFor maps a mode config's easing name to its function.
func easingFor(e viewmode.Easing) EasingFunc {
	switch e {
	case viewmode.EaseInOutCubic:
		return InOutCubic
	case viewmode.EaseOutQuart:
		return OutQuart
	default:
		return Linear
	}
}
