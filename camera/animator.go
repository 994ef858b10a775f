package camera

import (
	"sync"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

// AnimState is the camera transition state.
type AnimState int

const (
	StateIdle AnimState = iota
	StateAnimating
	StateFramed
)

// Animator interpolates the camera from its current position to a framing
// target. It runs on a per-frame tick: the owner calls Step with the frame
// delta. A new focus request arriving mid-animation cancels the current
// interpolation and restarts from the current interpolated position; the
// latest request always wins and nothing is queued.
type Animator struct {
	mu sync.Mutex

	state    AnimState
	position Vector3
	lookAt   Vector3

	fromPosition Vector3
	fromLookAt   Vector3
	target       FramingTarget
	duration     time.Duration
	elapsed      time.Duration
	ease         EasingFunc
	onComplete   func()
}

// NewAnimator constructs an idle animator with the camera at the given
// starting position.
func NewAnimator(position, lookAt Vector3) *Animator {
	return &Animator{
		state:    StateIdle,
		position: position,
		lookAt:   lookAt,
	}
}

// State returns the current transition state.
func (a *Animator) State() AnimState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Position returns the current interpolated camera position and look-at.
func (a *Animator) Position() (Vector3, Vector3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position, a.lookAt
}

// FocusOn starts a transition to the target using the mode's animation
// config. An in-flight transition is cancelled immediately: its completion
// callback never fires and the new interpolation starts from the current
// interpolated position.
func (a *Animator) FocusOn(target FramingTarget, anim viewmode.AnimationConfig, birdsEye bool, onComplete func()) {
	duration := anim.FocusDuration
	if birdsEye {
		duration = anim.BirdsEyeDuration
	}

	a.mu.Lock()
	a.fromPosition = a.position
	a.fromLookAt = a.lookAt
	a.target = target
	a.duration = duration
	a.elapsed = 0
	a.ease = easingFor(anim.Easing)
	a.onComplete = onComplete

	if duration <= 0 {
		a.finishLocked()
		done := a.onComplete
		a.onComplete = nil
		a.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}
	a.state = StateAnimating
	a.mu.Unlock()
}

// Step advances the animation by the frame delta. It is a no-op unless a
// transition is in flight. The completion callback fires exactly once, after
// the camera reaches the target.
func (a *Animator) Step(dt time.Duration) {
	a.mu.Lock()
	if a.state != StateAnimating {
		a.mu.Unlock()
		return
	}

	a.elapsed += dt
	if a.elapsed >= a.duration {
		a.finishLocked()
		done := a.onComplete
		a.onComplete = nil
		a.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}

	t := float32(a.elapsed.Seconds() / a.duration.Seconds())
	eased := a.ease(t)
	a.position = a.fromPosition.Lerp(a.target.CameraPosition, eased)
	a.lookAt = a.fromLookAt.Lerp(a.target.LookAt, eased)
	a.mu.Unlock()
}

// finishLocked snaps the camera to the target and enters Framed. Caller
// holds the mutex and is responsible for firing the completion callback.
func (a *Animator) finishLocked() {
	a.position = a.target.CameraPosition
	a.lookAt = a.target.LookAt
	a.state = StateFramed
}
