package camera

import (
	"testing"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

func testAnim() viewmode.AnimationConfig {
	return viewmode.AnimationConfig{
		FocusDuration:    100 * time.Millisecond,
		BirdsEyeDuration: 200 * time.Millisecond,
		Easing:           viewmode.EaseLinear,
	}
}

func TestAnimatorReachesTargetAndCompletesOnce(t *testing.T) {
	a := NewAnimator(Vector3{}, Vector3{})
	target := FramingTarget{
		CameraPosition: Vector3{X: 10},
		LookAt:         Vector3{X: 5},
	}

	completions := 0
	a.FocusOn(target, testAnim(), false, func() { completions++ })
	if a.State() != StateAnimating {
		t.Fatalf("state = %v, want StateAnimating", a.State())
	}

	for i := 0; i < 12; i++ {
		a.Step(10 * time.Millisecond)
	}

	if a.State() != StateFramed {
		t.Fatalf("state = %v, want StateFramed", a.State())
	}
	pos, look := a.Position()
	if pos != target.CameraPosition || look != target.LookAt {
		t.Fatalf("position = %v/%v, want %v/%v", pos, look, target.CameraPosition, target.LookAt)
	}
	if completions != 1 {
		t.Fatalf("completions = %d, want exactly 1", completions)
	}

	// Extra steps after completion must not re-fire the callback.
	a.Step(10 * time.Millisecond)
	if completions != 1 {
		t.Fatalf("completions after extra step = %d, want 1", completions)
	}
}

func TestAnimatorLatestRequestWins(t *testing.T) {
	a := NewAnimator(Vector3{}, Vector3{})

	firstCompleted := false
	a.FocusOn(FramingTarget{CameraPosition: Vector3{X: 10}}, testAnim(), false, func() { firstCompleted = true })

	// Halfway through, a new focus request arrives.
	a.Step(50 * time.Millisecond)
	midPos, _ := a.Position()
	if midPos.X <= 0 || midPos.X >= 10 {
		t.Fatalf("mid-animation position = %v, want strictly between 0 and 10", midPos)
	}

	secondCompleted := 0
	a.FocusOn(FramingTarget{CameraPosition: Vector3{Z: 4}}, testAnim(), false, func() { secondCompleted++ })

	// The new interpolation starts from the interpolated position, not the
	// original origin.
	a.Step(10 * time.Millisecond)
	pos, _ := a.Position()
	if pos.X >= midPos.X || pos.X <= 0 {
		t.Fatalf("position.X = %v, want between 0 and %v (moving away from cancelled target)", pos.X, midPos.X)
	}

	for i := 0; i < 12; i++ {
		a.Step(10 * time.Millisecond)
	}
	if firstCompleted {
		t.Fatal("cancelled transition must never fire its completion callback")
	}
	if secondCompleted != 1 {
		t.Fatalf("second completions = %d, want 1", secondCompleted)
	}
	pos, _ = a.Position()
	if pos != (Vector3{Z: 4}) {
		t.Fatalf("final position = %v, want {0 0 4}", pos)
	}
}

func TestAnimatorZeroDurationSnapsImmediately(t *testing.T) {
	a := NewAnimator(Vector3{}, Vector3{})
	completed := false
	a.FocusOn(FramingTarget{CameraPosition: Vector3{Y: 2}},
		viewmode.AnimationConfig{FocusDuration: 0}, false, func() { completed = true })

	if a.State() != StateFramed {
		t.Fatalf("state = %v, want StateFramed", a.State())
	}
	if !completed {
		t.Fatal("zero-duration transition must still complete")
	}
	pos, _ := a.Position()
	if pos != (Vector3{Y: 2}) {
		t.Fatalf("position = %v, want {0 2 0}", pos)
	}
}

func TestAnimatorBirdsEyeUsesLongerDuration(t *testing.T) {
	a := NewAnimator(Vector3{}, Vector3{})
	a.FocusOn(FramingTarget{CameraPosition: Vector3{X: 1}}, testAnim(), true, nil)

	// After the focus duration the birds-eye transition is only halfway.
	for i := 0; i < 10; i++ {
		a.Step(10 * time.Millisecond)
	}
	if a.State() != StateAnimating {
		t.Fatalf("state = %v, want still StateAnimating at half of birds-eye duration", a.State())
	}
}

func TestEasingEndpoints(t *testing.T) {
	for name, fn := range map[string]EasingFunc{
		"linear":     Linear,
		"inOutCubic": InOutCubic,
		"outQuart":   OutQuart,
	} {
		if got := fn(0); got != 0 {
			t.Fatalf("%s(0) = %v, want 0", name, got)
		}
		if got := fn(1); got != 1 {
			t.Fatalf("%s(1) = %v, want 1", name, got)
		}
	}
}
