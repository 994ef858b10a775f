package core

import "testing"

func TestVec3Distance(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 2}
	if got := a.DistanceTo(Vec3{}); got != 3 {
		t.Fatalf("DistanceTo = %v, want 3", got)
	}
	if got := a.Norm(); got != 3 {
		t.Fatalf("Norm = %v, want 3", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Fatalf("Clamp(5,0,10) = %v, want 5", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Fatalf("Clamp(-1,0,10) = %v, want 0", got)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Fatalf("Clamp(11,0,10) = %v, want 10", got)
	}
}
