package math

import (
	"testing"
)

const tolerance = 1e-5

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float32{0, 45, 90, 180, 359.5} {
		got := RadToDeg(DegToRad(deg))
		// Relative bound: float32 carries about seven digits, so a fixed
		// absolute tolerance is too tight near 360.
		bound := float32(tolerance)
		if deg > 1 {
			bound = deg * tolerance
		}
		if diff := got - deg; diff > bound || diff < -bound {
			t.Errorf("RadToDeg(DegToRad(%v)) = %v", deg, got)
		}
	}
}

func TestEulerXRotatesYToZ(t *testing.T) {
	rx := NewMat4EulerX(DegToRad(90))
	got := NewVec3(0, 1, 0).Transform(rx)
	want := NewVec3(0, 0, 1)
	if !got.Compare(want, tolerance) {
		t.Errorf("EulerX(90) * (0,1,0) = %+v, want %+v", got, want)
	}
}

func TestEulerYRotatesZToX(t *testing.T) {
	ry := NewMat4EulerY(DegToRad(90))
	got := NewVec3(0, 0, 1).Transform(ry)
	want := NewVec3(1, 0, 0)
	if !got.Compare(want, tolerance) {
		t.Errorf("EulerY(90) * (0,0,1) = %+v, want %+v", got, want)
	}
}

func TestEulerZRotatesXToY(t *testing.T) {
	rz := NewMat4EulerZ(DegToRad(90))
	got := NewVec3(1, 0, 0).Transform(rz)
	want := NewVec3(0, 1, 0)
	if !got.Compare(want, tolerance) {
		t.Errorf("EulerZ(90) * (1,0,0) = %+v, want %+v", got, want)
	}
}

// Multiplication chains apply left to right on points: R.Mul(T) rotates
// first, then translates. Verify with a pair where the order is observable.
func TestMulChainOrder(t *testing.T) {
	tr := NewMat4Translation(NewVec3(1, 2, 3))
	rx := NewMat4EulerX(DegToRad(90))

	// Rotate the point, then translate the result.
	rotateFirst := rx.Mul(tr)
	got := NewVec3(0, 1, 0).Transform(rotateFirst)
	want := NewVec3(1, 2, 4)
	if !got.Compare(want, tolerance) {
		t.Errorf("rotate-then-translate: got %+v, want %+v", got, want)
	}

	// Reversed composition must land somewhere else.
	translateFirst := tr.Mul(rx)
	other := NewVec3(0, 1, 0).Transform(translateFirst)
	if other.Compare(want, tolerance) {
		t.Errorf("swapped composition unexpectedly matched %+v", want)
	}
}

func TestMat4IdentityMul(t *testing.T) {
	id := NewMat4Identity()
	m := NewMat4Translation(NewVec3(4, -5, 6)).Mul(NewMat4EulerZ(0.7))
	if !m.Mul(id).Compare(m, tolerance) || !id.Mul(m).Compare(m, tolerance) {
		t.Error("identity multiplication changed the matrix")
	}
}

func TestLookAtKeepsTargetOnViewAxis(t *testing.T) {
	position := NewVec3(0, 0, -5)
	target := NewVec3Zero()
	view := NewMat4LookAt(position, target, NewVec3(0, 1, 0))

	viewTarget := target.Transform(view)
	if viewTarget.X > tolerance || viewTarget.X < -tolerance ||
		viewTarget.Y > tolerance || viewTarget.Y < -tolerance {
		t.Errorf("look-at target off the view axis: %+v", viewTarget)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 {
		t.Error("Clamp(5,0,3) != 3")
	}
	if Clamp(-1.5, 0.0, 3.0) != 0.0 {
		t.Error("Clamp(-1.5,0,3) != 0")
	}
	if Clamp(2, 0, 3) != 2 {
		t.Error("Clamp(2,0,3) != 2")
	}
}
