package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/blocksim/internal/dynamo"
)

func TestEulerLinear(t *testing.T) {
	integ := NewEuler()

	x := dynamo.NewState(dynamo.Vec3{})
	l := dynamo.Loads{Force: dynamo.Vec3{5, 0, 0}, Mass: 5}

	next, err := integ.Step(x, l, 1)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}

	if next.Position != (dynamo.Vec3{1, 0, 0}) {
		t.Errorf("expected position (1, 0, 0), got %v", next.Position)
	}
	if next.Orientation != dynamo.Identity() {
		t.Errorf("orientation should be unchanged, got %v", next.Orientation)
	}
}

func TestEulerRotation(t *testing.T) {
	integ := NewEuler()

	x := dynamo.NewState(dynamo.Vec3{})
	l := dynamo.Loads{Torque: dynamo.Vec3{0, 0, 2}, Mass: 2}

	next, err := integ.Step(x, l, 0.5)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}

	// (1,0,0,0) + (0,0,0,1)*0.5 normalized
	want := dynamo.Quaternion{W: 1 / math.Sqrt(1.25), Z: 0.5 / math.Sqrt(1.25)}
	if !next.Orientation.ApproxEqual(want, 1e-12) {
		t.Errorf("expected %v, got %v", want, next.Orientation)
	}
}

func TestHalfAngleEuler(t *testing.T) {
	x := dynamo.NewState(dynamo.Vec3{})
	l := dynamo.Loads{Torque: dynamo.Vec3{0, 0, 2}, Mass: 2}

	full, _ := NewEuler().Step(x, l, 0.5)
	half, _ := NewHalfAngleEuler().Step(x, l, 0.5)
	quarter, _ := NewEuler().Step(x, l, 0.25)

	if !half.Orientation.ApproxEqual(quarter.Orientation, 1e-12) {
		t.Errorf("half-angle step should match a half-dt full step: %v vs %v", half.Orientation, quarter.Orientation)
	}
	if full.Orientation.ApproxEqual(half.Orientation, 1e-6) {
		t.Error("rate scale had no effect")
	}
}

func TestEulerUnitNorm(t *testing.T) {
	integ := NewEuler()
	x := dynamo.State{
		Position:    dynamo.Vec3{1, -2, 3},
		Orientation: dynamo.FromQuat(mgl64.QuatRotate(1.1, mgl64.Vec3{1, 1, 0}.Normalize())),
	}
	l := dynamo.Loads{Force: dynamo.Vec3{0.1, 0.2, 0.3}, Torque: dynamo.Vec3{3, -7, 11}, Mass: 1.5}

	for i := 0; i < 500; i++ {
		var err error
		x, err = integ.Step(x, l, 0.05)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if math.Abs(x.Orientation.Magnitude()-1) > 1e-9 {
			t.Fatalf("step %d: |q| = %.15f", i, x.Orientation.Magnitude())
		}
	}
}

func TestEulerZeroLoads(t *testing.T) {
	integ := NewEuler()
	x := dynamo.State{
		Position:    dynamo.Vec3{4, 5, 6},
		Orientation: dynamo.Identity(),
	}

	for _, dt := range []float64{0, 0.01, 1, 100, -3} {
		next, err := integ.Step(x, dynamo.Loads{Mass: 3}, dt)
		if err != nil {
			t.Fatalf("dt=%v: %v", dt, err)
		}
		if next != x {
			t.Errorf("dt=%v: state moved: %v", dt, next)
		}
	}
}

func TestEulerInvalidMass(t *testing.T) {
	_, err := NewEuler().Step(dynamo.NewState(dynamo.Vec3{}), dynamo.Loads{Force: dynamo.Vec3{1, 0, 0}}, 1)
	if !errors.Is(err, dynamo.ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody, got %v", err)
	}
}

func TestEulerDegenerateOrientation(t *testing.T) {
	x := dynamo.State{Orientation: dynamo.Quaternion{}}
	_, err := NewEuler().Step(x, dynamo.Loads{Mass: 1}, 1)
	if !errors.Is(err, dynamo.ErrDegenerateOrientation) {
		t.Errorf("expected ErrDegenerateOrientation, got %v", err)
	}
}

func TestEulerZeroValueRotates(t *testing.T) {
	x := dynamo.NewState(dynamo.Vec3{})
	l := dynamo.Loads{Torque: dynamo.Vec3{0, 0, 2}, Mass: 2}

	var zero Euler
	got, err := zero.Step(x, l, 0.5)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	want, _ := NewEuler().Step(x, l, 0.5)
	if got != want {
		t.Errorf("zero value Euler = %v, want %v", got.Orientation, want.Orientation)
	}
	if got.Orientation == dynamo.Identity() {
		t.Error("zero value Euler should rotate")
	}
}
