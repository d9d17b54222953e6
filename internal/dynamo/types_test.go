package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"origin", NewState(Vec3{}), true},
		{"normal", State{Vec3{1, 2, 3}, Quaternion{0.5, 0.5, 0.5, 0.5}}, true},
		{"NaN position", State{Vec3{math.NaN(), 0, 0}, Identity()}, false},
		{"Inf orientation", State{Vec3{}, Quaternion{W: math.Inf(1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestLoads_Accelerations(t *testing.T) {
	l := Loads{Force: Vec3{5, 0, -10}, Torque: Vec3{0, 2.5, 0}, Mass: 5}
	lin, ang, err := l.Accelerations()
	if err != nil {
		t.Fatalf("Accelerations failed: %v", err)
	}
	if lin != (Vec3{1, 0, -2}) {
		t.Errorf("linear = %v", lin)
	}
	if ang != (Vec3{0, 0.5, 0}) {
		t.Errorf("angular = %v", ang)
	}
}

func TestLoads_AccelerationsZeroMass(t *testing.T) {
	for _, m := range []float64{0, -1, math.NaN()} {
		_, _, err := Loads{Force: Vec3{1, 0, 0}, Mass: m}.Accelerations()
		if !errors.Is(err, ErrInvalidBody) {
			t.Errorf("mass %v: expected ErrInvalidBody, got %v", m, err)
		}
	}
}

func TestVectorOps(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if sum := a.Add(b); sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", sum)
	}
	if scaled := a.Mul(2); scaled != (Vec3{2, 4, 6}) {
		t.Errorf("Mul failed: got %v", scaled)
	}
	if c := a.Cross(b); c != (Vec3{-3, 6, -3}) {
		t.Errorf("Cross failed: got %v", c)
	}
	if d := DivVec(b, 2); d != (Vec3{2, 2.5, 3}) {
		t.Errorf("DivVec failed: got %v", d)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.3, Wrapped: ErrDegenerateOrientation}
	if !errors.Is(err, ErrDegenerateOrientation) {
		t.Error("SimulationError does not unwrap")
	}
	expected := "tick 3 (t=0.3000): dynamo: degenerate orientation (zero magnitude quaternion)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestResult_Final(t *testing.T) {
	r := &Result{States: []State{NewState(Vec3{}), NewState(Vec3{1, 0, 0})}}
	if r.Final().Position != (Vec3{1, 0, 0}) {
		t.Errorf("Final = %v", r.Final())
	}
	if (&Result{}).Final() != (State{}) {
		t.Error("Final of empty result should be zero state")
	}
}
