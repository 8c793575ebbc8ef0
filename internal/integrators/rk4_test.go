package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/simrec/internal/dynamo"
)

type oscillator struct{}

func (s *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *oscillator) StateDim() int    { return 2 }
func (s *oscillator) ControlDim() int  { return 0 }
func (s *oscillator) PositionDim() int { return 1 }

func integrate(integ dynamo.Integrator, steps int, dt float64) dynamo.State {
	dyn := &oscillator{}
	x := dynamo.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	steps, dt := 100, 0.01
	x := integrate(NewRK4(), steps, dt)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestSymplecticEulerBoundedEnergy(t *testing.T) {
	x := integrate(NewSymplecticEuler(), 10000, 0.01)

	energy := 0.5 * (x[0]*x[0] + x[1]*x[1])
	if math.Abs(energy-0.5) > 0.01 {
		t.Errorf("energy drifted to %.6f", energy)
	}
}

func TestExplicitEulerGainsEnergy(t *testing.T) {
	x := integrate(NewEuler(), 1000, 0.01)

	energy := 0.5 * (x[0]*x[0] + x[1]*x[1])
	if energy <= 0.5 {
		t.Errorf("expected explicit Euler to gain energy, got %.6f", energy)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"Euler", "RK4", "explicit", "symplectic"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}

	if _, err := ByName("implicitfast"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

// decay is a first-order system with no position/velocity split.
type decay struct{}

func (s *decay) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

func (s *decay) StateDim() int   { return 1 }
func (s *decay) ControlDim() int { return 0 }

// overSplit claims more positions than its state holds.
type overSplit struct{ oscillator }

func (s *overSplit) PositionDim() int { return 3 }

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		sys   dynamo.System
		x     dynamo.State
		want  error
	}{
		{"rk4 oscillator", NewRK4(), &oscillator{}, dynamo.State{1, 0}, nil},
		{"symplectic oscillator", NewSymplecticEuler(), &oscillator{}, dynamo.State{1, 0}, nil},
		{"explicit first order", NewEuler(), &decay{}, dynamo.State{1}, nil},
		{"short state", NewRK4(), &oscillator{}, dynamo.State{1}, dynamo.ErrDimensionMismatch},
		{"symplectic first order", NewSymplecticEuler(), &decay{}, dynamo.State{1}, dynamo.ErrNotSecondOrder},
		{"positions beyond state", NewSymplecticEuler(), &overSplit{}, dynamo.State{1, 0}, dynamo.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.integ, tt.sys, tt.x)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}
