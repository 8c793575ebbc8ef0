package dynamo

import "math"

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Axpy returns s + a*other. Missing trailing entries of other count as zero.
func (s State) Axpy(a float64, other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i]
		if i < len(other) {
			result[i] += a * other[i]
		}
	}
	return result
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// SecondOrder systems lay their state out as [positions..., velocities...].
// PositionDim may differ from the velocity count (quaternion coordinates).
type SecondOrder interface {
	System
	PositionDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}
