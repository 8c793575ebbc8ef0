package integrators

import "github.com/san-kum/simrec/internal/dynamo"

// Euler is the explicit forward scheme x' = x + dt*f(x).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	return x.Axpy(dt, dyn.Derive(x, u, t))
}

// SymplecticEuler updates velocities first and then integrates positions
// with the new velocities. It needs a SecondOrder system; Check rejects
// anything else, and Step falls back to explicit Euler if called anyway.
type SymplecticEuler struct {
	scratch dynamo.State
}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	so, ok := dyn.(dynamo.SecondOrder)
	if !ok {
		return x.Axpy(dt, dyn.Derive(x, u, t))
	}

	n := len(x)
	np := so.PositionDim()
	if len(s.scratch) != n {
		s.scratch = make(dynamo.State, n)
	}

	dx := dyn.Derive(x, u, t)
	copy(s.scratch, x)
	for i := np; i < n; i++ {
		s.scratch[i] = x[i] + dt*dx[i]
	}

	dxNew := dyn.Derive(s.scratch, u, t+dt)
	result := make(dynamo.State, n)
	for i := 0; i < np; i++ {
		result[i] = x[i] + dt*dxNew[i]
	}
	copy(result[np:], s.scratch[np:])

	return result
}
