package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/simrec/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler":      func() dynamo.Integrator { return NewSymplecticEuler() },
	"explicit":   func() dynamo.Integrator { return NewEuler() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
	"symplectic": func() dynamo.Integrator { return NewSymplecticEuler() },
}

// ByName returns a fresh integrator. Names are case-insensitive; "Euler" is
// the semi-implicit scheme, matching the engine's default option.
func ByName(name string) (dynamo.Integrator, error) {
	fn, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check reports whether integ can advance state x of sys.
func Check(integ dynamo.Integrator, sys dynamo.System, x dynamo.State) error {
	if len(x) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d entries, system expects %d", dynamo.ErrDimensionMismatch, len(x), sys.StateDim())
	}
	if _, split := integ.(*SymplecticEuler); !split {
		return nil
	}
	so, ok := sys.(dynamo.SecondOrder)
	if !ok {
		return dynamo.ErrNotSecondOrder
	}
	if np := so.PositionDim(); np < 0 || np > len(x) {
		return fmt.Errorf("%w: %d positions in a state of %d", dynamo.ErrDimensionMismatch, np, len(x))
	}
	return nil
}
