// Package dynamo provides the numerical primitives shared by the engine:
//
//   - [State]: flat generalized-coordinate vector
//   - [System]: ODE right-hand side (dX/dt = f(X, u, t))
//   - [SecondOrder]: a System whose state splits into positions then velocities
//   - [Integrator]: one fixed-size step of an integration scheme
//   - [ParallelFor]: chunked fork/join used by the software rasterizer
//
// # Example
//
//	integ := integrators.NewRK4()
//	x = integ.Step(sys, x, nil, t, dt)
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
package dynamo
