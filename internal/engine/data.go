package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/simrec/internal/dynamo"
	"github.com/san-kum/simrec/internal/integrators"
)

// Data is the mutable simulation state for one Model. It is reused across
// episodes through Reset and is not safe for concurrent use.
type Data struct {
	Qpos  []float64
	Qvel  []float64
	Time  float64
	Xpos  []mgl64.Vec3
	Xquat []mgl64.Quat
	Ncon  int

	model *Model
	integ dynamo.Integrator
	sys   *jointSystem
	x     dynamo.State
	steps int
}

func NewData(m *Model) (*Data, error) {
	integ, err := integrators.ByName(m.Opt.Integrator)
	if err != nil {
		return nil, err
	}

	d := &Data{
		Qpos:  make([]float64, m.Nq),
		Qvel:  make([]float64, m.Nv),
		Xpos:  make([]mgl64.Vec3, len(m.Bodies)),
		Xquat: make([]mgl64.Quat, len(m.Bodies)),
		model: m,
		integ: integ,
		sys:   &jointSystem{model: m},
		x:     make(dynamo.State, m.Nq+m.Nv),
	}
	if err := integrators.Check(d.integ, d.sys, d.x); err != nil {
		return nil, fmt.Errorf("integrator %s: %w", m.Opt.Integrator, err)
	}
	d.Reset()
	return d, nil
}

func (d *Data) Model() *Model { return d.model }

// Reset restores qpos0, zero velocities and time, keeping the model.
func (d *Data) Reset() {
	copy(d.Qpos, d.model.Qpos0)
	for i := range d.Qvel {
		d.Qvel[i] = 0
	}
	d.Time = 0
	d.Ncon = 0
	d.steps = 0
	d.Forward()
}

// Forward recomputes body poses from qpos.
func (d *Data) Forward() {
	m := d.model
	for i, b := range m.Bodies {
		if i == 0 {
			d.Xpos[0] = mgl64.Vec3{}
			d.Xquat[0] = mgl64.QuatIdent()
			continue
		}

		pq := d.Xquat[b.Parent]
		pos := d.Xpos[b.Parent].Add(pq.Rotate(mgl64.Vec3(b.Pos)))
		quat := pq

		for j := b.JntAdr; j < b.JntAdr+b.JntNum; j++ {
			jnt := m.Joints[j]
			a := jnt.QposAdr
			switch jnt.Type {
			case JointFree:
				pos = mgl64.Vec3{d.Qpos[a], d.Qpos[a+1], d.Qpos[a+2]}
				quat = freeQuat(d.Qpos[a+3 : a+7]).Normalize()
			case JointSlide:
				pos = pos.Add(pq.Rotate(mgl64.Vec3(jnt.Axis)).Mul(d.Qpos[a]))
			}
		}

		d.Xpos[i] = pos
		d.Xquat[i] = quat
	}
}

// Step advances the state by one timestep: integrate joint dynamics, resolve
// contacts, then refresh kinematics.
func (d *Data) Step() error {
	m := d.model
	dt := m.Opt.Timestep

	copy(d.x[:m.Nq], d.Qpos)
	copy(d.x[m.Nq:], d.Qvel)

	next := d.integ.Step(d.sys, d.x, nil, d.Time, dt)
	if !next.IsValid() {
		return &dynamo.SimulationError{
			Step:    d.steps,
			Time:    d.Time,
			State:   next,
			Wrapped: fmt.Errorf("%w at t=%.4f", dynamo.ErrInvalidState, d.Time),
		}
	}

	copy(d.Qpos, next[:m.Nq])
	copy(d.Qvel, next[m.Nq:])
	d.normalizeQuats()

	d.Forward()
	d.resolveContacts()
	d.Forward()

	d.Time += dt
	d.steps++
	return nil
}

// BodyVelocity is the world linear velocity contributed by the body's own joints.
func (d *Data) BodyVelocity(body int) mgl64.Vec3 {
	m := d.model
	var v mgl64.Vec3
	if body <= 0 || body >= len(m.Bodies) {
		return v
	}

	b := m.Bodies[body]
	for j := b.JntAdr; j < b.JntAdr+b.JntNum; j++ {
		jnt := m.Joints[j]
		switch jnt.Type {
		case JointFree:
			v = v.Add(mgl64.Vec3{d.Qvel[jnt.DofAdr], d.Qvel[jnt.DofAdr+1], d.Qvel[jnt.DofAdr+2]})
		case JointSlide:
			v = v.Add(mgl64.Vec3(jnt.Axis).Mul(d.Qvel[jnt.DofAdr]))
		}
	}
	return v
}

func (d *Data) normalizeQuats() {
	for _, jnt := range d.model.Joints {
		if jnt.Type != JointFree {
			continue
		}
		a := jnt.QposAdr + 3
		q := freeQuat(d.Qpos[a : a+4])
		if q.Len() < 1e-12 {
			q = mgl64.QuatIdent()
		}
		q = q.Normalize()
		d.Qpos[a], d.Qpos[a+1], d.Qpos[a+2], d.Qpos[a+3] = q.W, q.V[0], q.V[1], q.V[2]
	}
}

func freeQuat(q []float64) mgl64.Quat {
	return mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}}
}

// jointSystem exposes the joint dynamics as a second-order ODE over
// [qpos, qvel]: gravity projected on each dof and linear joint damping.
type jointSystem struct {
	model *Model
}

func (s *jointSystem) StateDim() int    { return s.model.Nq + s.model.Nv }
func (s *jointSystem) ControlDim() int  { return 0 }
func (s *jointSystem) PositionDim() int { return s.model.Nq }

func (s *jointSystem) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	m := s.model
	dx := make(dynamo.State, len(x))
	qpos := x[:m.Nq]
	qvel := x[m.Nq:]
	dpos := dx[:m.Nq]
	dvel := dx[m.Nq:]
	g := mgl64.Vec3(m.Opt.Gravity)

	for _, jnt := range m.Joints {
		mass := m.Bodies[jnt.Body].Mass
		qa, da := jnt.QposAdr, jnt.DofAdr

		switch jnt.Type {
		case JointSlide:
			dpos[qa] = qvel[da]
			dvel[da] = g.Dot(mgl64.Vec3(jnt.Axis)) - jnt.Damping*qvel[da]/mass

		case JointFree:
			for k := 0; k < 3; k++ {
				dpos[qa+k] = qvel[da+k]
				dvel[da+k] = g[k] - jnt.Damping*qvel[da+k]/mass
				dvel[da+3+k] = -jnt.Damping * qvel[da+3+k] / mass
			}

			q := freeQuat(qpos[qa+3 : qa+7])
			omega := mgl64.Quat{V: mgl64.Vec3{qvel[da+3], qvel[da+4], qvel[da+5]}}
			dq := q.Mul(omega).Scale(0.5)
			dpos[qa+3], dpos[qa+4], dpos[qa+5], dpos[qa+6] = dq.W, dq.V[0], dq.V[1], dq.V[2]
		}
	}

	return dx
}
