package episode

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/simrec/internal/render"
	"github.com/san-kum/simrec/internal/session"
)

type write struct {
	adr  int
	vals []float64
}

// fakeSession is a two-body planar world with one slide pair per body.
type fakeSession struct {
	dt        float64
	time      float64
	qpos      []float64
	qvel      []float64
	bodies    map[string]session.BodyAddr
	positions []write
	velWrites int
	steps     int
	resets    int
	failAt    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		dt:   0.002,
		qpos: make([]float64, 4),
		qvel: make([]float64, 4),
		bodies: map[string]session.BodyAddr{
			"object0": {Name: "object0", ID: 1, QposAdr: 0, DofAdr: 0},
			"object1": {Name: "object1", ID: 2, QposAdr: 2, DofAdr: 2},
			"fixed":   {Name: "fixed", ID: 3, QposAdr: -1, DofAdr: -1},
		},
		failAt: -1,
	}
}

func (s *fakeSession) Time() float64 { return s.time }

func (s *fakeSession) Step() error {
	if s.steps == s.failAt {
		return errors.New("diverged")
	}
	for i := range s.qpos {
		s.qpos[i] += s.qvel[i] * s.dt
	}
	s.time += s.dt
	s.steps++
	return nil
}

func (s *fakeSession) WriteVelocity(adr int, vals ...float64) {
	copy(s.qvel[adr:], vals)
	s.velWrites++
}

func (s *fakeSession) WritePosition(adr int, vals ...float64) {
	copy(s.qpos[adr:], vals)
	s.positions = append(s.positions, write{adr: adr, vals: append([]float64(nil), vals...)})
}

func (s *fakeSession) ResolveBody(name string) (session.BodyAddr, error) {
	addr, ok := s.bodies[name]
	if !ok {
		return session.BodyAddr{}, &session.BodyError{Name: name}
	}
	return addr, nil
}

func (s *fakeSession) BodyPosition(id int) mgl64.Vec3 {
	a := 2 * (id - 1)
	return mgl64.Vec3{s.qpos[a], s.qpos[a+1], 0}
}

func (s *fakeSession) BodyVelocity(id int) mgl64.Vec3 {
	a := 2 * (id - 1)
	return mgl64.Vec3{s.qvel[a], s.qvel[a+1], 0}
}

func (s *fakeSession) Contacts() int { return 0 }

func (s *fakeSession) Reset() {
	for i := range s.qpos {
		s.qpos[i] = 0
		s.qvel[i] = 0
	}
	s.time = 0
	s.resets++
}

// fakeRenderer fills every frame with the capture count.
type fakeRenderer struct {
	captures int
	glError  bool
	fail     error
}

func (r *fakeRenderer) Capture(fb *render.FrameBuffer) error {
	if r.fail != nil {
		return r.fail
	}
	r.captures++
	for i := range fb.RGB {
		fb.RGB[i] = byte(r.captures)
	}
	return nil
}

func (r *fakeRenderer) Err() bool { return r.glError }

func (r *fakeRenderer) LastError() error {
	if r.glError {
		return errors.New("invalid framebuffer operation")
	}
	return nil
}

type memSink struct {
	frames [][]byte
}

func (m *memSink) WriteFrame(rgb []byte) error {
	m.frames = append(m.frames, append([]byte(nil), rgb...))
	return nil
}
