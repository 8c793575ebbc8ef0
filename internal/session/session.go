// Package session owns the loaded model and its single reusable simulation
// state. One Session is opened per process and passed to every component
// that reads or writes simulation state.
package session

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/simrec/internal/engine"
)

var ErrUnknownBody = errors.New("session: unknown body")

type BodyError struct {
	Name string
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body '%s' not found in model", e.Name)
}

func (e *BodyError) Unwrap() error { return ErrUnknownBody }

// BodyAddr locates a body's joint state inside Qpos and Qvel.
type BodyAddr struct {
	Name    string
	ID      int
	QposAdr int
	DofAdr  int
}

type Session struct {
	lic   *engine.License
	model *engine.Model
	data  *engine.Data
}

// Open activates the engine, loads the model and evaluates it once so that
// derived quantities are valid before the first step.
func Open(keyPath, modelPath string) (*Session, error) {
	lic, err := engine.Activate(keyPath)
	if err != nil {
		return nil, err
	}

	m, err := engine.Load(modelPath)
	if err != nil {
		lic.Deactivate()
		return nil, err
	}

	s, err := New(m)
	if err != nil {
		lic.Deactivate()
		return nil, err
	}
	s.lic = lic
	return s, nil
}

// New wraps an already compiled model without touching activation.
func New(m *engine.Model) (*Session, error) {
	d, err := engine.NewData(m)
	if err != nil {
		return nil, fmt.Errorf("allocate data: %w", err)
	}
	d.Forward()
	return &Session{model: m, data: d}, nil
}

func (s *Session) Model() *engine.Model { return s.model }
func (s *Session) Data() *engine.Data   { return s.data }
func (s *Session) Time() float64        { return s.data.Time }
func (s *Session) Contacts() int        { return s.data.Ncon }

func (s *Session) ResolveBody(name string) (BodyAddr, error) {
	id := s.model.Name2ID(engine.ObjBody, name)
	if id < 0 {
		return BodyAddr{}, &BodyError{Name: name}
	}
	return BodyAddr{
		Name:    name,
		ID:      id,
		QposAdr: s.model.BodyQposAdr(id),
		DofAdr:  s.model.BodyDofAdr(id),
	}, nil
}

func (s *Session) Step() error {
	return s.data.Step()
}

// Reset restores the initial state and clock; the model is kept.
func (s *Session) Reset() {
	s.data.Reset()
	s.data.Forward()
}

// WritePosition overwrites consecutive Qpos entries starting at adr and
// refreshes body poses. Writes past the end of Qpos are dropped.
func (s *Session) WritePosition(adr int, vals ...float64) {
	write(s.data.Qpos, adr, vals)
	s.data.Forward()
}

// WriteVelocity overwrites consecutive Qvel entries starting at adr.
func (s *Session) WriteVelocity(adr int, vals ...float64) {
	write(s.data.Qvel, adr, vals)
}

func write(dst []float64, adr int, vals []float64) {
	if adr < 0 {
		return
	}
	for i, v := range vals {
		if adr+i >= len(dst) {
			return
		}
		dst[adr+i] = v
	}
}

func (s *Session) BodyPosition(id int) mgl64.Vec3 {
	if id < 0 || id >= len(s.data.Xpos) {
		return mgl64.Vec3{}
	}
	return s.data.Xpos[id]
}

func (s *Session) BodyVelocity(id int) mgl64.Vec3 {
	return s.data.BodyVelocity(id)
}

func (s *Session) Close() {
	s.lic.Deactivate()
	s.lic = nil
}
