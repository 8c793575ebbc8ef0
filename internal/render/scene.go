package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/simrec/internal/engine"
)

const DefaultMaxGeom = 2000

// GeomInstance is one drawable geom in world coordinates.
type GeomInstance struct {
	Type engine.GeomType
	Pos  mgl64.Vec3
	Rot  mgl64.Mat3
	Size [3]float64
	RGBA [4]float32
}

type Scene struct {
	MaxGeom int
	Geoms   []GeomInstance
	Camera  Camera
	// Dropped counts geoms that did not fit in the last Update.
	Dropped int
}

func NewScene(maxGeom int) *Scene {
	if maxGeom <= 0 {
		maxGeom = DefaultMaxGeom
	}
	return &Scene{
		MaxGeom: maxGeom,
		Geoms:   make([]GeomInstance, 0, min(maxGeom, 64)),
	}
}

// Update rebuilds the geom list from the current body poses.
func (s *Scene) Update(m *engine.Model, d *engine.Data, cam Camera) {
	s.Geoms = s.Geoms[:0]
	s.Dropped = 0
	s.Camera = cam

	for _, g := range m.Geoms {
		if len(s.Geoms) >= s.MaxGeom {
			s.Dropped++
			continue
		}
		q := d.Xquat[g.Body]
		s.Geoms = append(s.Geoms, GeomInstance{
			Type: g.Type,
			Pos:  d.Xpos[g.Body].Add(q.Rotate(mgl64.Vec3(g.Pos))),
			Rot:  q.Mat4().Mat3(),
			Size: g.Size,
			RGBA: g.RGBA,
		})
	}
}
