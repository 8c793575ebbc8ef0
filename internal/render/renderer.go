package render

import (
	"fmt"

	"github.com/san-kum/simrec/internal/engine"
)

// Rasterizer draws a scene into a frame buffer. An error from Rasterize is
// advisory: the frame buffer still holds whatever was drawn.
type Rasterizer interface {
	Name() string
	Rasterize(s *Scene, fb *FrameBuffer) error
	Close()
}

// SceneRenderer couples the simulation state with a rasterizer.
type SceneRenderer struct {
	model *engine.Model
	data  *engine.Data
	cam   Camera
	scene *Scene
	rast  Rasterizer
	err   error
}

func NewSceneRenderer(m *engine.Model, d *engine.Data, cam Camera, rast Rasterizer, maxGeom int) *SceneRenderer {
	return &SceneRenderer{
		model: m,
		data:  d,
		cam:   cam,
		scene: NewScene(maxGeom),
		rast:  rast,
	}
}

func (r *SceneRenderer) Camera() Camera { return r.cam }
func (r *SceneRenderer) Scene() *Scene  { return r.scene }

// Capture renders the current state into fb. Only a missing or mis-sized
// buffer is returned as an error; rasterizer problems are kept for Err.
func (r *SceneRenderer) Capture(fb *FrameBuffer) error {
	if fb == nil || len(fb.RGB) != fb.FrameSize() || len(fb.Depth) != fb.Width*fb.Height {
		return fmt.Errorf("%w: frame buffer not allocated", ErrViewport)
	}

	r.scene.Update(r.model, r.data, r.cam)
	r.err = r.rast.Rasterize(r.scene, fb)
	if r.err == nil && r.scene.Dropped > 0 {
		r.err = fmt.Errorf("scene full: %d geoms dropped", r.scene.Dropped)
	}
	return nil
}

// Err reports whether the most recent capture hit a rasterizer error.
func (r *SceneRenderer) Err() bool { return r.err != nil }

func (r *SceneRenderer) LastError() error { return r.err }
