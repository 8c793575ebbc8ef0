//go:build !egl && !glfw

package backend

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/simrec/internal/render"
)

// software owns a fixed RGBA pixel buffer; the viewport is its size.
type software struct {
	opts   Options
	buffer []byte
}

func newPlatform(opts Options) Backend {
	return &software{opts: opts}
}

func (b *software) Name() string { return "software" }

func (b *software) Init() error {
	if b.buffer != nil {
		return nil
	}
	size := 4 * b.opts.Width * b.opts.Height
	if size <= 0 {
		return fmt.Errorf("%w: software buffer %dx%d", ErrContext, b.opts.Width, b.opts.Height)
	}
	b.buffer = make([]byte, size)
	b.opts.Logger.WithFields(logrus.Fields{
		"backend": b.Name(),
		"width":   b.opts.Width,
		"height":  b.opts.Height,
	}).Debug("graphics context ready")
	return nil
}

func (b *software) Shutdown() {
	b.buffer = nil
}

func (b *software) MaxViewport() (int, int) {
	if b.buffer == nil {
		return 0, 0
	}
	return b.opts.Width, len(b.buffer) / (4 * b.opts.Width)
}

func (b *software) Offscreen() bool { return true }

func (b *software) NewRasterizer() (render.Rasterizer, error) {
	if b.buffer == nil {
		return nil, fmt.Errorf("%w: not initialized", ErrContext)
	}
	return render.NewSoftware(), nil
}
