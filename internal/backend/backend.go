// Package backend creates the graphics context the renderer draws into.
//
// Exactly one implementation is linked per build: the pure-Go software
// backend by default, a headless EGL context with the egl tag, or a hidden
// GLFW window with the glfw tag. There is no runtime fallback between them.
package backend

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/simrec/internal/render"
)

var ErrContext = errors.New("backend: could not create graphics context")

const (
	DefaultWidth  = 800
	DefaultHeight = 800
)

type Backend interface {
	Name() string
	// Init creates the context and makes it current on the calling thread.
	Init() error
	// Shutdown is safe to call more than once and after a failed Init.
	Shutdown()
	MaxViewport() (width, height int)
	// Offscreen reports whether frames can be drawn without a visible window.
	Offscreen() bool
	NewRasterizer() (render.Rasterizer, error)
}

type Options struct {
	Width  int
	Height int
	Logger *logrus.Logger
}

func New(opts Options) Backend {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return newPlatform(opts)
}
