//go:build glfw && !egl

package backend

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/simrec/internal/render"
)

// hiddenWindow renders through an invisible single-buffered window.
type hiddenWindow struct {
	opts   Options
	window *glfw.Window
	inited bool
}

func newPlatform(opts Options) Backend {
	return &hiddenWindow{opts: opts}
}

func (b *hiddenWindow) Name() string { return "glfw" }

func (b *hiddenWindow) Init() error {
	if b.window != nil {
		return nil
	}
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: failed to initialize GLFW: %v", ErrContext, err)
	}
	b.inited = true

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(b.opts.Width, b.opts.Height, "Invisible window", nil, nil)
	if err != nil {
		b.Shutdown()
		return fmt.Errorf("%w: failed to create GLFW window: %v", ErrContext, err)
	}
	win.MakeContextCurrent()
	b.window = win

	b.opts.Logger.WithFields(logrus.Fields{
		"backend": b.Name(),
		"width":   b.opts.Width,
		"height":  b.opts.Height,
	}).Debug("graphics context ready")
	return nil
}

func (b *hiddenWindow) Shutdown() {
	if b.window != nil {
		b.window.Destroy()
		b.window = nil
	}
	if !b.inited {
		return
	}
	b.inited = false
	// Terminate crashes with Linux NVidia drivers.
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		glfw.Terminate()
	}
	runtime.UnlockOSThread()
}

func (b *hiddenWindow) MaxViewport() (int, int) {
	if b.window == nil {
		return 0, 0
	}
	return b.window.GetFramebufferSize()
}

func (b *hiddenWindow) Offscreen() bool {
	if b.window == nil {
		return false
	}
	return b.window.GetAttrib(glfw.ContextVersionMajor) >= 3 || glfw.ExtensionSupported("GL_ARB_framebuffer_object")
}

func (b *hiddenWindow) NewRasterizer() (render.Rasterizer, error) {
	if b.window == nil {
		return nil, fmt.Errorf("%w: not initialized", ErrContext)
	}
	w, h := b.MaxViewport()
	return render.NewGL(w, h)
}
