//go:build egl

package backend

/*
#cgo LDFLAGS: -lEGL
#include <EGL/egl.h>

static const EGLint simrec_config_attribs[] = {
	EGL_RED_SIZE, 8,
	EGL_GREEN_SIZE, 8,
	EGL_BLUE_SIZE, 8,
	EGL_ALPHA_SIZE, 8,
	EGL_DEPTH_SIZE, 24,
	EGL_STENCIL_SIZE, 8,
	EGL_COLOR_BUFFER_TYPE, EGL_RGB_BUFFER,
	EGL_SURFACE_TYPE, EGL_PBUFFER_BIT,
	EGL_RENDERABLE_TYPE, EGL_OPENGL_BIT,
	EGL_NONE
};

static EGLDisplay simrec_default_display(void) { return eglGetDisplay(EGL_DEFAULT_DISPLAY); }
static int simrec_is_no_display(EGLDisplay d) { return d == EGL_NO_DISPLAY; }
static int simrec_is_no_context(EGLContext c) { return c == EGL_NO_CONTEXT; }

static int simrec_choose_config(EGLDisplay d, EGLConfig *cfg) {
	EGLint n = 0;
	if (eglChooseConfig(d, simrec_config_attribs, cfg, 1, &n) != EGL_TRUE || n < 1) {
		return 0;
	}
	return 1;
}

static EGLContext simrec_create_context(EGLDisplay d, EGLConfig cfg) {
	return eglCreateContext(d, cfg, EGL_NO_CONTEXT, NULL);
}

static int simrec_make_current(EGLDisplay d, EGLContext c) {
	return eglMakeCurrent(d, EGL_NO_SURFACE, EGL_NO_SURFACE, c) == EGL_TRUE;
}

static void simrec_release(EGLDisplay d, EGLContext c) {
	eglMakeCurrent(d, EGL_NO_SURFACE, EGL_NO_SURFACE, EGL_NO_CONTEXT);
	if (c != EGL_NO_CONTEXT) {
		eglDestroyContext(d, c);
	}
	eglTerminate(d);
}
*/
import "C"

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/simrec/internal/render"
)

// egl is a surfaceless headless context; frames go to an FBO.
type egl struct {
	opts    Options
	display C.EGLDisplay
	context C.EGLContext
	ready   bool
}

func newPlatform(opts Options) Backend {
	return &egl{opts: opts}
}

func (b *egl) Name() string { return "egl" }

func (b *egl) Init() error {
	if b.ready {
		return nil
	}
	runtime.LockOSThread()

	b.display = C.simrec_default_display()
	if C.simrec_is_no_display(b.display) != 0 {
		return b.fail("could not get EGL display")
	}

	var major, minor C.EGLint
	if C.eglInitialize(b.display, &major, &minor) != C.EGL_TRUE {
		return b.fail("could not initialize EGL")
	}

	var cfg C.EGLConfig
	if C.simrec_choose_config(b.display, &cfg) == 0 {
		return b.fail("could not choose EGL config")
	}
	if C.eglBindAPI(C.EGL_OPENGL_API) != C.EGL_TRUE {
		return b.fail("could not bind EGL OpenGL API")
	}

	b.context = C.simrec_create_context(b.display, cfg)
	if C.simrec_is_no_context(b.context) != 0 {
		return b.fail("could not create EGL context")
	}
	if C.simrec_make_current(b.display, b.context) == 0 {
		return b.fail("could not make EGL context current")
	}

	b.ready = true
	b.opts.Logger.WithFields(logrus.Fields{
		"backend": b.Name(),
		"version": fmt.Sprintf("%d.%d", int(major), int(minor)),
	}).Debug("graphics context ready")
	return nil
}

func (b *egl) fail(msg string) error {
	code := int(C.eglGetError())
	b.Shutdown()
	return fmt.Errorf("%w: %s, error 0x%x", ErrContext, msg, code)
}

func (b *egl) Shutdown() {
	if b.display == nil {
		return
	}
	C.simrec_release(b.display, b.context)
	b.display = nil
	b.context = nil
	b.ready = false
	runtime.UnlockOSThread()
}

func (b *egl) MaxViewport() (int, int) {
	if !b.ready {
		return 0, 0
	}
	return b.opts.Width, b.opts.Height
}

func (b *egl) Offscreen() bool { return true }

func (b *egl) NewRasterizer() (render.Rasterizer, error) {
	if !b.ready {
		return nil, fmt.Errorf("%w: not initialized", ErrContext)
	}
	w, h := b.MaxViewport()
	return render.NewGL(w, h)
}
