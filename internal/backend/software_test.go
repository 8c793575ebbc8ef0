//go:build !egl && !glfw

package backend

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSoftwareLifecycle(t *testing.T) {
	b := New(Options{Width: 32, Height: 24, Logger: quietLogger()})

	if w, h := b.MaxViewport(); w != 0 || h != 0 {
		t.Errorf("expected empty viewport before init, got %dx%d", w, h)
	}
	if _, err := b.NewRasterizer(); !errors.Is(err, ErrContext) {
		t.Errorf("expected ErrContext before init, got %v", err)
	}

	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	if w, h := b.MaxViewport(); w != 32 || h != 24 {
		t.Errorf("expected 32x24, got %dx%d", w, h)
	}
	if !b.Offscreen() {
		t.Error("software backend must render offscreen")
	}

	r, err := b.NewRasterizer()
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "software" {
		t.Errorf("unexpected rasterizer %s", r.Name())
	}
	r.Close()

	b.Shutdown()
	b.Shutdown()
	if w, _ := b.MaxViewport(); w != 0 {
		t.Error("expected viewport cleared after shutdown")
	}
}

func TestDefaultViewport(t *testing.T) {
	b := New(Options{Logger: quietLogger()})
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	defer b.Shutdown()

	if w, h := b.MaxViewport(); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("expected %dx%d, got %dx%d", DefaultWidth, DefaultHeight, w, h)
	}
	if b.Name() != "software" {
		t.Errorf("unexpected backend %s", b.Name())
	}
}

func TestShutdownWithoutInit(t *testing.T) {
	b := New(Options{Logger: quietLogger()})
	b.Shutdown()
}
