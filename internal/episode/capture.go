package episode

import (
	"fmt"
	"io"

	"github.com/san-kum/simrec/internal/render"
)

// progressEvery is the number of captured frames per progress mark.
const progressEvery = 10

type State int

const (
	Running State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "running"
}

type Simulator interface {
	Time() float64
	Step() error
	WriteVelocity(adr int, vals ...float64)
}

type FrameRenderer interface {
	Capture(fb *render.FrameBuffer) error
	// Err reports a non-fatal problem during the last capture.
	Err() bool
	LastError() error
}

type FrameWriter interface {
	WriteFrame(rgb []byte) error
}

// CaptureLoop steps the simulation until Duration and captures a frame
// whenever more than 1/FPS seconds of simulation time passed since the
// previous capture. The cue velocity is rewritten before every step.
type CaptureLoop struct {
	Duration    float64
	FPS         float64
	Sim         Simulator
	Renderer    FrameRenderer
	Sink        FrameWriter
	Frame       *render.FrameBuffer
	VelocityAdr int
	Velocity    [2]float64
	Progress    io.Writer
	// OnStep runs after every simulation step.
	OnStep func()

	state       State
	lastCapture float64
	frames      int
	steps       int
	stamps      []float64

	renderErrors   int
	firstRenderErr error
}

func (l *CaptureLoop) State() State          { return l.state }
func (l *CaptureLoop) Frames() int           { return l.frames }
func (l *CaptureLoop) Steps() int            { return l.steps }
func (l *CaptureLoop) Timestamps() []float64 { return l.stamps }

// RenderErrors is the number of frames captured with a renderer problem and
// the first such problem.
func (l *CaptureLoop) RenderErrors() (int, error) {
	return l.renderErrors, l.firstRenderErr
}

// Tick runs one iteration and returns the resulting state.
func (l *CaptureLoop) Tick() (State, error) {
	if l.state == Done {
		return Done, nil
	}

	t := l.Sim.Time()
	if t >= l.Duration {
		l.state = Done
		return Done, nil
	}

	l.Sim.WriteVelocity(l.VelocityAdr, l.Velocity[0], l.Velocity[1])

	if t-l.lastCapture > 1/l.FPS {
		if err := l.capture(t); err != nil {
			return l.state, err
		}
	}

	if err := l.Sim.Step(); err != nil {
		return l.state, fmt.Errorf("step %d at t=%.4f: %w", l.steps, t, err)
	}
	l.steps++
	if l.OnStep != nil {
		l.OnStep()
	}
	return l.state, nil
}

func (l *CaptureLoop) capture(t float64) error {
	if err := l.Renderer.Capture(l.Frame); err != nil {
		return fmt.Errorf("capture frame %d: %w", l.frames, err)
	}
	if err := l.Sink.WriteFrame(l.Frame.RGB); err != nil {
		return err
	}

	bad := l.Renderer.Err()
	if bad {
		l.renderErrors++
		if l.firstRenderErr == nil {
			l.firstRenderErr = l.Renderer.LastError()
		}
	}

	if l.frames%progressEvery == 0 && l.Progress != nil {
		mark := "."
		if bad {
			mark = "x"
		}
		fmt.Fprint(l.Progress, mark)
	}
	l.frames++
	l.lastCapture = t
	l.stamps = append(l.stamps, t)
	return nil
}

func (l *CaptureLoop) Run() error {
	for {
		state, err := l.Tick()
		if err != nil {
			return err
		}
		if state == Done {
			return nil
		}
	}
}
