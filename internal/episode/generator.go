package episode

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/simrec/internal/framesink"
	"github.com/san-kum/simrec/internal/metrics"
	"github.com/san-kum/simrec/internal/render"
	"github.com/san-kum/simrec/internal/session"
)

// Session is the part of *session.Session the generator drives.
type Session interface {
	Simulator
	ResolveBody(name string) (session.BodyAddr, error)
	WritePosition(adr int, vals ...float64)
	BodyPosition(id int) mgl64.Vec3
	BodyVelocity(id int) mgl64.Vec3
	Contacts() int
	Reset()
}

type Config struct {
	Duration  float64
	FPS       float64
	Width     int
	Height    int
	OutputDir string
	Scenario  Scenario
	Seeds     SeedSource
}

// Result describes one finished episode file.
type Result struct {
	Params       Params
	File         string
	Frames       int
	Bytes        int64
	Steps        int
	FirstCapture float64
	LastCapture  float64
	Metrics      map[string]float64
}

type Generator struct {
	cfg      Config
	sess     Session
	renderer FrameRenderer
	log      *logrus.Logger
	progress io.Writer

	cue    session.BodyAddr
	target session.BodyAddr
}

// NewGenerator resolves the cue and target bodies so that a model without
// them fails before any output file exists.
func NewGenerator(sess Session, renderer FrameRenderer, cfg Config, log *logrus.Logger, progress io.Writer) (*Generator, error) {
	if err := cfg.Scenario.Validate(); err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", render.ErrViewport, cfg.Width, cfg.Height)
	}
	if cfg.Seeds == nil {
		cfg.Seeds = ClockSeeds()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if progress == nil {
		progress = io.Discard
	}

	cue, err := resolvePlanar(sess, cfg.Scenario.CueBody)
	if err != nil {
		return nil, err
	}
	target, err := resolvePlanar(sess, cfg.Scenario.TargetBody)
	if err != nil {
		return nil, err
	}

	return &Generator{
		cfg:      cfg,
		sess:     sess,
		renderer: renderer,
		log:      log,
		progress: progress,
		cue:      cue,
		target:   target,
	}, nil
}

// resolvePlanar requires the body to own x and y position coordinates.
func resolvePlanar(sess Session, name string) (session.BodyAddr, error) {
	addr, err := sess.ResolveBody(name)
	if err != nil {
		return addr, err
	}
	if addr.QposAdr < 0 || addr.DofAdr < 0 {
		return addr, fmt.Errorf("body '%s' has no joint to position", name)
	}
	return addr, nil
}

func (g *Generator) Cue() session.BodyAddr    { return g.cue }
func (g *Generator) Target() session.BodyAddr { return g.target }

// Run records count episodes in order and stops at the first error.
func (g *Generator) Run(count int) ([]Result, error) {
	results := make([]Result, 0, max(count, 0))
	for i := 0; i < count; i++ {
		res, err := g.RunEpisode(i)
		if err != nil {
			return results, fmt.Errorf("episode %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *Generator) RunEpisode(index int) (Result, error) {
	label := LabelFor(index)
	fmt.Fprintf(g.progress, "%d", index)

	fb, err := render.NewFrameBuffer(g.cfg.Width, g.cfg.Height)
	if err != nil {
		return Result{}, err
	}
	defer fb.Release()

	path := filepath.Join(g.cfg.OutputDir, framesink.FileName(label.Goal(), index/2))
	sink, err := framesink.Create(path, g.cfg.Width, g.cfg.Height)
	if err != nil {
		return Result{}, err
	}
	defer sink.Close()
	defer g.sess.Reset()

	p := Randomize(index, g.cfg.Seeds(index), g.cfg.Scenario)
	g.log.WithFields(logrus.Fields{
		"episode":    index,
		"label":      label,
		"seed":       p.Seed,
		"slope":      p.Slope,
		"target_x":   p.TargetX,
		"target_y":   p.TargetY,
		"cue_x":      p.CueX,
		"cue_y":      p.CueY,
		"velocity_x": p.VelocityX,
		"velocity_y": p.VelocityY,
	}).Info("episode parameters")

	g.sess.WritePosition(g.cue.QposAdr, p.CueX, p.CueY)
	g.sess.WritePosition(g.target.QposAdr, p.TargetX, p.TargetY)

	ms := metrics.Standard()
	loop := &CaptureLoop{
		Duration:    g.cfg.Duration,
		FPS:         g.cfg.FPS,
		Sim:         g.sess,
		Renderer:    g.renderer,
		Sink:        sink,
		Frame:       fb,
		VelocityAdr: g.cue.DofAdr,
		Velocity:    [2]float64{p.VelocityX, p.VelocityY},
		Progress:    g.progress,
		OnStep: func() {
			s := metrics.Sample{
				Time:        g.sess.Time(),
				Cue:         g.sess.BodyPosition(g.cue.ID),
				Target:      g.sess.BodyPosition(g.target.ID),
				CueVelocity: g.sess.BodyVelocity(g.cue.ID),
				Contacts:    g.sess.Contacts(),
			}
			for _, m := range ms {
				m.Observe(s)
			}
		},
	}
	if err := loop.Run(); err != nil {
		return Result{}, err
	}
	fmt.Fprintln(g.progress)

	if n, first := loop.RenderErrors(); n > 0 {
		g.log.WithFields(logrus.Fields{
			"episode": index,
			"frames":  n,
			"error":   first,
		}).Warn("frames rendered with errors")
	}

	if err := sink.Close(); err != nil {
		return Result{}, err
	}

	res := Result{
		Params:  p,
		File:    path,
		Frames:  loop.Frames(),
		Bytes:   sink.Bytes(),
		Steps:   loop.Steps(),
		Metrics: metrics.Collect(ms),
	}
	if stamps := loop.Timestamps(); len(stamps) > 0 {
		res.FirstCapture = stamps[0]
		res.LastCapture = stamps[len(stamps)-1]
	}

	g.log.WithFields(logrus.Fields{
		"episode": index,
		"file":    path,
		"frames":  res.Frames,
	}).Debug("episode written")
	return res, nil
}
