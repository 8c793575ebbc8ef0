// Package recorder runs a whole recording: graphics context, model session,
// renderer and episode generator, released in reverse order on every path.
package recorder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/simrec/internal/backend"
	"github.com/san-kum/simrec/internal/config"
	"github.com/san-kum/simrec/internal/engine"
	"github.com/san-kum/simrec/internal/episode"
	"github.com/san-kum/simrec/internal/render"
	"github.com/san-kum/simrec/internal/session"
	"github.com/san-kum/simrec/internal/storage"
)

type Options struct {
	ModelPath string
	Config    *config.Config
	Logger    *logrus.Logger
	// Progress receives the episode index and frame marks.
	Progress io.Writer
	// Backend overrides the backend linked into this build.
	Backend backend.Backend
}

type Report struct {
	RunID    string
	Backend  string
	Width    int
	Height   int
	Camera   render.Camera
	Episodes []episode.Result
	Elapsed  time.Duration
}

// Frames is the total number of frames written.
func (r *Report) Frames() int {
	n := 0
	for _, e := range r.Episodes {
		n += e.Frames
	}
	return n
}

func Run(opts Options) (*Report, error) {
	start := time.Now()
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	progress := opts.Progress
	if progress == nil {
		progress = os.Stdout
	}

	b := opts.Backend
	if b == nil {
		b = backend.New(backend.Options{
			Width:  cfg.Render.Width,
			Height: cfg.Render.Height,
			Logger: log,
		})
	}
	if err := b.Init(); err != nil {
		return nil, err
	}
	defer b.Shutdown()

	sess, err := session.Open(cfg.KeyFile, opts.ModelPath)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	rast, err := b.NewRasterizer()
	if err != nil {
		return nil, err
	}
	defer rast.Close()

	if !b.Offscreen() {
		log.Warn("offscreen rendering not supported, using default/window framebuffer")
	}

	width, height := b.MaxViewport()
	cam := Camera(sess.Model().Stat, cfg.Render.Camera)
	renderer := render.NewSceneRenderer(sess.Model(), sess.Data(), cam, rast, cfg.Render.MaxGeom)

	gen, err := episode.NewGenerator(sess, renderer, episode.Config{
		Duration:  cfg.Duration,
		FPS:       cfg.FPS,
		Width:     width,
		Height:    height,
		OutputDir: cfg.OutputDir,
		Scenario:  cfg.Scenario,
		Seeds:     seeds(cfg.Seed),
	}, log, progress)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	log.WithFields(logrus.Fields{
		"model":    opts.ModelPath,
		"backend":  b.Name(),
		"viewport": fmt.Sprintf("%dx%d", width, height),
		"episodes": cfg.EpisodeCount(),
	}).Info("recording")

	report := &Report{
		Backend: b.Name(),
		Width:   width,
		Height:  height,
		Camera:  cam,
	}
	report.Episodes, err = gen.Run(cfg.EpisodeCount())
	report.Elapsed = time.Since(start)
	if err != nil {
		return report, err
	}

	if cfg.Manifest.Enabled {
		id, err := saveManifest(cfg, opts.ModelPath, report)
		if err != nil {
			return report, fmt.Errorf("manifest: %w", err)
		}
		report.RunID = id
	}
	return report, nil
}

func seeds(seed int64) episode.SeedSource {
	if seed == 0 {
		return episode.ClockSeeds()
	}
	return episode.FixedSeeds(seed)
}

// Camera is the model's default camera with the configured overrides.
func Camera(stat engine.Statistic, cc config.CameraConfig) render.Camera {
	cam := render.DefaultCamera(stat)
	if cc.Azimuth != nil {
		cam.Azimuth = *cc.Azimuth
	}
	if cc.Elevation != nil {
		cam.Elevation = *cc.Elevation
	}
	if cc.Distance != nil {
		cam.Distance = *cc.Distance
	}
	if cc.Fovy != nil {
		cam.Fovy = *cc.Fovy
	}
	return cam
}

func saveManifest(cfg *config.Config, model string, report *Report) (string, error) {
	store := storage.New(cfg.Manifest.DataDir)
	if err := store.Init(); err != nil {
		return "", err
	}

	meta := storage.RunMetadata{
		Model:       model,
		Backend:     report.Backend,
		Width:       report.Width,
		Height:      report.Height,
		Duration:    cfg.Duration,
		FPS:         cfg.FPS,
		Repetitions: cfg.Repetitions,
		SeedMode:    "clock",
		OutputDir:   cfg.OutputDir,
		Scenario: fmt.Sprintf("slope [%g, %g) target_x [%g, %g)",
			cfg.Scenario.SlopeRange[0], cfg.Scenario.SlopeRange[1],
			cfg.Scenario.TargetX[0], cfg.Scenario.TargetX[1]),
	}
	if cfg.Seed != 0 {
		meta.SeedMode = "fixed"
		meta.Seed = cfg.Seed
	}

	records := make([]storage.EpisodeRecord, 0, len(report.Episodes))
	for _, e := range report.Episodes {
		records = append(records, Record(e))
	}
	return store.Save(meta, records)
}

// Record flattens an episode result into a manifest row.
func Record(e episode.Result) storage.EpisodeRecord {
	p := e.Params
	return storage.EpisodeRecord{
		Index:         p.Index,
		Label:         int(p.Label),
		File:          e.File,
		Seed:          p.Seed,
		Slope:         p.Slope,
		TargetX:       p.TargetX,
		TargetY:       p.TargetY,
		CueX:          p.CueX,
		CueY:          p.CueY,
		VelocityX:     p.VelocityX,
		VelocityY:     p.VelocityY,
		Frames:        e.Frames,
		Bytes:         e.Bytes,
		FirstCapture:  e.FirstCapture,
		LastCapture:   e.LastCapture,
		MinSeparation: e.Metrics["min_separation"],
		Contacts:      e.Metrics["contacts"],
		FinalSpeed:    e.Metrics["final_speed"],
	}
}
