// Package plotting draws the episode layouts of a recorded run.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/simrec/internal/episode"
	"github.com/san-kum/simrec/internal/storage"
)

var (
	goalColor   = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	noGoalColor = color.RGBA{R: 40, G: 110, B: 220, A: 255}
)

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

// Trajectories plots every episode's line from the cue start through the
// target to the anchor at x=1, with the target marked.
func Trajectories(title string, episodes []storage.EpisodeRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Tick.Marker = limitedTicker(8, "%.2f")
	p.Y.Tick.Marker = limitedTicker(8, "%.2f")
	p.Add(plotter.NewGrid())

	var legendGoal, legendNoGoal bool
	for _, e := range episodes {
		goal := e.Label == int(episode.Goal)
		col := noGoalColor
		if goal {
			col = goalColor
		}

		path := plotter.XYs{
			{X: e.CueX, Y: e.CueY},
			{X: 1, Y: episode.Trajectory(1, e.Slope, goal)},
		}
		line, err := plotter.NewLine(path)
		if err != nil {
			return nil, fmt.Errorf("episode %d: %w", e.Index, err)
		}
		line.LineStyle.Color = col
		line.LineStyle.Width = vg.Points(1.5)

		target, err := plotter.NewScatter(plotter.XYs{{X: e.TargetX, Y: e.TargetY}})
		if err != nil {
			return nil, fmt.Errorf("episode %d: %w", e.Index, err)
		}
		target.GlyphStyle.Color = col
		target.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, target)
		if goal && !legendGoal {
			p.Legend.Add("goal", line)
			legendGoal = true
		}
		if !goal && !legendNoGoal {
			p.Legend.Add("no goal", line)
			legendNoGoal = true
		}
	}
	return p, nil
}

func SavePNG(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
