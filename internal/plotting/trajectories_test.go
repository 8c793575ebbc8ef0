package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/simrec/internal/storage"
)

func TestTrajectoriesPlot(t *testing.T) {
	episodes := []storage.EpisodeRecord{
		{Index: 0, Label: 0, Slope: 0.2, TargetX: 0.4, TargetY: 0.38, CueX: -0.9, CueY: 0.12},
		{Index: 1, Label: 1, Slope: 0.5, TargetX: 0.1, TargetY: -0.05, CueX: -0.9, CueY: 0.45},
	}

	p, err := Trajectories("run", episodes)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title.Text != "run" {
		t.Errorf("unexpected title %q", p.Title.Text)
	}

	path := filepath.Join(t.TempDir(), "plots", "run.png")
	if err := SavePNG(p, path); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}
}

func TestLimitedTicker(t *testing.T) {
	ticks := limitedTicker(5, "%.1f").Ticks(0, 1)
	if len(ticks) != 5 || ticks[4].Value != 1 {
		t.Errorf("unexpected ticks %+v", ticks)
	}
	if got := limitedTicker(5, "%.1f").Ticks(2, 2); len(got) != 1 {
		t.Errorf("expected one tick for an empty range, got %d", len(got))
	}
}
