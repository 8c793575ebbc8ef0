package episode

import (
	"fmt"
	"math/rand"
)

// Label is the outcome class of an episode.
type Label int

const (
	NoGoal Label = 0
	Goal   Label = 1
)

// LabelFor alternates labels by index parity.
func LabelFor(index int) Label {
	return Label(index % 2)
}

func (l Label) Goal() bool { return l == Goal }

func (l Label) String() string {
	if l == Goal {
		return "goal"
	}
	return "no_goal"
}

// Trajectory is the line through (1, 0.5) with the given slope, flipped
// vertically for goal episodes.
func Trajectory(x, slope float64, goal bool) float64 {
	y := slope*(x-1) + 0.5
	if goal {
		return -y
	}
	return y
}

// Range is a closed-open interval [lo, hi).
type Range [2]float64

func (r Range) Sample(rng *rand.Rand) float64 {
	return r[0] + (r[1]-r[0])*rng.Float64()
}

func (r Range) Validate(name string) error {
	if r[1] < r[0] {
		return fmt.Errorf("%s range [%g, %g] is inverted", name, r[0], r[1])
	}
	return nil
}

// Scenario fixes everything about an episode except the random draws.
type Scenario struct {
	CueBody    string  `yaml:"cue_body"`
	TargetBody string  `yaml:"target_body"`
	SlopeRange Range   `yaml:"slope_range"`
	TargetX    Range   `yaml:"target_x_range"`
	CueX       float64 `yaml:"cue_x"`
	VelocityX  float64 `yaml:"velocity_x"`
}

const (
	DefaultCueBody    = "object0"
	DefaultTargetBody = "object1"
)

func DefaultScenario() Scenario {
	return Scenario{
		CueBody:    DefaultCueBody,
		TargetBody: DefaultTargetBody,
		SlopeRange: Range{-0.25, 0.75},
		TargetX:    Range{0, 0.8},
		CueX:       -0.9,
		VelocityX:  1,
	}
}

func (s Scenario) Validate() error {
	if s.CueBody == "" || s.TargetBody == "" {
		return fmt.Errorf("cue and target body names are required")
	}
	if s.CueBody == s.TargetBody {
		return fmt.Errorf("cue and target must be different bodies, both are '%s'", s.CueBody)
	}
	if err := s.SlopeRange.Validate("slope"); err != nil {
		return err
	}
	return s.TargetX.Validate("target_x")
}

// Params are the immutable initial conditions of one episode.
type Params struct {
	Index     int
	Label     Label
	Seed      int64
	Slope     float64
	TargetX   float64
	TargetY   float64
	CueX      float64
	CueY      float64
	VelocityX float64
	VelocityY float64
}

// Randomize draws slope then target x from a generator seeded with seed.
func Randomize(index int, seed int64, sc Scenario) Params {
	rng := rand.New(rand.NewSource(seed))
	label := LabelFor(index)
	goal := label.Goal()

	slope := sc.SlopeRange.Sample(rng)
	targetX := sc.TargetX.Sample(rng)

	direction := slope
	if goal {
		direction = -slope
	}

	return Params{
		Index:     index,
		Label:     label,
		Seed:      seed,
		Slope:     slope,
		TargetX:   targetX,
		TargetY:   Trajectory(targetX, slope, goal),
		CueX:      sc.CueX,
		CueY:      Trajectory(sc.CueX, slope, goal),
		VelocityX: sc.VelocityX,
		VelocityY: sc.VelocityX * direction,
	}
}
