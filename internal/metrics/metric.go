// Package metrics summarises an episode from per-step samples.
package metrics

import "github.com/go-gl/mathgl/mgl64"

// Sample is the state observed after one simulation step.
type Sample struct {
	Time        float64
	Cue         mgl64.Vec3
	Target      mgl64.Vec3
	CueVelocity mgl64.Vec3
	Contacts    int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded for every episode.
func Standard() []Metric {
	return []Metric{NewMinSeparation(), NewContacts(), NewFinalSpeed()}
}

// Collect reads every metric into a name-keyed map.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
