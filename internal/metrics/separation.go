package metrics

import "math"

// MinSeparation is the closest planar distance between cue and target centres.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string {
	return m.name
}

func (m *MinSeparation) Observe(s Sample) {
	d := math.Hypot(s.Cue[0]-s.Target[0], s.Cue[1]-s.Target[1])
	if d < m.min {
		m.min = d
	}
}

func (m *MinSeparation) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() {
	m.min = math.Inf(1)
}
