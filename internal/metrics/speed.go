package metrics

type FinalSpeed struct {
	name  string
	speed float64
}

func NewFinalSpeed() *FinalSpeed {
	return &FinalSpeed{name: "final_speed"}
}

func (f *FinalSpeed) Name() string {
	return f.name
}

func (f *FinalSpeed) Observe(s Sample) {
	f.speed = s.CueVelocity.Len()
}

func (f *FinalSpeed) Value() float64 {
	return f.speed
}

func (f *FinalSpeed) Reset() {
	f.speed = 0
}
