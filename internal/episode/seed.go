package episode

import "time"

// SeedSource returns the seed for an episode index.
type SeedSource func(episode int) int64

// ClockSeeds reseeds from the wall clock plus the episode index at the start
// of every episode, so runs are not reproducible.
func ClockSeeds() SeedSource {
	return func(episode int) int64 {
		return time.Now().UnixNano() + int64(episode)
	}
}

// FixedSeeds gives episode i the seed base+i.
func FixedSeeds(base int64) SeedSource {
	return func(episode int) int64 {
		return base + int64(episode)
	}
}
