// Package episode generates labeled recordings.
//
// Episode i is labeled i%2 (1 = goal). Its cue and target are placed on a
// straight line through a fixed anchor at x=1, mirrored for goal episodes,
// and the cue is driven along that line at constant velocity while frames
// are captured at most every 1/fps seconds of simulation time.
package episode
