// Package engine is a small planar rigid-body simulator with the surface the
// recorder needs from a physics engine: a compiled [Model] loaded from XML,
// YAML or binary files, a mutable [Data] holding generalized positions and
// velocities, name lookup, forward kinematics and a fixed-step integrator with
// sphere contacts.
//
// Layout follows the usual generalized-coordinate convention: each joint owns
// a slice of qpos starting at QposAdr and a slice of qvel starting at DofAdr.
// Slide joints own one of each; free joints own seven positions (xyz plus a
// unit quaternion) and six velocities (linear then angular).
package engine
