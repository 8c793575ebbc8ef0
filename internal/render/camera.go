package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/simrec/internal/engine"
)

const (
	DefaultAzimuth   = 90.0
	DefaultElevation = -45.0
	DefaultFovy      = 45.0
)

// LookatOffset shifts the default look-at point off the model centre.
var LookatOffset = mgl64.Vec3{0.2, 0, 0}

// Camera is a free camera orbiting Lookat. Angles are in degrees.
type Camera struct {
	Lookat    mgl64.Vec3
	Distance  float64
	Azimuth   float64
	Elevation float64
	Fovy      float64
	Znear     float64
	Zfar      float64
}

// DefaultCamera frames the model: look-at at the centre plus LookatOffset,
// distance 0.8 of the model extent.
func DefaultCamera(stat engine.Statistic) Camera {
	extent := stat.Extent
	if extent <= 0 {
		extent = 1
	}
	return Camera{
		Lookat:    mgl64.Vec3(stat.Center).Add(LookatOffset),
		Distance:  0.8 * extent,
		Azimuth:   DefaultAzimuth,
		Elevation: DefaultElevation,
		Fovy:      DefaultFovy,
		Znear:     0.01 * extent,
		Zfar:      50 * extent,
	}
}

func (c Camera) Forward() mgl64.Vec3 {
	az := mgl64.DegToRad(c.Azimuth)
	el := mgl64.DegToRad(c.Elevation)
	return mgl64.Vec3{
		math.Cos(el) * math.Cos(az),
		math.Cos(el) * math.Sin(az),
		math.Sin(el),
	}
}

func (c Camera) Eye() mgl64.Vec3 {
	return c.Lookat.Sub(c.Forward().Mul(c.Distance))
}

func (c Camera) up() mgl64.Vec3 {
	if math.Abs(c.Elevation) >= 89.999 {
		return mgl64.Vec3{0, 1, 0}
	}
	return mgl64.Vec3{0, 0, 1}
}

func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Lookat, c.up())
}

func (c Camera) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.Fovy), aspect, c.Znear, c.Zfar)
}

// ViewProjection is Projection * View for a width x height viewport.
func (c Camera) ViewProjection(width, height int) mgl64.Mat4 {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	return c.Projection(aspect).Mul4(c.View())
}
