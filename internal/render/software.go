package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/simrec/internal/dynamo"
	"github.com/san-kum/simrec/internal/engine"
)

const (
	ambient  = 0.3
	diffuse  = 0.7
	rowChunk = 16
)

// Background is the clear colour of the software rasterizer.
var Background = [3]byte{0, 0, 0}

// Software ray-casts every pixel against the scene geoms.
type Software struct{}

func NewSoftware() *Software { return &Software{} }

func (r *Software) Name() string { return "software" }
func (r *Software) Close()       {}

func (r *Software) Rasterize(s *Scene, fb *FrameBuffer) error {
	vp := s.Camera.ViewProjection(fb.Width, fb.Height)
	inv := vp.Inv()
	eye := s.Camera.Eye()

	dynamo.ParallelFor(fb.Height, rowChunk, func(start, end int) {
		for y := start; y < end; y++ {
			ny := 2*(float64(y)+0.5)/float64(fb.Height) - 1
			for x := 0; x < fb.Width; x++ {
				nx := 2*(float64(x)+0.5)/float64(fb.Width) - 1
				far := mgl64.TransformCoordinate(mgl64.Vec3{nx, ny, 1}, inv)
				dir := far.Sub(eye).Normalize()

				i := y*fb.Width + x
				rgb, depth := shade(s, vp, eye, dir)
				fb.RGB[3*i] = rgb[0]
				fb.RGB[3*i+1] = rgb[1]
				fb.RGB[3*i+2] = rgb[2]
				fb.Depth[i] = depth
			}
		}
	})
	return nil
}

func shade(s *Scene, vp mgl64.Mat4, eye, dir mgl64.Vec3) ([3]byte, float32) {
	best := math.Inf(1)
	var normal mgl64.Vec3
	var hit *GeomInstance

	for k := range s.Geoms {
		g := &s.Geoms[k]
		t, n, ok := intersect(g, eye, dir)
		if ok && t < best {
			best, normal, hit = t, n, g
		}
	}
	if hit == nil {
		return Background, 1
	}

	p := eye.Add(dir.Mul(best))
	clip := vp.Mul4x1(p.Vec4(1))
	depth := float32(0.5*clip[2]/clip[3] + 0.5)
	if depth < 0 || depth > 1 {
		return Background, 1
	}

	light := ambient + diffuse*math.Abs(normal.Dot(dir))
	var rgb [3]byte
	for c := 0; c < 3; c++ {
		rgb[c] = byte(mgl64.Clamp(float64(hit.RGBA[c])*light, 0, 1)*255 + 0.5)
	}
	return rgb, depth
}

func intersect(g *GeomInstance, o, d mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	switch g.Type {
	case engine.GeomSphere:
		return intersectSphere(g, o, d)
	case engine.GeomPlane:
		return intersectPlane(g, o, d)
	default:
		return intersectBox(g, o, d)
	}
}

func intersectSphere(g *GeomInstance, o, d mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	r := g.Size[0]
	oc := o.Sub(g.Pos)
	b := oc.Dot(d)
	c := oc.Dot(oc) - r*r
	disc := b*b - c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t <= 0 {
		t = -b + sq
	}
	if t <= 0 {
		return 0, mgl64.Vec3{}, false
	}
	n := o.Add(d.Mul(t)).Sub(g.Pos).Normalize()
	return t, n, true
}

// intersectPlane treats size[0], size[1] as half extents; zero means infinite.
func intersectPlane(g *GeomInstance, o, d mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	n := g.Rot.Col(2)
	den := n.Dot(d)
	if math.Abs(den) < 1e-12 {
		return 0, mgl64.Vec3{}, false
	}
	t := g.Pos.Sub(o).Dot(n) / den
	if t <= 0 {
		return 0, mgl64.Vec3{}, false
	}
	local := g.Rot.Transpose().Mul3x1(o.Add(d.Mul(t)).Sub(g.Pos))
	if g.Size[0] > 0 && math.Abs(local[0]) > g.Size[0] {
		return 0, mgl64.Vec3{}, false
	}
	if g.Size[1] > 0 && math.Abs(local[1]) > g.Size[1] {
		return 0, mgl64.Vec3{}, false
	}
	return t, n, true
}

func intersectBox(g *GeomInstance, o, d mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	rt := g.Rot.Transpose()
	lo := rt.Mul3x1(o.Sub(g.Pos))
	ld := rt.Mul3x1(d)

	tmin, tmax := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	for k := 0; k < 3; k++ {
		h := g.Size[k]
		if math.Abs(ld[k]) < 1e-12 {
			if math.Abs(lo[k]) > h {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (-h - lo[k]) / ld[k]
		t2 := (h - lo[k]) / ld[k]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, k, s
		}
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, mgl64.Vec3{}, false
		}
	}
	if tmax <= 0 || axis < 0 {
		return 0, mgl64.Vec3{}, false
	}

	t := tmin
	if t <= 0 {
		t = tmax
	}
	var ln mgl64.Vec3
	ln[axis] = sign
	return t, g.Rot.Mul3x1(ln), true
}
