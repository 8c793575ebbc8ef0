package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Fraction of the penetration removed per step.
const positionCorrection = 0.8

type contact struct {
	normal mgl64.Vec3 // from the first geom towards the second
	depth  float64
}

func (d *Data) geomCenter(g Geom) mgl64.Vec3 {
	return d.Xpos[g.Body].Add(d.Xquat[g.Body].Rotate(mgl64.Vec3(g.Pos)))
}

func (d *Data) resolveContacts() {
	m := d.model
	d.Ncon = 0

	for i := 0; i < len(m.Geoms); i++ {
		for j := i + 1; j < len(m.Geoms); j++ {
			a, b := m.Geoms[i], m.Geoms[j]
			if a.Body == b.Body {
				continue
			}
			invA, invB := m.invMass(a.Body), m.invMass(b.Body)
			if invA+invB == 0 {
				continue
			}

			c, ok := d.collide(a, b)
			if !ok {
				continue
			}
			d.Ncon++

			vn := d.BodyVelocity(b.Body).Sub(d.BodyVelocity(a.Body)).Dot(c.normal)
			if vn < 0 {
				impulse := -(1 + m.Opt.Restitution) * vn / (invA + invB)
				d.applyImpulse(a.Body, c.normal.Mul(-impulse))
				d.applyImpulse(b.Body, c.normal.Mul(impulse))
			}

			corr := c.normal.Mul(positionCorrection * c.depth / (invA + invB))
			d.displace(a.Body, corr.Mul(-invA))
			d.displace(b.Body, corr.Mul(invB))
			d.Forward()
		}
	}
}

func (d *Data) collide(a, b Geom) (contact, bool) {
	switch {
	case a.Type == GeomSphere && b.Type == GeomSphere:
		return d.sphereSphere(a, b)
	case a.Type == GeomPlane && b.Type == GeomSphere:
		return d.planeSphere(a, b)
	case a.Type == GeomSphere && b.Type == GeomPlane:
		c, ok := d.planeSphere(b, a)
		c.normal = c.normal.Mul(-1)
		return c, ok
	case a.Type == GeomBox && b.Type == GeomSphere:
		return d.boxSphere(a, b)
	case a.Type == GeomSphere && b.Type == GeomBox:
		c, ok := d.boxSphere(b, a)
		c.normal = c.normal.Mul(-1)
		return c, ok
	}
	return contact{}, false
}

func (d *Data) sphereSphere(a, b Geom) (contact, bool) {
	delta := d.geomCenter(b).Sub(d.geomCenter(a))
	dist := delta.Len()
	depth := a.Size[0] + b.Size[0] - dist
	if depth <= 0 {
		return contact{}, false
	}

	n := mgl64.Vec3{1, 0, 0}
	if dist > 1e-12 {
		n = delta.Mul(1 / dist)
	}
	return contact{normal: n, depth: depth}, true
}

// planeSphere treats planes as horizontal; a zero half-size means unbounded.
func (d *Data) planeSphere(p, s Geom) (contact, bool) {
	center := d.geomCenter(s)
	origin := d.geomCenter(p)

	if p.Size[0] > 0 && math.Abs(center[0]-origin[0]) > p.Size[0] {
		return contact{}, false
	}
	if p.Size[1] > 0 && math.Abs(center[1]-origin[1]) > p.Size[1] {
		return contact{}, false
	}

	depth := s.Size[0] - (center[2] - origin[2])
	if depth <= 0 {
		return contact{}, false
	}
	return contact{normal: mgl64.Vec3{0, 0, 1}, depth: depth}, true
}

func (d *Data) boxSphere(box, s Geom) (contact, bool) {
	q := d.Xquat[box.Body]
	local := q.Inverse().Rotate(d.geomCenter(s).Sub(d.geomCenter(box)))
	half := mgl64.Vec3(box.Size)
	r := s.Size[0]

	var closest mgl64.Vec3
	for k := 0; k < 3; k++ {
		closest[k] = mgl64.Clamp(local[k], -half[k], half[k])
	}

	diff := local.Sub(closest)
	dist := diff.Len()
	if dist > r {
		return contact{}, false
	}

	var n mgl64.Vec3
	depth := r - dist
	if dist > 1e-12 {
		n = diff.Mul(1 / dist)
	} else {
		// centre inside the box: leave through the nearest face
		best := math.Inf(1)
		for k := 0; k < 3; k++ {
			gap := half[k] - math.Abs(local[k])
			if gap < best {
				best = gap
				n = mgl64.Vec3{}
				n[k] = math.Copysign(1, local[k])
			}
		}
		depth = r + best
	}

	return contact{normal: q.Rotate(n), depth: depth}, true
}

func (d *Data) applyImpulse(body int, p mgl64.Vec3) {
	m := d.model
	inv := m.invMass(body)
	if inv == 0 {
		return
	}

	b := m.Bodies[body]
	for j := b.JntAdr; j < b.JntAdr+b.JntNum; j++ {
		jnt := m.Joints[j]
		switch jnt.Type {
		case JointFree:
			for k := 0; k < 3; k++ {
				d.Qvel[jnt.DofAdr+k] += p[k] * inv
			}
		case JointSlide:
			d.Qvel[jnt.DofAdr] += mgl64.Vec3(jnt.Axis).Dot(p) * inv
		}
	}
}

func (d *Data) displace(body int, delta mgl64.Vec3) {
	m := d.model
	if m.invMass(body) == 0 {
		return
	}

	b := m.Bodies[body]
	for j := b.JntAdr; j < b.JntAdr+b.JntNum; j++ {
		jnt := m.Joints[j]
		switch jnt.Type {
		case JointFree:
			for k := 0; k < 3; k++ {
				d.Qpos[jnt.QposAdr+k] += delta[k]
			}
		case JointSlide:
			d.Qpos[jnt.QposAdr] += mgl64.Vec3(jnt.Axis).Dot(delta)
		}
	}
}
