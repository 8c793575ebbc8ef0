package engine

import "math"

type ObjType int

const (
	ObjBody ObjType = iota
	ObjJoint
	ObjGeom
)

type JointType int

const (
	JointFree JointType = iota
	JointSlide
)

// Nq is the number of position coordinates the joint owns.
func (t JointType) Nq() int {
	if t == JointFree {
		return 7
	}
	return 1
}

// Nv is the number of velocity coordinates the joint owns.
func (t JointType) Nv() int {
	if t == JointFree {
		return 6
	}
	return 1
}

func (t JointType) String() string {
	if t == JointFree {
		return "free"
	}
	return "slide"
}

type GeomType int

const (
	GeomPlane GeomType = iota
	GeomSphere
	GeomBox
)

func (t GeomType) String() string {
	switch t {
	case GeomPlane:
		return "plane"
	case GeomSphere:
		return "sphere"
	default:
		return "box"
	}
}

const (
	DefaultTimestep    = 0.002
	DefaultIntegrator  = "Euler"
	DefaultRestitution = 0.9
	DefaultDensity     = 1000.0
	DefaultGeomSize    = 0.05
)

var DefaultGravity = [3]float64{0, 0, -9.81}

var DefaultRGBA = [4]float32{0.5, 0.5, 0.5, 1}

type Option struct {
	Timestep    float64
	Integrator  string
	Gravity     [3]float64
	Restitution float64
	Damping     float64
}

func DefaultOption() Option {
	return Option{
		Timestep:    DefaultTimestep,
		Integrator:  DefaultIntegrator,
		Gravity:     DefaultGravity,
		Restitution: DefaultRestitution,
	}
}

// Body 0 is always the static world body.
type Body struct {
	Name   string
	Parent int
	Pos    [3]float64
	JntAdr int
	JntNum int
	Mass   float64
}

type Joint struct {
	Name    string
	Type    JointType
	Body    int
	Axis    [3]float64
	Damping float64
	QposAdr int
	DofAdr  int
}

type Geom struct {
	Name string
	Type GeomType
	Body int
	Pos  [3]float64
	Size [3]float64
	RGBA [4]float32
	Mass float64
}

type Statistic struct {
	Center [3]float64
	Extent float64
}

// Model is immutable once compiled.
type Model struct {
	Name   string
	Opt    Option
	Bodies []Body
	Joints []Joint
	Geoms  []Geom
	Nq     int
	Nv     int
	Qpos0  []float64
	Stat   Statistic
}

// Name2ID returns the index of the named object, or -1.
func (m *Model) Name2ID(obj ObjType, name string) int {
	switch obj {
	case ObjBody:
		for i, b := range m.Bodies {
			if b.Name == name {
				return i
			}
		}
	case ObjJoint:
		for i, j := range m.Joints {
			if j.Name == name {
				return i
			}
		}
	case ObjGeom:
		for i, g := range m.Geoms {
			if g.Name == name {
				return i
			}
		}
	}
	return -1
}

// BodyQposAdr is the qpos address of the body's first joint, or -1.
func (m *Model) BodyQposAdr(body int) int {
	if body < 0 || body >= len(m.Bodies) || m.Bodies[body].JntNum == 0 {
		return -1
	}
	return m.Joints[m.Bodies[body].JntAdr].QposAdr
}

// BodyDofAdr is the qvel address of the body's first joint, or -1.
func (m *Model) BodyDofAdr(body int) int {
	if body < 0 || body >= len(m.Bodies) || m.Bodies[body].JntNum == 0 {
		return -1
	}
	return m.Joints[m.Bodies[body].JntAdr].DofAdr
}

func (m *Model) invMass(body int) float64 {
	if body == 0 || m.Bodies[body].JntNum == 0 || m.Bodies[body].Mass <= 0 {
		return 0
	}
	return 1 / m.Bodies[body].Mass
}

func geomMass(g Geom) float64 {
	switch g.Type {
	case GeomSphere:
		r := g.Size[0]
		return DefaultDensity * 4.0 / 3.0 * math.Pi * r * r * r
	case GeomBox:
		return DefaultDensity * 8 * g.Size[0] * g.Size[1] * g.Size[2]
	default:
		return 0
	}
}
