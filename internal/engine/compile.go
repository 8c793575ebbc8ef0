package engine

import (
	"math"
	"strings"
)

// modelSpec is the format-neutral description produced by the parsers.
type modelSpec struct {
	Name   string
	Option Option
	World  bodySpec
}

type bodySpec struct {
	Name     string
	Pos      [3]float64
	Joints   []jointSpec
	Geoms    []geomSpec
	Children []bodySpec
}

type jointSpec struct {
	Name    string
	Type    string
	Axis    [3]float64
	Damping float64
}

type geomSpec struct {
	Name string
	Type string
	Pos  [3]float64
	Size []float64
	RGBA [4]float32
	Mass float64
}

func newJointSpec() jointSpec {
	return jointSpec{Type: "hinge", Axis: [3]float64{0, 0, 1}}
}

func newGeomSpec() geomSpec {
	return geomSpec{Type: "sphere", RGBA: DefaultRGBA, Mass: -1}
}

type compiler struct {
	path  string
	spec  *modelSpec
	model *Model
	xpos  [][3]float64
	names map[string]bool
}

func compile(path string, spec *modelSpec) (*Model, error) {
	c := &compiler{
		path:  path,
		spec:  spec,
		model: &Model{Name: spec.Name, Opt: spec.Option},
		names: map[string]bool{},
	}

	if c.model.Opt.Timestep <= 0 {
		return nil, loadErrorf(path, "timestep must be positive, got %g", c.model.Opt.Timestep)
	}

	world := spec.World
	world.Name = "world"
	if len(world.Joints) > 0 {
		return nil, loadErrorf(path, "joints are not allowed in world body")
	}
	if err := c.addBody(world, -1, [3]float64{}); err != nil {
		return nil, err
	}

	for i := range c.model.Bodies {
		if c.model.Bodies[i].JntNum > 0 && c.model.Bodies[i].Mass <= 0 {
			return nil, loadErrorf(path, "mass of moving body '%s' must be positive", c.model.Bodies[i].Name)
		}
	}

	c.computeStatistic()
	return c.model, nil
}

func (c *compiler) addBody(b bodySpec, parent int, parentPos [3]float64) error {
	m := c.model
	id := len(m.Bodies)

	if b.Name != "" {
		if c.names[b.Name] {
			return loadErrorf(c.path, "repeated body name '%s'", b.Name)
		}
		c.names[b.Name] = true
	}

	world := [3]float64{parentPos[0] + b.Pos[0], parentPos[1] + b.Pos[1], parentPos[2] + b.Pos[2]}
	m.Bodies = append(m.Bodies, Body{
		Name:   b.Name,
		Parent: parent,
		Pos:    b.Pos,
		JntAdr: len(m.Joints),
	})
	c.xpos = append(c.xpos, world)

	for _, js := range b.Joints {
		if err := c.addJoint(id, js, world, len(b.Joints)); err != nil {
			return err
		}
	}
	m.Bodies[id].JntNum = len(m.Joints) - m.Bodies[id].JntAdr

	for _, gs := range b.Geoms {
		g, err := c.makeGeom(id, gs)
		if err != nil {
			return err
		}
		m.Geoms = append(m.Geoms, g)
		m.Bodies[id].Mass += g.Mass
	}

	for _, child := range b.Children {
		if err := c.addBody(child, id, world); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) addJoint(body int, js jointSpec, world [3]float64, siblings int) error {
	m := c.model

	var jt JointType
	switch strings.ToLower(js.Type) {
	case "free":
		jt = JointFree
		if m.Bodies[body].Parent != 0 {
			return loadErrorf(c.path, "free joint '%s' can only be used on top level", js.Name)
		}
		if siblings > 1 {
			return loadErrorf(c.path, "free joint '%s' must be the only joint of its body", js.Name)
		}
	case "slide":
		jt = JointSlide
	default:
		return loadErrorf(c.path, "unsupported joint type '%s'", js.Type)
	}

	axis := js.Axis
	norm := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if jt == JointSlide {
		if norm < 1e-10 {
			return loadErrorf(c.path, "axis of joint '%s' is too small", js.Name)
		}
		axis = [3]float64{axis[0] / norm, axis[1] / norm, axis[2] / norm}
	}

	damping := js.Damping
	if damping == 0 {
		damping = m.Opt.Damping
	}

	m.Joints = append(m.Joints, Joint{
		Name:    js.Name,
		Type:    jt,
		Body:    body,
		Axis:    axis,
		Damping: damping,
		QposAdr: m.Nq,
		DofAdr:  m.Nv,
	})

	if jt == JointFree {
		m.Qpos0 = append(m.Qpos0, world[0], world[1], world[2], 1, 0, 0, 0)
	} else {
		m.Qpos0 = append(m.Qpos0, 0)
	}
	m.Nq += jt.Nq()
	m.Nv += jt.Nv()
	return nil
}

func (c *compiler) makeGeom(body int, gs geomSpec) (Geom, error) {
	g := Geom{Name: gs.Name, Body: body, Pos: gs.Pos, RGBA: gs.RGBA}

	switch strings.ToLower(gs.Type) {
	case "plane":
		g.Type = GeomPlane
		if len(gs.Size) < 2 {
			return g, loadErrorf(c.path, "plane '%s' needs at least 2 size values", gs.Name)
		}
		if body != 0 {
			return g, loadErrorf(c.path, "plane '%s' is only allowed in world body", gs.Name)
		}
	case "sphere":
		g.Type = GeomSphere
		if len(gs.Size) < 1 || gs.Size[0] <= 0 {
			return g, loadErrorf(c.path, "sphere '%s' needs a positive radius", gs.Name)
		}
	case "box":
		g.Type = GeomBox
		if len(gs.Size) < 3 {
			return g, loadErrorf(c.path, "box '%s' needs 3 size values", gs.Name)
		}
	default:
		return g, loadErrorf(c.path, "unknown geom type '%s'", gs.Type)
	}

	copy(g.Size[:], gs.Size)
	if gs.Mass >= 0 {
		g.Mass = gs.Mass
	} else {
		g.Mass = geomMass(g)
	}
	return g, nil
}

// computeStatistic derives a bounding box over all finite geoms at qpos0.
func (c *compiler) computeStatistic() {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	found := false

	for _, g := range c.model.Geoms {
		var half [3]float64
		switch g.Type {
		case GeomSphere:
			half = [3]float64{g.Size[0], g.Size[0], g.Size[0]}
		case GeomBox:
			half = g.Size
		case GeomPlane:
			if g.Size[0] <= 0 || g.Size[1] <= 0 {
				continue
			}
			half = [3]float64{g.Size[0], g.Size[1], 0}
		}

		center := c.xpos[g.Body]
		for k := 0; k < 3; k++ {
			p := center[k] + g.Pos[k]
			lo[k] = math.Min(lo[k], p-half[k])
			hi[k] = math.Max(hi[k], p+half[k])
		}
		found = true
	}

	if !found {
		c.model.Stat = Statistic{Extent: 1}
		return
	}

	extent := 0.0
	for k := 0; k < 3; k++ {
		c.model.Stat.Center[k] = 0.5 * (lo[k] + hi[k])
		extent = math.Max(extent, hi[k]-lo[k])
	}
	if extent <= 0 {
		extent = 1
	}
	c.model.Stat.Extent = extent
}
