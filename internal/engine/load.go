package engine

import (
	"bytes"
	"encoding/gob"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a model, choosing the format by extension: ".mjb" is the binary
// form written by SaveBinary, ".yaml"/".yml" is textual YAML, anything else is
// parsed as XML.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if strings.EqualFold(filepath.Ext(path), ".mjb") {
			return nil, loadErrorf(path, "Could not load binary model")
		}
		return nil, loadErrorf(path, "could not open file '%s'", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mjb":
		return decodeBinary(path, data)
	case ".yaml", ".yml":
		spec, err := parseYAML(path, data)
		if err != nil {
			return nil, err
		}
		return compile(path, spec)
	default:
		spec, err := parseXML(path, data)
		if err != nil {
			return nil, err
		}
		return compile(path, spec)
	}
}

// SaveBinary writes a compiled model that Load reads back from a ".mjb" path.
func SaveBinary(m *Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.WriteString(f, binaryMagic); err != nil {
		return err
	}
	return gob.NewEncoder(f).Encode(m)
}

const binaryMagic = "SIMRECMB1\n"

func decodeBinary(path string, data []byte) (*Model, error) {
	if !bytes.HasPrefix(data, []byte(binaryMagic)) {
		return nil, loadErrorf(path, "Could not load binary model")
	}

	var m Model
	if err := gob.NewDecoder(bytes.NewReader(data[len(binaryMagic):])).Decode(&m); err != nil {
		return nil, loadErrorf(path, "Could not load binary model: %v", err)
	}
	if len(m.Bodies) == 0 || len(m.Qpos0) != m.Nq {
		return nil, loadErrorf(path, "Could not load binary model: inconsistent sizes")
	}
	return &m, nil
}

type xmlModel struct {
	XMLName   xml.Name   `xml:"mujoco"`
	Model     string     `xml:"model,attr"`
	Option    *xmlOption `xml:"option"`
	Worldbody xmlBody    `xml:"worldbody"`
}

type xmlOption struct {
	Timestep    string `xml:"timestep,attr"`
	Integrator  string `xml:"integrator,attr"`
	Gravity     string `xml:"gravity,attr"`
	Restitution string `xml:"restitution,attr"`
	Damping     string `xml:"damping,attr"`
}

type xmlBody struct {
	Name       string         `xml:"name,attr"`
	Pos        string         `xml:"pos,attr"`
	Joints     []xmlJoint     `xml:"joint"`
	FreeJoints []xmlFreeJoint `xml:"freejoint"`
	Geoms      []xmlGeom      `xml:"geom"`
	Bodies     []xmlBody      `xml:"body"`
}

type xmlJoint struct {
	Name    string `xml:"name,attr"`
	Type    string `xml:"type,attr"`
	Axis    string `xml:"axis,attr"`
	Damping string `xml:"damping,attr"`
}

type xmlFreeJoint struct {
	Name string `xml:"name,attr"`
}

type xmlGeom struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	Pos  string `xml:"pos,attr"`
	Size string `xml:"size,attr"`
	RGBA string `xml:"rgba,attr"`
	Mass string `xml:"mass,attr"`
}

// attrParser accumulates the first attribute error so conversion code stays linear.
type attrParser struct {
	path string
	err  error
}

func (p *attrParser) floats(elem, attr, s string, n int) []float64 {
	if p.err != nil || strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.Fields(s)
	if n > 0 && len(fields) != n {
		p.err = loadErrorf(p.path, "%s: attribute '%s' expects %d values, got %d", elem, attr, n, len(fields))
		return nil
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			p.err = loadErrorf(p.path, "%s: bad number '%s' in attribute '%s'", elem, f, attr)
			return nil
		}
		out[i] = v
	}
	return out
}

func (p *attrParser) float(elem, attr, s string, def float64) float64 {
	v := p.floats(elem, attr, s, 1)
	if v == nil {
		return def
	}
	return v[0]
}

func (p *attrParser) vec3(elem, attr, s string, def [3]float64) [3]float64 {
	v := p.floats(elem, attr, s, 3)
	if v == nil {
		return def
	}
	return [3]float64{v[0], v[1], v[2]}
}

func parseXML(path string, data []byte) (*modelSpec, error) {
	var doc xmlModel
	if err := xml.Unmarshal(data, &doc); err != nil {
		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			return nil, loadErrorf(path, "XML Error: %s, line %d", syn.Msg, syn.Line)
		}
		return nil, loadErrorf(path, "XML Error: %v", err)
	}

	p := &attrParser{path: path}
	spec := &modelSpec{Name: doc.Model, Option: DefaultOption()}

	if o := doc.Option; o != nil {
		spec.Option.Timestep = p.float("option", "timestep", o.Timestep, spec.Option.Timestep)
		if o.Integrator != "" {
			spec.Option.Integrator = o.Integrator
		}
		spec.Option.Gravity = p.vec3("option", "gravity", o.Gravity, spec.Option.Gravity)
		spec.Option.Restitution = p.float("option", "restitution", o.Restitution, spec.Option.Restitution)
		spec.Option.Damping = p.float("option", "damping", o.Damping, spec.Option.Damping)
	}

	spec.World = p.body(doc.Worldbody)
	if p.err != nil {
		return nil, p.err
	}
	return spec, nil
}

func (p *attrParser) body(xb xmlBody) bodySpec {
	elem := "body"
	if xb.Name != "" {
		elem = fmt.Sprintf("body '%s'", xb.Name)
	}

	b := bodySpec{Name: xb.Name, Pos: p.vec3(elem, "pos", xb.Pos, [3]float64{})}

	for _, fj := range xb.FreeJoints {
		js := newJointSpec()
		js.Name = fj.Name
		js.Type = "free"
		b.Joints = append(b.Joints, js)
	}
	for _, xj := range xb.Joints {
		js := newJointSpec()
		js.Name = xj.Name
		if xj.Type != "" {
			js.Type = xj.Type
		}
		js.Axis = p.vec3(elem, "axis", xj.Axis, js.Axis)
		js.Damping = p.float(elem, "damping", xj.Damping, 0)
		b.Joints = append(b.Joints, js)
	}

	for _, xg := range xb.Geoms {
		gs := newGeomSpec()
		gs.Name = xg.Name
		if xg.Type != "" {
			gs.Type = xg.Type
		}
		gs.Pos = p.vec3(elem, "pos", xg.Pos, gs.Pos)
		gs.Size = p.floats(elem, "size", xg.Size, 0)
		if rgba := p.floats(elem, "rgba", xg.RGBA, 4); rgba != nil {
			gs.RGBA = [4]float32{float32(rgba[0]), float32(rgba[1]), float32(rgba[2]), float32(rgba[3])}
		}
		gs.Mass = p.float(elem, "mass", xg.Mass, gs.Mass)
		b.Geoms = append(b.Geoms, gs)
	}

	for _, child := range xb.Bodies {
		b.Children = append(b.Children, p.body(child))
	}
	return b
}

type yamlModel struct {
	Model     string     `yaml:"model"`
	Option    yamlOption `yaml:"option"`
	Worldbody yamlBody   `yaml:"worldbody"`
}

type yamlOption struct {
	Timestep    *float64  `yaml:"timestep"`
	Integrator  string    `yaml:"integrator"`
	Gravity     []float64 `yaml:"gravity"`
	Restitution *float64  `yaml:"restitution"`
	Damping     float64   `yaml:"damping"`
}

type yamlBody struct {
	Name   string      `yaml:"name"`
	Pos    []float64   `yaml:"pos"`
	Joints []yamlJoint `yaml:"joints"`
	Geoms  []yamlGeom  `yaml:"geoms"`
	Bodies []yamlBody  `yaml:"bodies"`
}

type yamlJoint struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Axis    []float64 `yaml:"axis"`
	Damping float64   `yaml:"damping"`
}

type yamlGeom struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type"`
	Pos  []float64 `yaml:"pos"`
	Size []float64 `yaml:"size"`
	RGBA []float64 `yaml:"rgba"`
	Mass *float64  `yaml:"mass"`
}

func parseYAML(path string, data []byte) (*modelSpec, error) {
	var doc yamlModel
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, loadErrorf(path, "YAML Error: %v", err)
	}

	spec := &modelSpec{Name: doc.Model, Option: DefaultOption()}
	if doc.Option.Timestep != nil {
		spec.Option.Timestep = *doc.Option.Timestep
	}
	if doc.Option.Integrator != "" {
		spec.Option.Integrator = doc.Option.Integrator
	}
	if doc.Option.Restitution != nil {
		spec.Option.Restitution = *doc.Option.Restitution
	}
	spec.Option.Damping = doc.Option.Damping

	var err error
	if spec.Option.Gravity, err = yamlVec3(path, "option gravity", doc.Option.Gravity, DefaultGravity); err != nil {
		return nil, err
	}
	if spec.World, err = yamlToBody(path, doc.Worldbody); err != nil {
		return nil, err
	}
	return spec, nil
}

func yamlVec3(path, what string, v []float64, def [3]float64) ([3]float64, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return [3]float64{v[0], v[1], v[2]}, nil
	default:
		return def, loadErrorf(path, "%s expects 3 values, got %d", what, len(v))
	}
}

func yamlToBody(path string, yb yamlBody) (bodySpec, error) {
	b := bodySpec{Name: yb.Name}
	var err error
	if b.Pos, err = yamlVec3(path, "body '"+yb.Name+"' pos", yb.Pos, [3]float64{}); err != nil {
		return b, err
	}

	for _, yj := range yb.Joints {
		js := newJointSpec()
		js.Name = yj.Name
		if yj.Type != "" {
			js.Type = yj.Type
		}
		if js.Axis, err = yamlVec3(path, "joint '"+yj.Name+"' axis", yj.Axis, js.Axis); err != nil {
			return b, err
		}
		js.Damping = yj.Damping
		b.Joints = append(b.Joints, js)
	}

	for _, yg := range yb.Geoms {
		gs := newGeomSpec()
		gs.Name = yg.Name
		if yg.Type != "" {
			gs.Type = yg.Type
		}
		if gs.Pos, err = yamlVec3(path, "geom '"+yg.Name+"' pos", yg.Pos, gs.Pos); err != nil {
			return b, err
		}
		gs.Size = yg.Size
		switch len(yg.RGBA) {
		case 0:
		case 4:
			gs.RGBA = [4]float32{float32(yg.RGBA[0]), float32(yg.RGBA[1]), float32(yg.RGBA[2]), float32(yg.RGBA[3])}
		default:
			return b, loadErrorf(path, "geom '%s' rgba expects 4 values, got %d", yg.Name, len(yg.RGBA))
		}
		if yg.Mass != nil {
			gs.Mass = *yg.Mass
		}
		b.Geoms = append(b.Geoms, gs)
	}

	for _, child := range yb.Bodies {
		cb, err := yamlToBody(path, child)
		if err != nil {
			return b, err
		}
		b.Children = append(b.Children, cb)
	}
	return b, nil
}
