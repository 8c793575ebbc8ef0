//go:build egl || glfw

package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/simrec/internal/engine"
)

const (
	sphereSlices = 24
	sphereStacks = 16
	// planeHalfSize is used for planes declared with zero size.
	planeHalfSize = 100.0
)

const vertexShader = `#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
uniform mat4 mvp;
uniform mat3 normalMat;
out vec3 vNormal;
void main() {
	vNormal = normalMat * normal;
	gl_Position = mvp * vec4(position, 1.0);
}
` + "\x00"

const fragmentShader = `#version 410 core
in vec3 vNormal;
uniform vec4 color;
uniform vec3 viewDir;
out vec4 fragColor;
void main() {
	float light = 0.3 + 0.7 * abs(dot(normalize(vNormal), viewDir));
	fragColor = vec4(color.rgb * light, color.a);
}
` + "\x00"

type mesh struct {
	vao   uint32
	vbo   uint32
	count int32
}

// GL draws into an offscreen framebuffer object of a current GL context.
type GL struct {
	width, height int
	fbo           uint32
	colorRB       uint32
	depthRB       uint32
	program       uint32
	meshes        map[engine.GeomType]mesh

	locMVP, locNormal, locColor, locView int32
}

// NewGL needs a current context; the caller's backend provides it.
func NewGL(width, height int) (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to init opengl: %v", err)
	}

	r := &GL{width: width, height: height, meshes: make(map[engine.GeomType]mesh)}
	if err := r.initFramebuffer(); err != nil {
		r.Close()
		return nil, err
	}

	program, err := createProgram(vertexShader, fragmentShader)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.program = program
	r.locMVP = gl.GetUniformLocation(program, gl.Str("mvp\x00"))
	r.locNormal = gl.GetUniformLocation(program, gl.Str("normalMat\x00"))
	r.locColor = gl.GetUniformLocation(program, gl.Str("color\x00"))
	r.locView = gl.GetUniformLocation(program, gl.Str("viewDir\x00"))

	r.meshes[engine.GeomSphere] = uploadMesh(sphereVertices())
	r.meshes[engine.GeomBox] = uploadMesh(boxVertices())
	r.meshes[engine.GeomPlane] = uploadMesh(planeVertices())
	return r, nil
}

func (r *GL) Name() string { return "opengl" }

func (r *GL) initFramebuffer() error {
	gl.GenFramebuffers(1, &r.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)

	gl.GenRenderbuffers(1, &r.colorRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, r.colorRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGB8, int32(r.width), int32(r.height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, r.colorRB)

	gl.GenRenderbuffers(1, &r.depthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, r.depthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(r.width), int32(r.height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, r.depthRB)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("offscreen framebuffer incomplete: 0x%x", status)
	}
	return nil
}

func (r *GL) Rasterize(s *Scene, fb *FrameBuffer) error {
	w, h := min(fb.Width, r.width), min(fb.Height, r.height)

	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(float32(Background[0])/255, float32(Background[1])/255, float32(Background[2])/255, 1)
	gl.Enable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	vp := s.Camera.ViewProjection(w, h)
	fwd := s.Camera.Forward()
	gl.Uniform3f(r.locView, float32(fwd[0]), float32(fwd[1]), float32(fwd[2]))

	for _, g := range s.Geoms {
		m, ok := r.meshes[g.Type]
		if !ok {
			continue
		}
		scale := geomScale(g)
		model := mgl64.Translate3D(g.Pos[0], g.Pos[1], g.Pos[2]).
			Mul4(g.Rot.Mat4()).
			Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
		normal := g.Rot.Mul3(mgl64.Diag3(mgl64.Vec3{1 / scale[0], 1 / scale[1], 1 / scale[2]}))

		mvp := toMat4f(vp.Mul4(model))
		nm := toMat3f(normal)
		gl.UniformMatrix4fv(r.locMVP, 1, false, &mvp[0])
		gl.UniformMatrix3fv(r.locNormal, 1, false, &nm[0])
		gl.Uniform4f(r.locColor, g.RGBA[0], g.RGBA[1], g.RGBA[2], g.RGBA[3])

		gl.BindVertexArray(m.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
	gl.BindVertexArray(0)

	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(fb.RGB))
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.DEPTH_COMPONENT, gl.FLOAT, gl.Ptr(fb.Depth))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

func (r *GL) Close() {
	for _, m := range r.meshes {
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteVertexArrays(1, &m.vao)
	}
	r.meshes = nil
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	if r.colorRB != 0 {
		gl.DeleteRenderbuffers(1, &r.colorRB)
	}
	if r.depthRB != 0 {
		gl.DeleteRenderbuffers(1, &r.depthRB)
	}
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
	}
	r.fbo, r.colorRB, r.depthRB = 0, 0, 0
}

func geomScale(g GeomInstance) mgl64.Vec3 {
	switch g.Type {
	case engine.GeomSphere:
		return mgl64.Vec3{g.Size[0], g.Size[0], g.Size[0]}
	case engine.GeomPlane:
		sx, sy := g.Size[0], g.Size[1]
		if sx <= 0 {
			sx = planeHalfSize
		}
		if sy <= 0 {
			sy = planeHalfSize
		}
		return mgl64.Vec3{sx, sy, 1}
	default:
		return mgl64.Vec3(g.Size)
	}
}

func toMat4f(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func toMat3f(m mgl64.Mat3) mgl32.Mat3 {
	var out mgl32.Mat3
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func compileShader(source string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

func createProgram(vSource, fSource string) (uint32, error) {
	vShader, err := compileShader(vSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fShader, err := compileShader(fSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vShader)
	gl.AttachShader(program, fShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vShader)
	gl.DeleteShader(fShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link render program")
	}
	return program, nil
}

// uploadMesh takes interleaved position+normal triangles.
func uploadMesh(verts []float32) mesh {
	var m mesh
	m.count = int32(len(verts) / 6)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(3*4))
	gl.BindVertexArray(0)
	return m
}

func sphereVertices() []float32 {
	point := func(i, j int) [3]float32 {
		theta := math.Pi * float64(j) / sphereStacks
		phi := 2 * math.Pi * float64(i) / sphereSlices
		return [3]float32{
			float32(math.Sin(theta) * math.Cos(phi)),
			float32(math.Sin(theta) * math.Sin(phi)),
			float32(math.Cos(theta)),
		}
	}

	verts := make([]float32, 0, sphereSlices*sphereStacks*6*6)
	for j := 0; j < sphereStacks; j++ {
		for i := 0; i < sphereSlices; i++ {
			a, b := point(i, j), point(i+1, j)
			c, d := point(i+1, j+1), point(i, j+1)
			// unit sphere: the normal equals the position
			for _, p := range [][3]float32{a, d, c, a, c, b} {
				verts = append(verts, p[0], p[1], p[2], p[0], p[1], p[2])
			}
		}
	}
	return verts
}

func boxVertices() []float32 {
	verts := make([]float32, 0, 6*6*6)
	for axis := 0; axis < 3; axis++ {
		for _, sign := range []float32{-1, 1} {
			u, v := (axis+1)%3, (axis+2)%3
			corner := func(su, sv float32) []float32 {
				var p, n [3]float32
				p[axis], p[u], p[v] = sign, su, sv
				n[axis] = sign
				return []float32{p[0], p[1], p[2], n[0], n[1], n[2]}
			}
			for _, c := range [][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, -1}, {1, 1}, {-1, 1}} {
				verts = append(verts, corner(c[0], c[1])...)
			}
		}
	}
	return verts
}

func planeVertices() []float32 {
	return []float32{
		-1, -1, 0, 0, 0, 1,
		1, -1, 0, 0, 0, 1,
		1, 1, 0, 0, 0, 1,
		-1, -1, 0, 0, 0, 1,
		1, 1, 0, 0, 0, 1,
		-1, 1, 0, 0, 0, 1,
	}
}
