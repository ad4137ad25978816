// Package renderer draws fractal tiles with OpenGL 4.
//
// Tiles are drawn into an offscreen colour texture that persists between
// frames, so a sweep can build the image up over many event loop turns.
// Present copies it to whatever framebuffer the window system has bound.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/fractal4d/fractal"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/programs"
)

// Attribute locations are bound before linking so the vertex array layout
// survives program reloads.
const (
	vertexPositionAttrib = 0
	locationAttrib       = 1
)

var ErrNoTarget = errors.New("renderer: no render target, Resize first")

var _ fractal.Backend = (*Renderer)(nil)

// Renderer owns the GL objects of one panel. Every method must be called
// with the panel's GL context current.
type Renderer struct {
	vao            uint32
	vertexBuffer   uint32
	locationBuffer uint32

	program          uint32
	uniformLocations map[string]int32
	uniforms         programs.Uniforms

	framebuffer uint32
	texture     uint32
	width       int
	height      int
}

// New initializes GL function pointers for the current context and creates
// the buffers. Failure here means the panel cannot run.
func New(debug bool) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init: %w", err)
	}
	logger.Logger().Info("OpenGL ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	if debug {
		gl.Enable(gl.DEBUG_OUTPUT)
		gl.DebugMessageCallback(glDebugMessage, nil)
	}

	r := &Renderer{}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vertexBuffer)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vertexBuffer)
	gl.BufferData(gl.ARRAY_BUFFER, 4*3*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(vertexPositionAttrib)
	gl.VertexAttribPointerWithOffset(vertexPositionAttrib, 3, gl.FLOAT, false, 3*4, 0)

	gl.GenBuffers(1, &r.locationBuffer)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.locationBuffer)
	gl.BufferData(gl.ARRAY_BUFFER, 4*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(locationAttrib)
	gl.VertexAttribPointerWithOffset(locationAttrib, 4, gl.FLOAT, false, 4*4, 0)

	return r, nil
}

// LoadProgram compiles and links program. On failure the current program
// stays in use.
func (r *Renderer) LoadProgram(program programs.Program, maxIterations int) error {
	vertexSource, fragmentSource, err := program.Source(maxIterations)
	if err != nil {
		return err
	}

	vertexShader, err := compileShader(vertexSource+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fragmentShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)
	gl.BindAttribLocation(id, vertexPositionAttrib, gl.Str("aVertexPosition\x00"))
	gl.BindAttribLocation(id, locationAttrib, gl.Str("aLocation\x00"))
	gl.BindFragDataLocation(id, 0, gl.Str("outputColor\x00"))
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(id, l, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return fmt.Errorf("failed to link program %q: %v", program.Name, log)
	}

	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
	r.program = id
	r.uniformLocations = uniformLocations(id, r.uniforms)
	return nil
}

// DrawTile draws one tile into the offscreen target.
func (r *Renderer) DrawTile(t fractal.Tile) {
	if r.framebuffer == 0 || r.program == 0 {
		return
	}

	var previous int32
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &previous)
	defer gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(previous))

	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, r.framebuffer)
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.UseProgram(r.program)

	r.uniforms.ColorStretching = t.ColorStretching
	loadUniforms(&r.uniforms, r.uniformLocations)

	rect := t.Rect.GL()
	vertices := [4]mgl32.Vec3{
		{float32(rect.Left), float32(rect.Bottom), 0},
		{float32(rect.Right), float32(rect.Bottom), 0},
		{float32(rect.Left), float32(rect.Top), 0},
		{float32(rect.Right), float32(rect.Top), 0},
	}
	var locations [4]mgl32.Vec4
	for i, c := range t.Corners {
		locations[i] = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
	}

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vertexBuffer)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*3*4, gl.Ptr(&vertices[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.locationBuffer)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(locations)*4*4, gl.Ptr(&locations[0]))
	runtime.KeepAlive(&vertices)
	runtime.KeepAlive(&locations)

	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

// Resize reallocates the offscreen target. Its contents are cleared, so the
// caller should request a full render afterwards.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid size %dx%d", width, height)
	}
	if width == r.width && height == r.height && r.framebuffer != 0 {
		return nil
	}
	r.deleteTarget()

	var previous int32
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &previous)
	defer gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(previous))

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.GenFramebuffers(1, &r.framebuffer)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, r.framebuffer)
	gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.texture, 0)
	if status := gl.CheckFramebufferStatus(gl.DRAW_FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		r.deleteTarget()
		return fmt.Errorf("renderer: incomplete framebuffer 0x%x", status)
	}

	gl.ClearColor(0.1, 0.1, 0.1, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.width, r.height = width, height
	return nil
}

// Present copies the offscreen target to the bound draw framebuffer.
func (r *Renderer) Present() {
	if r.framebuffer == 0 {
		gl.ClearColor(0.1, 0.1, 0.1, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		return
	}

	var previous int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &previous)
	defer gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(previous))

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.framebuffer)
	w, h := int32(r.width), int32(r.height)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
}

// ReadImage copies the offscreen target into an image.
func (r *Renderer) ReadImage() (*image.NRGBA, error) {
	if r.framebuffer == 0 {
		return nil, ErrNoTarget
	}

	var previous int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &previous)
	defer gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(previous))

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.framebuffer)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	pixels := make([]uint8, r.width*r.height*4)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	return FlipRows(pixels, r.width, r.height), nil
}

// Delete frees every GL object. The Renderer must not be used afterwards.
func (r *Renderer) Delete() {
	r.deleteTarget()
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	gl.DeleteBuffers(1, &r.vertexBuffer)
	gl.DeleteBuffers(1, &r.locationBuffer)
	gl.DeleteVertexArrays(1, &r.vao)
}

func (r *Renderer) deleteTarget() {
	if r.framebuffer != 0 {
		gl.DeleteFramebuffers(1, &r.framebuffer)
		r.framebuffer = 0
	}
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
		r.texture = 0
	}
	r.width, r.height = 0, 0
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader failed to compile: %v", log)
	}

	return shader, nil
}
