package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-compatibility/gl"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief The OpenGL renderer backend. It needs a compatibility profile
 * context so the fixed-function client arrays are available next to
 * generic vertex attributes.
 */
type OpenGLRenderer struct {
	width  uint32
	height uint32

	clientStates []uint32
}

func New() *OpenGLRenderer {
	return &OpenGLRenderer{}
}

// Initialize loads the GL entry points. The context must be current on the calling thread.
func (r *OpenGLRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.LogInfo("%s running on OpenGL %s (%s)", appName, gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.0, 0.0, 0.2, 1.0)

	return r.Resized(appWidth, appHeight)
}

func (r *OpenGLRenderer) Shutdown() error {
	gl.UseProgram(0)
	return nil
}

func (r *OpenGLRenderer) Resized(width, height uint32) error {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	return nil
}

func (r *OpenGLRenderer) BeginFrame(deltaTime float64) error {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (r *OpenGLRenderer) EndFrame(deltaTime float64) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("OpenGL error 0x%X", code)
	}
	return nil
}

func bufferTarget(target renderer.BufferTarget) uint32 {
	if target == renderer.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (r *OpenGLRenderer) GenBuffers(n int) ([]renderer.BufferHandle, error) {
	if n <= 0 {
		return nil, nil
	}
	ids := make([]uint32, n)
	gl.GenBuffers(int32(n), &ids[0])
	handles := make([]renderer.BufferHandle, n)
	for i, id := range ids {
		if id == 0 {
			return nil, core.ErrBackendAllocation
		}
		handles[i] = renderer.BufferHandle(id)
	}
	return handles, nil
}

func (r *OpenGLRenderer) DeleteBuffers(handles ...renderer.BufferHandle) {
	if len(handles) == 0 {
		return
	}
	ids := make([]uint32, len(handles))
	for i, h := range handles {
		ids[i] = uint32(h)
	}
	gl.DeleteBuffers(int32(len(ids)), &ids[0])
}

func (r *OpenGLRenderer) BindBuffer(target renderer.BufferTarget, handle renderer.BufferHandle) {
	gl.BindBuffer(bufferTarget(target), uint32(handle))
}

func (r *OpenGLRenderer) BufferData(target renderer.BufferTarget, data []byte) error {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, gl.STATIC_DRAW)
	} else {
		gl.BufferData(bufferTarget(target), len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		return core.ErrBackendAllocation
	} else if code != gl.NO_ERROR {
		return fmt.Errorf("glBufferData failed with 0x%X", code)
	}
	return nil
}

func (r *OpenGLRenderer) EnableBuiltin(channel metadata.BuiltinChannel, size int32, stride, offset uint32) {
	var state uint32
	switch channel {
	case metadata.BuiltinPosition:
		state = gl.VERTEX_ARRAY
		gl.VertexPointer(size, gl.FLOAT, int32(stride), gl.PtrOffset(int(offset)))
	case metadata.BuiltinColor:
		state = gl.COLOR_ARRAY
		gl.ColorPointer(size, gl.FLOAT, int32(stride), gl.PtrOffset(int(offset)))
	case metadata.BuiltinNormal:
		state = gl.NORMAL_ARRAY
		gl.NormalPointer(gl.FLOAT, int32(stride), gl.PtrOffset(int(offset)))
	case metadata.BuiltinTexCoord:
		state = gl.TEXTURE_COORD_ARRAY
		gl.TexCoordPointer(size, gl.FLOAT, int32(stride), gl.PtrOffset(int(offset)))
	default:
		return
	}
	gl.EnableClientState(state)
	r.clientStates = append(r.clientStates, state)
}

func (r *OpenGLRenderer) DisableBuiltins() {
	for _, state := range r.clientStates {
		gl.DisableClientState(state)
	}
	r.clientStates = r.clientStates[:0]
}

func scalarType(base metadata.BaseType) uint32 {
	switch base {
	case metadata.BaseTypeInt32:
		return gl.INT
	case metadata.BaseTypeUInt32:
		return gl.UNSIGNED_INT
	case metadata.BaseTypeFloat64:
		return gl.DOUBLE
	default:
		return gl.FLOAT
	}
}

func (r *OpenGLRenderer) VertexAttribPointer(location uint32, size int32, base metadata.BaseType, stride, offset uint32) {
	gl.VertexAttribPointerWithOffset(location, size, scalarType(base), false, int32(stride), uintptr(offset))
}

func (r *OpenGLRenderer) VertexAttribIPointer(location uint32, size int32, base metadata.BaseType, stride, offset uint32) {
	gl.VertexAttribIPointerWithOffset(location, size, scalarType(base), int32(stride), uintptr(offset))
}

func (r *OpenGLRenderer) VertexAttribLPointer(location uint32, size int32, stride, offset uint32) {
	gl.VertexAttribLPointerWithOffset(location, size, gl.DOUBLE, int32(stride), uintptr(offset))
}

func (r *OpenGLRenderer) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (r *OpenGLRenderer) DisableVertexAttribArray(location uint32) {
	gl.DisableVertexAttribArray(location)
}

func (r *OpenGLRenderer) DrawElements(indexCount int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, indexCount, gl.UNSIGNED_SHORT, 0)
}

func (r *OpenGLRenderer) ShaderCreate(vertexSource, fragmentSource string) (uint32, error) {
	return linkProgram(vertexSource, fragmentSource)
}

func (r *OpenGLRenderer) ShaderDestroy(program uint32) {
	if program != 0 {
		gl.DeleteProgram(program)
	}
}

func (r *OpenGLRenderer) ShaderUse(program uint32) {
	gl.UseProgram(program)
}

func (r *OpenGLRenderer) ProgramLinked(program uint32) bool {
	if program == 0 || !gl.IsProgram(program) {
		return false
	}
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (r *OpenGLRenderer) ActiveAttributes(program uint32) []renderer.ActiveVariable {
	return activeVariables(program, gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib, gl.GetAttribLocation)
}

func (r *OpenGLRenderer) ActiveUniforms(program uint32) []renderer.ActiveVariable {
	return activeVariables(program, gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform, gl.GetUniformLocation)
}

func (r *OpenGLRenderer) SetUniform(location int32, values ...float32) {
	switch len(values) {
	case 1:
		gl.Uniform1f(location, values[0])
	case 2:
		gl.Uniform2f(location, values[0], values[1])
	case 3:
		gl.Uniform3f(location, values[0], values[1], values[2])
	case 4:
		gl.Uniform4f(location, values[0], values[1], values[2], values[3])
	default:
		core.LogWarn("uniform at location %d: unsupported component count %d", location, len(values))
	}
}

func (r *OpenGLRenderer) SetUniformi(location int32, values ...int32) {
	switch len(values) {
	case 1:
		gl.Uniform1i(location, values[0])
	case 2:
		gl.Uniform2i(location, values[0], values[1])
	case 3:
		gl.Uniform3i(location, values[0], values[1], values[2])
	case 4:
		gl.Uniform4i(location, values[0], values[1], values[2], values[3])
	default:
		core.LogWarn("uniform at location %d: unsupported component count %d", location, len(values))
	}
}

func (r *OpenGLRenderer) SetUniformMatrix4(location int32, matrix [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &matrix[0])
}

func (r *OpenGLRenderer) TextureCreate(width, height uint32, pixels []uint8) (uint32, error) {
	if uint32(len(pixels)) != width*height*4 {
		return 0, fmt.Errorf("texture %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pixels))
	}
	var texture uint32
	gl.GenTextures(1, &texture)
	if texture == 0 {
		return 0, errors.Join(errors.New("glGenTextures returned 0"), core.ErrBackendAllocation)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture, nil
}

func (r *OpenGLRenderer) TextureBind(unit uint32, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (r *OpenGLRenderer) TextureDestroy(texture uint32) {
	if texture != 0 {
		gl.DeleteTextures(1, &texture)
	}
}

var _ renderer.RendererBackend = (*OpenGLRenderer)(nil)
