package renderer

import (
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/** @brief The buffer binding points used by the attribute pipeline. */
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	if t == ElementArrayBuffer {
		return "element_array_buffer"
	}
	return "array_buffer"
}

/** @brief A backend buffer object. 0 means no buffer. */
type BufferHandle uint32

/**
 * @brief One active attribute or uniform as reported by the driver for a
 * linked program.
 */
type ActiveVariable struct {
	Name string
	Type metadata.GLSLType
	/** @brief The declared array size, 1 for non-arrays. */
	Size     int32
	Location int32
}

/**
 * @brief The boundary to the graphics API. Every call must happen on the
 * thread that owns the context.
 */
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	/** @brief Allocates n buffer objects. A handle of 0 is an allocation failure. */
	GenBuffers(n int) ([]BufferHandle, error)
	DeleteBuffers(handles ...BufferHandle)
	/** @brief Binds handle to target, 0 unbinds. */
	BindBuffer(target BufferTarget, handle BufferHandle)
	/** @brief Uploads data to the buffer bound at target with static usage. */
	BufferData(target BufferTarget, data []byte) error

	/** @brief Points a fixed-function channel at the bound array buffer and enables it. */
	EnableBuiltin(channel metadata.BuiltinChannel, size int32, stride, offset uint32)
	DisableBuiltins()
	/** @brief Floating point attribute path. */
	VertexAttribPointer(location uint32, size int32, base metadata.BaseType, stride, offset uint32)
	/** @brief Integer attribute path, values are not converted to float. */
	VertexAttribIPointer(location uint32, size int32, base metadata.BaseType, stride, offset uint32)
	/** @brief Double precision attribute path. */
	VertexAttribLPointer(location uint32, size int32, stride, offset uint32)
	EnableVertexAttribArray(location uint32)
	DisableVertexAttribArray(location uint32)
	/** @brief Draws an indexed triangle list of unsigned shorts from the bound element buffer. */
	DrawElements(indexCount int32)

	/** @brief Compiles and links a program. Link failures return a *core.ShaderLinkError. */
	ShaderCreate(vertexSource, fragmentSource string) (uint32, error)
	ShaderDestroy(program uint32)
	/** @brief Makes program current, 0 unbinds. */
	ShaderUse(program uint32)
	ProgramLinked(program uint32) bool
	ActiveAttributes(program uint32) []ActiveVariable
	ActiveUniforms(program uint32) []ActiveVariable
	SetUniform(location int32, values ...float32)
	SetUniformi(location int32, values ...int32)
	SetUniformMatrix4(location int32, matrix [16]float32)

	/** @brief Uploads tightly packed RGBA8 pixels as a 2D texture. */
	TextureCreate(width, height uint32, pixels []uint8) (uint32, error)
	TextureBind(unit uint32, texture uint32)
	TextureDestroy(texture uint32)
}
