// Package rendertest provides an in-memory renderer.RendererBackend that
// records every call, for tests that must run without a GL context.
package rendertest

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/** @brief A recorded attribute pointer call. */
type PointerCall struct {
	/** @brief "float", "int" or "double". */
	Path     string
	Location uint32
	Size     int32
	Base     metadata.BaseType
	Stride   uint32
	Offset   uint32
	/** @brief The array buffer bound when the call was made. */
	Buffer renderer.BufferHandle
}

/** @brief A recorded built-in channel setup. */
type BuiltinCall struct {
	Channel metadata.BuiltinChannel
	Size    int32
	Stride  uint32
	Offset  uint32
	Buffer  renderer.BufferHandle
}

/** @brief A recorded draw call and the state it saw. */
type DrawCall struct {
	IndexCount   int32
	ElementArray renderer.BufferHandle
	Program      uint32
}

/** @brief A program known to the fake, with the variables it reports. */
type Program struct {
	VertexSource   string
	FragmentSource string
	Linked         bool
	Attributes     []renderer.ActiveVariable
	Uniforms       []renderer.ActiveVariable
}

type Texture struct {
	Width, Height uint32
	Pixels        []uint8
}

/**
 * @brief Records every call made through renderer.RendererBackend.
 */
type Backend struct {
	// Programs created by ShaderCreate get these attributes and uniforms.
	NextAttributes []renderer.ActiveVariable
	NextUniforms   []renderer.ActiveVariable
	// When set, ShaderCreate fails to link with this log.
	LinkFailure string
	// When set, GenBuffers returns 0 handles after this many successful buffers.
	AllocationLimit int

	Programs map[uint32]*Program
	Textures map[uint32]*Texture
	Buffers  map[renderer.BufferHandle][]byte
	Deleted  []renderer.BufferHandle

	Bound          map[renderer.BufferTarget]renderer.BufferHandle
	BuiltinsActive bool
	Enabled        map[uint32]bool
	Pointers       []PointerCall
	Builtins       []BuiltinCall
	Draws          []DrawCall
	Uniforms       map[int32][]float32
	UniformsI      map[int32][]int32
	BoundTextures  map[uint32]uint32
	CurrentProgram uint32

	Frames      int
	Initialized bool
	Width       uint32
	Height      uint32

	allocated   int
	nextBuffer  renderer.BufferHandle
	nextProgram uint32
	nextTexture uint32
}

func NewBackend() *Backend {
	return &Backend{
		Programs:      make(map[uint32]*Program),
		Textures:      make(map[uint32]*Texture),
		Buffers:       make(map[renderer.BufferHandle][]byte),
		Bound:         make(map[renderer.BufferTarget]renderer.BufferHandle),
		Enabled:       make(map[uint32]bool),
		Uniforms:      make(map[int32][]float32),
		UniformsI:     make(map[int32][]int32),
		BoundTextures: make(map[uint32]uint32),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.Initialized = true
	b.Width, b.Height = appWidth, appHeight
	return nil
}

func (b *Backend) Shutdown() error {
	b.Initialized = false
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.Width, b.Height = width, height
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error { return nil }

func (b *Backend) EndFrame(deltaTime float64) error {
	b.Frames++
	return nil
}

func (b *Backend) GenBuffers(n int) ([]renderer.BufferHandle, error) {
	handles := make([]renderer.BufferHandle, n)
	for i := range handles {
		if b.AllocationLimit > 0 && b.allocated >= b.AllocationLimit {
			continue
		}
		b.nextBuffer++
		b.allocated++
		handles[i] = b.nextBuffer
		b.Buffers[b.nextBuffer] = nil
	}
	return handles, nil
}

func (b *Backend) DeleteBuffers(handles ...renderer.BufferHandle) {
	for _, h := range handles {
		delete(b.Buffers, h)
		b.Deleted = append(b.Deleted, h)
		for target, bound := range b.Bound {
			if bound == h {
				b.Bound[target] = 0
			}
		}
	}
}

func (b *Backend) BindBuffer(target renderer.BufferTarget, handle renderer.BufferHandle) {
	b.Bound[target] = handle
}

func (b *Backend) BufferData(target renderer.BufferTarget, data []byte) error {
	h := b.Bound[target]
	if _, ok := b.Buffers[h]; !ok || h == 0 {
		return fmt.Errorf("no live buffer bound to %s", target)
	}
	b.Buffers[h] = append([]byte(nil), data...)
	return nil
}

func (b *Backend) EnableBuiltin(channel metadata.BuiltinChannel, size int32, stride, offset uint32) {
	b.BuiltinsActive = true
	b.Builtins = append(b.Builtins, BuiltinCall{channel, size, stride, offset, b.Bound[renderer.ArrayBuffer]})
}

func (b *Backend) DisableBuiltins() {
	b.BuiltinsActive = false
}

func (b *Backend) VertexAttribPointer(location uint32, size int32, base metadata.BaseType, stride, offset uint32) {
	b.pointer("float", location, size, base, stride, offset)
}

func (b *Backend) VertexAttribIPointer(location uint32, size int32, base metadata.BaseType, stride, offset uint32) {
	b.pointer("int", location, size, base, stride, offset)
}

func (b *Backend) VertexAttribLPointer(location uint32, size int32, stride, offset uint32) {
	b.pointer("double", location, size, metadata.BaseTypeFloat64, stride, offset)
}

func (b *Backend) pointer(path string, location uint32, size int32, base metadata.BaseType, stride, offset uint32) {
	b.Pointers = append(b.Pointers, PointerCall{path, location, size, base, stride, offset, b.Bound[renderer.ArrayBuffer]})
}

func (b *Backend) EnableVertexAttribArray(location uint32) {
	b.Enabled[location] = true
}

func (b *Backend) DisableVertexAttribArray(location uint32) {
	delete(b.Enabled, location)
}

func (b *Backend) DrawElements(indexCount int32) {
	b.Draws = append(b.Draws, DrawCall{indexCount, b.Bound[renderer.ElementArrayBuffer], b.CurrentProgram})
}

func (b *Backend) ShaderCreate(vertexSource, fragmentSource string) (uint32, error) {
	b.nextProgram++
	p := &Program{
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
		Linked:         b.LinkFailure == "",
		Attributes:     append([]renderer.ActiveVariable(nil), b.NextAttributes...),
		Uniforms:       append([]renderer.ActiveVariable(nil), b.NextUniforms...),
	}
	b.Programs[b.nextProgram] = p
	if !p.Linked {
		return b.nextProgram, &core.ShaderLinkError{Program: b.nextProgram, Log: b.LinkFailure}
	}
	return b.nextProgram, nil
}

func (b *Backend) ShaderDestroy(program uint32) {
	delete(b.Programs, program)
	if b.CurrentProgram == program {
		b.CurrentProgram = 0
	}
}

func (b *Backend) ShaderUse(program uint32) {
	b.CurrentProgram = program
}

func (b *Backend) ProgramLinked(program uint32) bool {
	p, ok := b.Programs[program]
	return ok && p.Linked
}

func (b *Backend) ActiveAttributes(program uint32) []renderer.ActiveVariable {
	if p, ok := b.Programs[program]; ok {
		return p.Attributes
	}
	return nil
}

func (b *Backend) ActiveUniforms(program uint32) []renderer.ActiveVariable {
	if p, ok := b.Programs[program]; ok {
		return p.Uniforms
	}
	return nil
}

func (b *Backend) SetUniform(location int32, values ...float32) {
	b.Uniforms[location] = append([]float32(nil), values...)
}

func (b *Backend) SetUniformi(location int32, values ...int32) {
	b.UniformsI[location] = append([]int32(nil), values...)
}

func (b *Backend) SetUniformMatrix4(location int32, matrix [16]float32) {
	b.Uniforms[location] = append([]float32(nil), matrix[:]...)
}

func (b *Backend) TextureCreate(width, height uint32, pixels []uint8) (uint32, error) {
	if uint32(len(pixels)) != width*height*4 {
		return 0, fmt.Errorf("texture %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pixels))
	}
	b.nextTexture++
	b.Textures[b.nextTexture] = &Texture{width, height, append([]uint8(nil), pixels...)}
	return b.nextTexture, nil
}

func (b *Backend) TextureBind(unit uint32, texture uint32) {
	b.BoundTextures[unit] = texture
}

func (b *Backend) TextureDestroy(texture uint32) {
	delete(b.Textures, texture)
}

// LiveBuffers returns the number of buffers allocated and not yet deleted.
func (b *Backend) LiveBuffers() int {
	return len(b.Buffers)
}

// Floats decodes the contents of a buffer uploaded from []float32.
func (b *Backend) Floats(h renderer.BufferHandle) []float32 {
	data := b.Buffers[h]
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.NativeEndian.Uint32(data[i*4:]))
	}
	return out
}

func (b *Backend) Ints(h renderer.BufferHandle) []int32 {
	data := b.Buffers[h]
	out := make([]int32, len(data)/4)
	for i := range out {
		out[i] = int32(binary.NativeEndian.Uint32(data[i*4:]))
	}
	return out
}

func (b *Backend) Doubles(h renderer.BufferHandle) []float64 {
	data := b.Buffers[h]
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.NativeEndian.Uint64(data[i*8:]))
	}
	return out
}

func (b *Backend) Shorts(h renderer.BufferHandle) []uint16 {
	data := b.Buffers[h]
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = binary.NativeEndian.Uint16(data[i*2:])
	}
	return out
}

// PointerAt returns the last pointer call made for location.
func (b *Backend) PointerAt(location uint32) (PointerCall, bool) {
	for i := len(b.Pointers) - 1; i >= 0; i-- {
		if b.Pointers[i].Location == location {
			return b.Pointers[i], true
		}
	}
	return PointerCall{}, false
}

// ResetCalls forgets recorded pointer, built-in and draw calls.
func (b *Backend) ResetCalls() {
	b.Pointers = nil
	b.Builtins = nil
	b.Draws = nil
}

var _ renderer.RendererBackend = (*Backend)(nil)
