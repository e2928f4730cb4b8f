package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Read access to one vertex as the pipeline serializes it.
 * User attribute getters return a *core.MissingAttributeError when the
 * vertex has no value at location.
 */
type VertexSource interface {
	Coords() [4]float32
	Color() [4]float32
	Normal() [3]float32
	TexCoords() [2]float32
	Attribf(location int32) ([]float32, error)
	Attribi(location int32) ([]int32, error)
	Attribd(location int32) ([]float64, error)
}

/** @brief A triangle as three counter-clockwise vertex indices. */
type FaceSource interface {
	Indices() [3]uint16
}

type PipelineState uint8

const (
	/** @brief No buffers allocated. */
	PipelineEmpty PipelineState = iota
	/** @brief Buffers allocated, filled and uploaded. */
	PipelineFilled
)

func (s PipelineState) String() string {
	if s == PipelineFilled {
		return "filled"
	}
	return "empty"
}

const (
	slotFloat = iota
	slotInt
	slotDouble
	slotIndex
	slotCount
)

/**
 * @brief The host side copy of the packed buffers, one per base type plus
 * the index buffer.
 */
type HostBuffers struct {
	Floats  []float32
	Ints    []int32
	Doubles []float64
	Indices []uint16
}

/**
 * @brief Owns the packed vertex buffers and the index buffer of one polygon
 * and issues its draw call.
 */
type AttributePipeline struct {
	backend RendererBackend
	state   PipelineState

	layout  *Layout
	host    HostBuffers
	handles [slotCount]BufferHandle

	vertexCount int
	indexCount  int

	// what the buffers were filled from
	geometryGeneration uint64
	program            uint32
	shaderGeneration   uint32

	// user locations enabled by the last BindForDraw
	enabled []uint32
}

func NewAttributePipeline(backend RendererBackend) *AttributePipeline {
	return &AttributePipeline{
		backend: backend,
		state:   PipelineEmpty,
	}
}

func (p *AttributePipeline) State() PipelineState {
	return p.state
}

// Stride returns the byte stride of the buffer holding base, 0 when no layout has been computed.
func (p *AttributePipeline) Stride(base metadata.BaseType) uint32 {
	if p.layout == nil {
		return 0
	}
	return p.layout.Stride(base)
}

// Layout returns the layout of the last fill, nil when Empty.
func (p *AttributePipeline) Layout() *Layout {
	return p.layout
}

func (p *AttributePipeline) IndexCount() int {
	return p.indexCount
}

func (p *AttributePipeline) VertexCount() int {
	return p.vertexCount
}

// Buffers returns the host copy of the data last uploaded.
func (p *AttributePipeline) Buffers() HostBuffers {
	return p.host
}

// Handle returns the backend buffer for base, or the index buffer when index is true.
func (p *AttributePipeline) Handle(base metadata.BaseType, index bool) BufferHandle {
	if index {
		return p.handles[slotIndex]
	}
	return p.handles[groupSlot(base)]
}

/**
 * @brief Serializes vertices and faces into host buffers laid out for shader.
 * Built-ins go first in the float buffer, then user attributes in the order
 * the shader enumerates them. No value is truncated or padded.
 */
func (p *AttributePipeline) FillBuffers(vertices []VertexSource, faces []FaceSource, shader *metadata.Shader) (HostBuffers, error) {
	if err := checkShader(shader); err != nil {
		return HostBuffers{}, err
	}
	layout := p.layout
	if !layout.Matches(shader) {
		layout = NewLayout(shader)
	}

	n := len(vertices)
	host := HostBuffers{
		Floats:  make([]float32, 0, n*layout.ScalarCount(metadata.BaseTypeFloat32)),
		Ints:    make([]int32, 0, n*layout.ScalarCount(metadata.BaseTypeInt32)),
		Doubles: make([]float64, 0, n*layout.ScalarCount(metadata.BaseTypeFloat64)),
		Indices: make([]uint16, 0, len(faces)*3),
	}

	for i, v := range vertices {
		var err error
		mark := len(host.Floats)
		coords, color, normal, tex := v.Coords(), v.Color(), v.Normal(), v.TexCoords()
		host.Floats = append(host.Floats, coords[:]...)
		host.Floats = append(host.Floats, color[:]...)
		host.Floats = append(host.Floats, normal[:]...)
		host.Floats = append(host.Floats, tex[:]...)
		if host.Floats, err = appendUser(host.Floats, i, layout.Attributes(metadata.BaseTypeFloat32), v.Attribf); err != nil {
			return HostBuffers{}, err
		}
		if err = checkWritten(i, metadata.BaseTypeFloat32, layout, len(host.Floats)-mark); err != nil {
			return HostBuffers{}, err
		}

		mark = len(host.Ints)
		if host.Ints, err = appendUser(host.Ints, i, layout.Attributes(metadata.BaseTypeInt32), v.Attribi); err != nil {
			return HostBuffers{}, err
		}
		if err = checkWritten(i, metadata.BaseTypeInt32, layout, len(host.Ints)-mark); err != nil {
			return HostBuffers{}, err
		}

		mark = len(host.Doubles)
		if host.Doubles, err = appendUser(host.Doubles, i, layout.Attributes(metadata.BaseTypeFloat64), v.Attribd); err != nil {
			return HostBuffers{}, err
		}
		if err = checkWritten(i, metadata.BaseTypeFloat64, layout, len(host.Doubles)-mark); err != nil {
			return HostBuffers{}, err
		}
	}

	for f, face := range faces {
		idx := face.Indices()
		for _, index := range idx {
			if int(index) >= n {
				err := fmt.Errorf("face %d references vertex %d of %d: %w", f, index, n, core.ErrIndexOutOfRange)
				core.LogError(err.Error())
				return HostBuffers{}, err
			}
		}
		host.Indices = append(host.Indices, idx[:]...)
	}

	p.layout = layout
	p.host = host
	p.vertexCount = n
	p.indexCount = len(host.Indices)
	return host, nil
}

// appendUser appends the values of every attribute in attrs, failing on the first size mismatch.
func appendUser[T float32 | int32 | float64](dst []T, vertex int, attrs []metadata.AttributeDescriptor, get func(int32) ([]T, error)) ([]T, error) {
	for _, a := range attrs {
		values, err := get(a.Location)
		if err != nil {
			var missing *core.MissingAttributeError
			if errors.As(err, &missing) {
				missing.VertexIndex = vertex
				missing.Name = a.Name
				missing.BaseType = a.BaseType().String()
			}
			core.LogError(err.Error())
			return dst, err
		}
		if len(values) != int(a.ElementCount()) {
			err := &core.PipelineAlignmentError{
				VertexIndex: vertex,
				BaseType:    a.BaseType().String(),
				Attribute:   a.Name,
				Expected:    int(a.ElementCount()),
				Actual:      len(values),
			}
			core.LogError(err.Error())
			return dst, err
		}
		dst = append(dst, values...)
	}
	return dst, nil
}

func checkWritten(vertex int, base metadata.BaseType, layout *Layout, written int) error {
	if expected := layout.ScalarCount(base); written != expected {
		err := &core.PipelineAlignmentError{
			VertexIndex: vertex,
			BaseType:    base.String(),
			Expected:    expected,
			Actual:      written,
		}
		core.LogError(err.Error())
		return err
	}
	return nil
}

func checkShader(shader *metadata.Shader) error {
	if shader == nil {
		core.LogError(core.ErrNoShaderBound.Error())
		return core.ErrNoShaderBound
	}
	if shader.Program == 0 || shader.State != metadata.SHADER_STATE_INITIALIZED {
		err := &core.ShaderLinkError{Program: shader.Program}
		core.LogError(err.Error())
		return err
	}
	return nil
}

/**
 * @brief Sends the host buffers to the backend with static usage. Any buffer
 * already held in a slot is deleted first. Empty int and double buffers are
 * not allocated.
 */
func (p *AttributePipeline) Upload() error {
	uploads := [slotCount]struct {
		target BufferTarget
		data   []byte
	}{
		slotFloat:  {ArrayBuffer, asBytes(p.host.Floats)},
		slotInt:    {ArrayBuffer, asBytes(p.host.Ints)},
		slotDouble: {ArrayBuffer, asBytes(p.host.Doubles)},
		slotIndex:  {ElementArrayBuffer, asBytes(p.host.Indices)},
	}
	for slot, u := range uploads {
		if err := p.upload(slot, u.target, u.data); err != nil {
			p.Clean()
			return err
		}
	}
	p.state = PipelineFilled
	return nil
}

func (p *AttributePipeline) upload(slot int, target BufferTarget, data []byte) error {
	if p.handles[slot] != 0 {
		p.backend.DeleteBuffers(p.handles[slot])
		p.handles[slot] = 0
	}
	if len(data) == 0 && (slot == slotInt || slot == slotDouble) {
		return nil
	}
	handles, err := p.backend.GenBuffers(1)
	if err == nil && (len(handles) != 1 || handles[0] == 0) {
		err = core.ErrBackendAllocation
	}
	if err != nil {
		err = fmt.Errorf("failed to allocate %s: %w", target, err)
		core.LogError(err.Error())
		return err
	}
	p.handles[slot] = handles[0]
	p.backend.BindBuffer(target, handles[0])
	err = p.backend.BufferData(target, data)
	p.backend.BindBuffer(target, 0)
	if err != nil {
		err = fmt.Errorf("failed to upload %s: %w", target, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// asBytes views s as raw bytes in host byte order.
func asBytes[T float32 | int32 | float64 | uint16](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

/**
 * @brief Points every attribute at the uploaded buffers. Built-ins sit at
 * byte offsets 0, 16, 32 and 44 of the float buffer, user float attributes
 * follow at 52 plus their running offset. Int and double attributes start
 * at 0 in their own buffers.
 */
func (p *AttributePipeline) BindForDraw() error {
	if p.state != PipelineFilled {
		err := errors.New("attribute pipeline has nothing to bind")
		core.LogError(err.Error())
		return err
	}
	p.enabled = p.enabled[:0]

	floatStride := p.layout.Stride(metadata.BaseTypeFloat32)
	p.backend.BindBuffer(ArrayBuffer, p.handles[slotFloat])
	for _, ch := range metadata.BuiltinChannels {
		p.backend.EnableBuiltin(ch, int32(ch.Units()), floatStride, ch.Offset())
	}
	p.bindUser(metadata.BaseTypeFloat32, p.backend.VertexAttribPointer)

	if h := p.handles[slotInt]; h != 0 {
		p.backend.BindBuffer(ArrayBuffer, h)
		p.bindUser(metadata.BaseTypeInt32, p.backend.VertexAttribIPointer)
	}
	if h := p.handles[slotDouble]; h != 0 {
		p.backend.BindBuffer(ArrayBuffer, h)
		p.bindUser(metadata.BaseTypeFloat64, func(location uint32, size int32, _ metadata.BaseType, stride, offset uint32) {
			p.backend.VertexAttribLPointer(location, size, stride, offset)
		})
	}
	p.backend.BindBuffer(ElementArrayBuffer, p.handles[slotIndex])
	return nil
}

type attribPointer func(location uint32, size int32, base metadata.BaseType, stride, offset uint32)

func (p *AttributePipeline) bindUser(group metadata.BaseType, point attribPointer) {
	stride := p.layout.Stride(group)
	for _, a := range p.layout.Attributes(group) {
		offset, _ := p.layout.Offset(a.Location)
		slots, size := a.Slots()
		for s := uint32(0); s < slots; s++ {
			location := uint32(a.Location) + s
			p.backend.EnableVertexAttribArray(location)
			point(location, int32(size), a.BaseType(), stride, offset+s*size*a.BaseType().Size())
			p.enabled = append(p.enabled, location)
		}
	}
}

/**
 * @brief Draws indexCount indices as triangles, then disables every array
 * and unbinds both buffer targets.
 */
func (p *AttributePipeline) Draw(indexCount int) {
	if indexCount > 0 {
		p.backend.DrawElements(int32(indexCount))
	}
	p.backend.DisableBuiltins()
	for _, location := range p.enabled {
		p.backend.DisableVertexAttribArray(location)
	}
	p.enabled = p.enabled[:0]
	p.backend.BindBuffer(ArrayBuffer, 0)
	p.backend.BindBuffer(ElementArrayBuffer, 0)
}

// Clean deletes every buffer and returns to Empty. Calling it on an Empty pipeline does nothing.
func (p *AttributePipeline) Clean() {
	var live []BufferHandle
	for slot, h := range p.handles {
		if h != 0 {
			live = append(live, h)
			p.handles[slot] = 0
		}
	}
	if len(live) > 0 {
		p.backend.DeleteBuffers(live...)
	}
	p.state = PipelineEmpty
	p.layout = nil
	p.host = HostBuffers{}
	p.vertexCount = 0
	p.indexCount = 0
	p.enabled = p.enabled[:0]
}

// Stale reports whether the buffers no longer reflect geometry at generation drawn with shader.
func (p *AttributePipeline) Stale(shader *metadata.Shader, generation uint64) bool {
	return p.state != PipelineFilled ||
		p.geometryGeneration != generation ||
		shader == nil ||
		p.program != shader.Program ||
		p.shaderGeneration != shader.Generation
}

/**
 * @brief Draws the geometry with shader. Buffers are regenerated when the
 * pipeline is Empty or when the geometry generation, the program or its
 * generation changed since the last fill. Bindings are redone every call.
 */
func (p *AttributePipeline) Render(vertices []VertexSource, faces []FaceSource, shader *metadata.Shader, generation uint64) error {
	if err := checkShader(shader); err != nil {
		return err
	}
	if p.Stale(shader, generation) {
		p.Clean()
		if _, err := p.FillBuffers(vertices, faces, shader); err != nil {
			p.Clean()
			return err
		}
		if err := p.Upload(); err != nil {
			return err
		}
		p.geometryGeneration = generation
		p.program = shader.Program
		p.shaderGeneration = shader.Generation
	}
	if err := p.BindForDraw(); err != nil {
		return err
	}
	p.Draw(p.indexCount)
	return nil
}
