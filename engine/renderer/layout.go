package renderer

import (
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// groupSlot maps a base type to its buffer slot: float, int, double.
func groupSlot(base metadata.BaseType) int {
	switch base.Group() {
	case metadata.BaseTypeInt32:
		return 1
	case metadata.BaseTypeFloat64:
		return 2
	default:
		return 0
	}
}

/**
 * @brief The stride and offset record for one shader generation. Buffer fill
 * and attribute binding both read from the same Layout, so they cannot drift.
 */
type Layout struct {
	program    uint32
	generation uint32

	strides    [3]uint32
	attributes [3][]metadata.AttributeDescriptor
	// byte offset of each user attribute inside its buffer
	offsets map[int32]uint32
}

/**
 * @brief Computes the layout of the shader's active attributes.
 * The float buffer starts with the built-in channels; int and double
 * buffers hold user-defined attributes only.
 */
func NewLayout(shader *metadata.Shader) *Layout {
	l := &Layout{
		program:    shader.Program,
		generation: shader.Generation,
		offsets:    make(map[int32]uint32),
	}
	for _, group := range metadata.BufferGroups {
		slot := groupSlot(group)
		var offset uint32
		if group == metadata.BaseTypeFloat32 {
			offset = metadata.BUILTIN_STRIDE_BYTES
		}
		attributes := shader.UserAttributesOf(group)
		for _, a := range attributes {
			l.offsets[a.Location] = offset
			offset += a.ByteSize()
		}
		l.attributes[slot] = attributes
		l.strides[slot] = offset
	}
	return l
}

// Stride returns the byte stride of the buffer that holds base.
func (l *Layout) Stride(base metadata.BaseType) uint32 {
	return l.strides[groupSlot(base)]
}

// ScalarCount returns how many scalars one vertex writes into the buffer that holds base.
func (l *Layout) ScalarCount(base metadata.BaseType) int {
	return int(l.Stride(base) / base.Group().Size())
}

// Attributes returns the user-defined attributes packed in the buffer that holds base.
func (l *Layout) Attributes(base metadata.BaseType) []metadata.AttributeDescriptor {
	return l.attributes[groupSlot(base)]
}

// Offset returns the byte offset of the user attribute bound at location.
func (l *Layout) Offset(location int32) (uint32, bool) {
	offset, ok := l.offsets[location]
	return offset, ok
}

// Matches reports whether the layout was computed for the shader as it is now.
func (l *Layout) Matches(shader *metadata.Shader) bool {
	return l != nil && shader != nil && l.program == shader.Program && l.generation == shader.Generation
}

/**
 * @brief The stateless form of Layout.Stride: 52 plus the user float bytes for
 * Float32, the user bytes alone for the other base types. A nil shader has no
 * user attributes.
 */
func ComputeStride(shader *metadata.Shader, base metadata.BaseType) uint32 {
	var stride uint32
	if base.Group() == metadata.BaseTypeFloat32 {
		stride = metadata.BUILTIN_STRIDE_BYTES
	}
	if shader == nil {
		return stride
	}
	for _, a := range shader.UserAttributesOf(base) {
		stride += a.ByteSize()
	}
	return stride
}
