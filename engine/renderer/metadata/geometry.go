package metadata

/**
 * @brief One of the fixed per-vertex channels every vertex carries
 * regardless of the bound shader.
 */
type BuiltinChannel uint8

const (
	BuiltinPosition BuiltinChannel = iota
	BuiltinColor
	BuiltinNormal
	BuiltinTexCoord
)

// BuiltinChannels lists the channels in the order they are packed.
var BuiltinChannels = [...]BuiltinChannel{BuiltinPosition, BuiltinColor, BuiltinNormal, BuiltinTexCoord}

/** @brief The number of built-in float scalars per vertex: 4 position + 4 colour + 3 normal + 2 texcoord. */
const NUM_BUILTIN_ATTRIBSF uint32 = 13

/** @brief Bytes the built-in channels contribute to the float stride. */
const BUILTIN_STRIDE_BYTES uint32 = NUM_BUILTIN_ATTRIBSF * 4

// Units returns the scalar count of the channel.
func (c BuiltinChannel) Units() uint32 {
	switch c {
	case BuiltinPosition, BuiltinColor:
		return 4
	case BuiltinNormal:
		return 3
	case BuiltinTexCoord:
		return 2
	}
	return 0
}

// Offset returns the byte offset of the channel inside a float vertex record.
func (c BuiltinChannel) Offset() uint32 {
	var offset uint32
	for _, ch := range BuiltinChannels {
		if ch == c {
			return offset
		}
		offset += ch.Units() * BaseTypeFloat32.Size()
	}
	return offset
}

func (c BuiltinChannel) String() string {
	switch c {
	case BuiltinPosition:
		return "position"
	case BuiltinColor:
		return "color"
	case BuiltinNormal:
		return "normal"
	case BuiltinTexCoord:
		return "texcoord"
	}
	return "unknown"
}
