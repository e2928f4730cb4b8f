package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ColorRGBA clamps each component into [0, 1].
func ColorRGBA(r, g, b, a float32) Color {
	return Color{
		X: Clamp(r, 0, 1),
		Y: Clamp(g, 0, 1),
		Z: Clamp(b, 0, 1),
		W: Clamp(a, 0, 1),
	}
}

// ColorRGB is an opaque ColorRGBA.
func ColorRGB(r, g, b float32) Color {
	return ColorRGBA(r, g, b, 1)
}

/**
 * @brief Converts a packed hex colour. Alpha is in bits 24-31, red in 16-23,
 * green in 8-15 and blue in 0-7. When hasAlpha is false the colour is opaque.
 */
func ColorFromARGB(argb uint32, hasAlpha bool) Color {
	a := uint8(0xFF)
	if hasAlpha {
		a = uint8(argb >> 24)
	}
	return ColorFromBytes(uint8(argb>>16), uint8(argb>>8), uint8(argb), a)
}

// ColorFromBytes maps [0, 255] components to [0, 1].
func ColorFromBytes(r, g, b, a uint8) Color {
	return Color{
		X: float32(r) / 255,
		Y: float32(g) / 255,
		Z: float32(b) / 255,
		W: float32(a) / 255,
	}
}
