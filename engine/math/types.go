package math

// Vec3 is a position, direction or RGB triple.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 holds homogeneous positions and colours.
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief An RGBA colour with components in the range [0, 1].
 * Stored as a Vec4 so it can be handed to the pipeline as is.
 */
type Color = Vec4
