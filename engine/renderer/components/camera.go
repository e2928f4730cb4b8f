package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief A perspective camera orbiting a target point. The view and
 * projection matrices are rebuilt lazily after any change.
 */
type Camera struct {
	/**
	 * @brief The point the camera looks at.
	 * NOTE: Do not set this directly, use SetTarget() instead
	 * so the view matrix is recalculated when needed.
	 */
	Target mgl32.Vec3
	/** @brief Distance from the target. */
	Distance float32
	/** @brief Rotation around the world Y axis, in radians. */
	Yaw float32
	/** @brief Elevation above the target plane, in radians. Clamped short of the poles. */
	Pitch float32

	FovY   float32
	Aspect float32
	Near   float32
	Far    float32

	viewDirty       bool
	projectionDirty bool
	view            mgl32.Mat4
	projection      mgl32.Mat4
}

const maxPitch = gomath.Pi/2 - 0.01

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Target = mgl32.Vec3{}
	c.Distance = 6
	c.Yaw = 0
	c.Pitch = 0.25
	c.FovY = mgl32.DegToRad(45)
	c.Aspect = 16.0 / 9.0
	c.Near = 0.1
	c.Far = 100
	c.viewDirty = true
	c.projectionDirty = true
}

func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// Orbit adds the given angles to the yaw and pitch.
func (c *Camera) Orbit(yaw, pitch float32) {
	c.Yaw += yaw
	c.Pitch = mgl32.Clamp(c.Pitch+pitch, -maxPitch, maxPitch)
	c.viewDirty = true
}

// Zoom moves towards the target, never closer than the near plane.
func (c *Camera) Zoom(amount float32) {
	c.Distance = float32(gomath.Max(float64(c.Distance-amount), float64(c.Near)))
	c.viewDirty = true
}

func (c *Camera) SetViewport(width, height uint32) {
	if height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
	c.projectionDirty = true
}

func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		c.Distance * cp * float32(gomath.Sin(float64(c.Yaw))),
		c.Distance * float32(gomath.Sin(float64(c.Pitch))),
		c.Distance * cp * float32(gomath.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset)
}

func (c *Camera) View() mgl32.Mat4 {
	if c.viewDirty {
		c.view = mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
		c.viewDirty = false
	}
	return c.view
}

func (c *Camera) Projection() mgl32.Mat4 {
	if c.projectionDirty {
		c.projection = mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
		c.projectionDirty = false
	}
	return c.projection
}

// Forward is the unit vector from the camera to its target.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}
