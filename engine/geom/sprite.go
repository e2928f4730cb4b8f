package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

/**
 * @brief An object placed in the world, drawn as one or more polygons under
 * a shared model transform.
 *
 * The transform applies scale first, then the rotations about Z, Y and X, then
 * the translation to Position.
 */
type Sprite struct {
	/** @brief The pivot of the sprite in world space. */
	Position math.Vec3
	/** @brief Per-axis scale, multiplied by UniformScale. */
	Scale        math.Vec3
	UniformScale float32
	/** @brief Rotation in radians about X (pitch), Y (yaw) and Z (roll). */
	Angles math.Vec3

	Visible bool

	/**
	 * @brief Runs before the polygons are drawn, with the sprite's model
	 * matrix not yet applied. Selects shader, material and the like.
	 */
	Prepare func(r *renderer.Renderer) error

	opacity   float32
	polygons  []*Polygon
	destroyed bool
}

func NewSprite(x, y, z float32, polygons ...*Polygon) *Sprite {
	return &Sprite{
		Position:     math.NewVec3(x, y, z),
		Scale:        math.NewVec3(1, 1, 1),
		UniformScale: 1,
		Visible:      true,
		opacity:      1,
		polygons:     polygons,
	}
}

func (s *Sprite) AddPolygon(p *Polygon) {
	s.polygons = append(s.polygons, p)
}

func (s *Sprite) Polygons() []*Polygon {
	return append([]*Polygon(nil), s.polygons...)
}

// SetOpacity clamps o into [0, 1]; 0 is fully transparent.
func (s *Sprite) SetOpacity(o float32) {
	s.opacity = math.Clamp(o, 0, 1)
}

func (s *Sprite) Opacity() float32 {
	return s.opacity
}

func (s *Sprite) IsDestroyed() bool {
	return s.destroyed
}

// Transform returns the model matrix of the sprite.
func (s *Sprite) Transform() mgl32.Mat4 {
	scale := s.Scale.MulScalar(s.UniformScale)
	return mgl32.Translate3D(s.Position.X, s.Position.Y, s.Position.Z).
		Mul4(mgl32.HomogRotate3DX(s.Angles.X)).
		Mul4(mgl32.HomogRotate3DY(s.Angles.Y)).
		Mul4(mgl32.HomogRotate3DZ(s.Angles.Z)).
		Mul4(mgl32.Scale3D(scale.X, scale.Y, scale.Z))
}

/**
 * @brief Draws every polygon under the sprite's transform and restores the
 * previous model matrix afterwards. Hidden or destroyed sprites draw nothing.
 */
func (s *Sprite) Render(r *renderer.Renderer) error {
	if !s.Visible || s.destroyed {
		return nil
	}
	if s.Prepare != nil {
		if err := s.Prepare(r); err != nil {
			return err
		}
	}

	previous := r.Model()
	defer r.SetModel(previous)
	r.SetModel(previous.Mul4(s.Transform()))
	r.SetUniform(renderer.UniformOpacity, s.opacity)

	for i, p := range s.polygons {
		if err := p.Render(r); err != nil {
			return fmt.Errorf("sprite polygon %d: %w", i, err)
		}
	}
	return nil
}

// Destroy frees the buffers of every polygon and stops the sprite from drawing.
func (s *Sprite) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, p := range s.polygons {
		p.Clean()
	}
}
