package metadata

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/math"
)

/** @brief The maximum number of lights applied in a single frame. */
const MAX_LIGHT_COUNT int = 8

/** @brief The closed set of light variants. */
type LightKind uint8

const (
	/** @brief Parallel rays, position holds the direction with w=0. */
	LightKindDirectional LightKind = iota
	/** @brief Omnidirectional light at a position. */
	LightKindPoint
	/** @brief Point light restricted to a cone. */
	LightKindSpot
)

func LightKindFromString(s string) (LightKind, error) {
	switch s {
	case "directional":
		return LightKindDirectional, nil
	case "", "point":
		return LightKindPoint, nil
	case "spot":
		return LightKindSpot, nil
	}
	return 0, fmt.Errorf("string %s is not a valid LightKind", s)
}

func (k LightKind) String() string {
	switch k {
	case LightKindDirectional:
		return "directional"
	case LightKindPoint:
		return "point"
	case LightKindSpot:
		return "spot"
	}
	return "unknown"
}

/**
 * @brief Light configuration as read from the application config.
 */
type LightConfig struct {
	Kind string `toml:"kind"`
	/** @brief Position for point and spot lights, direction for directional ones. */
	Position      [3]float32 `toml:"position"`
	Ambient       [4]float32 `toml:"ambient"`
	Diffuse       [4]float32 `toml:"diffuse"`
	Specular      [4]float32 `toml:"specular"`
	Attenuation   [3]float32 `toml:"attenuation"`
	SpotDirection [3]float32 `toml:"spot_direction"`
	SpotCutoff    float32    `toml:"spot_cutoff"`
	SpotExponent  float32    `toml:"spot_exponent"`
}

/**
 * @brief A light source. Fields that do not apply to the Kind are ignored
 * when the light is applied.
 */
type Light struct {
	Kind LightKind
	/** @brief w is 0 for directional lights and 1 otherwise. */
	Position math.Vec4
	Ambient  math.Color
	Diffuse  math.Color
	Specular math.Color
	/** @brief Constant, linear and quadratic attenuation. Point and spot only. */
	Attenuation math.Vec3

	/** @brief Spot only. */
	SpotDirection math.Vec3
	/** @brief Spot only, in degrees. */
	SpotCutoff   float32
	SpotExponent float32
}

func newLight(kind LightKind) *Light {
	return &Light{
		Kind:        kind,
		Ambient:     math.NewVec4(0, 0, 0, 1),
		Diffuse:     math.NewVec4(1, 1, 1, 1),
		Specular:    math.NewVec4(1, 1, 1, 1),
		Attenuation: math.NewVec3(1, 0, 0),
		SpotCutoff:  180,
	}
}

// NewDirectionalLight returns a light shining along direction.
func NewDirectionalLight(direction math.Vec3) *Light {
	l := newLight(LightKindDirectional)
	l.Position = direction.Normalized().ToVec4(0)
	return l
}

func NewPointLight(position math.Vec3) *Light {
	l := newLight(LightKindPoint)
	l.Position = position.ToVec4(1)
	return l
}

// NewSpotLight returns a cone light at position, cutoff is in degrees.
func NewSpotLight(position, direction math.Vec3, cutoff, exponent float32) *Light {
	l := newLight(LightKindSpot)
	l.Position = position.ToVec4(1)
	l.SpotDirection = direction.Normalized()
	l.SpotCutoff = cutoff
	l.SpotExponent = exponent
	return l
}

func NewLightFromConfig(config *LightConfig) (*Light, error) {
	kind, err := LightKindFromString(config.Kind)
	if err != nil {
		return nil, err
	}
	p := math.NewVec3(config.Position[0], config.Position[1], config.Position[2])
	var l *Light
	switch kind {
	case LightKindDirectional:
		l = NewDirectionalLight(p)
	case LightKindSpot:
		d := math.NewVec3(config.SpotDirection[0], config.SpotDirection[1], config.SpotDirection[2])
		if config.SpotCutoff < 0 || (config.SpotCutoff > 90 && config.SpotCutoff != 180) {
			return nil, fmt.Errorf("spot cutoff %f must be in [0, 90] or 180", config.SpotCutoff)
		}
		l = NewSpotLight(p, d, config.SpotCutoff, config.SpotExponent)
	default:
		l = NewPointLight(p)
	}
	if config.Ambient != [4]float32{} {
		l.Ambient = math.ColorRGBA(config.Ambient[0], config.Ambient[1], config.Ambient[2], config.Ambient[3])
	}
	if config.Diffuse != [4]float32{} {
		l.Diffuse = math.ColorRGBA(config.Diffuse[0], config.Diffuse[1], config.Diffuse[2], config.Diffuse[3])
	}
	if config.Specular != [4]float32{} {
		l.Specular = math.ColorRGBA(config.Specular[0], config.Specular[1], config.Specular[2], config.Specular[3])
	}
	if config.Attenuation != [3]float32{} {
		l.Attenuation = math.NewVec3(config.Attenuation[0], config.Attenuation[1], config.Attenuation[2])
	}
	return l, nil
}

/**
 * @brief Returns the light position transformed into eye space by view.
 * Directional lights are only rotated.
 */
func (l *Light) EyePosition(view mgl32.Mat4) math.Vec4 {
	p := view.Mul4x1(mgl32.Vec4{l.Position.X, l.Position.Y, l.Position.Z, l.Position.W})
	return math.NewVec4(p[0], p[1], p[2], p[3])
}

// CosCutoff is the cosine of the spot cutoff, -1 for lights that are not cones.
func (l *Light) CosCutoff() float32 {
	if l.Kind != LightKindSpot || l.SpotCutoff >= 180 {
		return -1
	}
	return float32(gomath.Cos(float64(mgl32.DegToRad(l.SpotCutoff))))
}
