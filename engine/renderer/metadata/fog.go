package metadata

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/math"
)

/** @brief How fog density grows with the distance from the eye. */
type FogMode int

const (
	FogModeLinear FogMode = iota
	FogModeExp
	FogModeExp2
)

func FogModeFromString(s string) (FogMode, error) {
	switch s {
	case "linear":
		return FogModeLinear, nil
	case "", "exp":
		return FogModeExp, nil
	case "exp2":
		return FogModeExp2, nil
	}
	return 0, fmt.Errorf("string %s is not a valid FogMode", s)
}

func (m FogMode) String() string {
	switch m {
	case FogModeLinear:
		return "linear"
	case FogModeExp:
		return "exp"
	case FogModeExp2:
		return "exp2"
	}
	return fmt.Sprintf("FogMode(%d)", int(m))
}

/**
 * @brief Uniform names fog writes to, when the bound shader declares them.
 */
const (
	UniformFogEnabled = "uFog.enabled"
	UniformFogMode    = "uFog.mode"
	UniformFogColor   = "uFog.color"
	UniformFogDensity = "uFog.density"
	UniformFogStart   = "uFog.start"
	UniformFogEnd     = "uFog.end"
)

/**
 * @brief The [fog] table of the application config. Color wins over
 * ColorHex when both are set.
 */
type FogConfig struct {
	Mode     string     `toml:"mode"`
	Color    [3]float32 `toml:"color"`
	ColorHex uint32     `toml:"color_hex"`
	Density  float32    `toml:"density"`
	// Linear only, in eye space units.
	Start float32 `toml:"start"`
	End   float32 `toml:"end"`
}

// Fog is a depth cue blended over lit fragments.
type Fog struct {
	Mode    FogMode
	Color   math.Color
	Density float32
	Start   float32
	End     float32
}

// NewFog returns exponential fog of the given colour with density 0.5.
func NewFog(r, g, b float32) *Fog {
	return &Fog{
		Mode:    FogModeExp,
		Color:   math.ColorRGB(r, g, b),
		Density: 0.5,
		Start:   0,
		End:     1,
	}
}

// NewFogFromHex takes a packed 0xRRGGBB colour.
func NewFogFromHex(rgb uint32) *Fog {
	c := math.ColorFromARGB(rgb, false)
	return NewFog(c.X, c.Y, c.Z)
}

func NewFogFromConfig(config *FogConfig) (*Fog, error) {
	mode, err := FogModeFromString(config.Mode)
	if err != nil {
		return nil, err
	}
	var f *Fog
	if config.Color != [3]float32{} || config.ColorHex == 0 {
		f = NewFog(config.Color[0], config.Color[1], config.Color[2])
	} else {
		f = NewFogFromHex(config.ColorHex)
	}
	f.Mode = mode
	if config.Density < 0 {
		return nil, fmt.Errorf("fog density %f must not be negative", config.Density)
	}
	if config.Density > 0 {
		f.Density = config.Density
	}
	if mode == FogModeLinear {
		if config.End <= config.Start {
			return nil, fmt.Errorf("linear fog needs end %f beyond start %f", config.End, config.Start)
		}
		f.Start, f.End = config.Start, config.End
	}
	return f, nil
}

// SetColorHex replaces the colour with a packed 0xRRGGBB value.
func (f *Fog) SetColorHex(rgb uint32) {
	f.Color = math.ColorFromARGB(rgb, false)
}
