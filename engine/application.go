package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type WindowConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"height"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	Window   WindowConfig  `toml:"window"`
	// Directory scanned for shader sources and images.
	AssetsDir string `toml:"assets_dir"`
	// Rebuild shaders when their sources change on disk.
	HotReload bool `toml:"hot_reload"`
	// 0 disables frame limiting.
	TargetFPS uint32 `toml:"target_fps"`
	// Shader made current at startup, defaults to the first one.
	DefaultShader string `toml:"default_shader"`

	Shaders   []metadata.ShaderConfig   `toml:"shaders"`
	Materials []metadata.MaterialConfig `toml:"materials"`
	Lights    []metadata.LightConfig    `toml:"lights"`
	// Optional [fog] table.
	Fog *metadata.FogConfig `toml:"fog"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:     "Lumen",
		LogLevel: core.LogLevelInfo,
		Window: WindowConfig{
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
		},
		AssetsDir: "assets",
		TargetFPS: 60,
	}
}

/**
 * @brief Reads the TOML file at path on top of DefaultConfig and validates
 * the result.
 */
func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Validate reports every problem found, joined.
func (c *ApplicationConfig) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	level, err := core.ParseLogLevel(string(c.LogLevel))
	if err != nil {
		errs = append(errs, err)
	}
	c.LogLevel = level
	if c.Window.StartWidth == 0 || c.Window.StartHeight == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.StartWidth, c.Window.StartHeight))
	}
	if c.AssetsDir == "" {
		errs = append(errs, errors.New("assets_dir must not be empty"))
	}

	shaders := make(map[string]struct{}, len(c.Shaders))
	for i, s := range c.Shaders {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("shaders[%d]: name must not be empty", i))
			continue
		}
		if _, dup := shaders[s.Name]; dup {
			errs = append(errs, fmt.Errorf("shaders[%d]: duplicate shader `%s`", i, s.Name))
		}
		shaders[s.Name] = struct{}{}
		if s.Vertex == "" || s.Fragment == "" {
			errs = append(errs, fmt.Errorf("shader `%s` needs both a vertex and a fragment source", s.Name))
		}
	}
	if c.DefaultShader != "" {
		if _, ok := shaders[c.DefaultShader]; !ok {
			errs = append(errs, fmt.Errorf("default_shader `%s` is not declared", c.DefaultShader))
		}
	}

	materials := make(map[string]struct{}, len(c.Materials))
	for i, m := range c.Materials {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("materials[%d]: name must not be empty", i))
			continue
		}
		if _, dup := materials[m.Name]; dup || m.Name == metadata.DefaultMaterialName {
			errs = append(errs, fmt.Errorf("materials[%d]: duplicate material `%s`", i, m.Name))
		}
		materials[m.Name] = struct{}{}
		kind, err := metadata.MaterialKindFromString(m.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("material `%s`: %w", m.Name, err))
		} else if kind == metadata.MaterialKindTextured && m.Texture == "" {
			errs = append(errs, fmt.Errorf("material `%s` is textured but has no texture", m.Name))
		}
	}

	if len(c.Lights) > metadata.MAX_LIGHT_COUNT {
		errs = append(errs, fmt.Errorf("%d lights exceed the maximum of %d", len(c.Lights), metadata.MAX_LIGHT_COUNT))
	}
	for i, l := range c.Lights {
		if _, err := metadata.LightKindFromString(l.Kind); err != nil {
			errs = append(errs, fmt.Errorf("lights[%d]: %w", i, err))
		}
	}
	if c.Fog != nil {
		if _, err := metadata.NewFogFromConfig(c.Fog); err != nil {
			errs = append(errs, fmt.Errorf("fog: %w", err))
		}
	}
	return errors.Join(errs...)
}
