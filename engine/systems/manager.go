package systems

import (
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief What the manager creates at startup, normally taken from the
 * application config.
 */
type SystemManagerConfig struct {
	Shaders   []metadata.ShaderConfig
	Materials []metadata.MaterialConfig
	Lights    []metadata.LightConfig
	// Nil means no fog.
	Fog *metadata.FogConfig
	// Shader made current once everything is created; empty keeps the first one.
	DefaultShader string
}

type SystemManager struct {
	shaderSystem   *ShaderSystem
	textureSystem  *TextureSystem
	materialSystem *MaterialSystem
	lightSystem    *LightSystem
	geometrySystem *GeometrySystem

	events *core.EventSystem
}

func NewSystemManager(r *renderer.Renderer, am *assets.AssetManager, events *core.EventSystem) (*SystemManager, error) {
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: 1000,
	}, am, r)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: 1000,
	}, r, am)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: 1000,
	}, ts, r)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: 4096,
	})
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		shaderSystem:   ssys,
		textureSystem:  ts,
		materialSystem: ms,
		lightSystem:    NewLightSystem(r),
		geometrySystem: gs,
		events:         events,
	}, nil
}

/**
 * @brief Creates everything listed in config. Requires a live backend. Shader
 * sources changed on disk are reloaded when their events are drained.
 */
func (sm *SystemManager) Initialize(config *SystemManagerConfig) error {
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	for i := range config.Shaders {
		if _, err := sm.shaderSystem.Create(&config.Shaders[i]); err != nil {
			return err
		}
	}
	for i := range config.Materials {
		if _, err := sm.materialSystem.Register(&config.Materials[i]); err != nil {
			return err
		}
	}
	for i := range config.Lights {
		if _, err := sm.lightSystem.Register(&config.Lights[i]); err != nil {
			return err
		}
	}

	if config.Fog != nil {
		if _, err := sm.lightSystem.ConfigureFog(config.Fog); err != nil {
			return err
		}
	}

	if sm.events != nil {
		sm.events.Register(core.EVENT_CODE_SHADER_SOURCE_CHANGED, sm.shaderSystem, sm.shaderSystem.OnShaderSourceChanged)
	}

	name := config.DefaultShader
	if name == "" && len(config.Shaders) > 0 {
		name = config.Shaders[0].Name
	}
	if name != "" {
		return sm.shaderSystem.Use(name)
	}
	return nil
}

func (sm *SystemManager) ShaderSystem() *ShaderSystem {
	return sm.shaderSystem
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) MaterialSystem() *MaterialSystem {
	return sm.materialSystem
}

func (sm *SystemManager) LightSystem() *LightSystem {
	return sm.lightSystem
}

func (sm *SystemManager) GeometrySystem() *GeometrySystem {
	return sm.geometrySystem
}

func (sm *SystemManager) Shutdown() error {
	if sm.events != nil {
		sm.events.Unregister(core.EVENT_CODE_SHADER_SOURCE_CHANGED, sm.shaderSystem)
	}
	if err := sm.geometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.lightSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.materialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.shaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
