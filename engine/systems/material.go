package systems

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of materials that can be registered. */
	MaxMaterialCount uint32
}

/**
 * @brief The material registry. Textured materials acquire their texture
 * lazily, the first time they are used.
 */
type MaterialSystem struct {
	Config          *MaterialSystemConfig
	DefaultMaterial *metadata.Material

	materials map[string]*metadata.Material
	ids       *core.IdentifierPool
	// sub systems
	textureSystem *TextureSystem
	renderer      *renderer.Renderer
}

func NewMaterialSystem(config *MaterialSystemConfig, ts *TextureSystem, r *renderer.Renderer) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	ms := &MaterialSystem{
		Config:        config,
		materials:     make(map[string]*metadata.Material),
		ids:           core.NewIdentifierPool(int(config.MaxMaterialCount)),
		textureSystem: ts,
		renderer:      r,
	}
	ms.DefaultMaterial = metadata.NewMaterial(metadata.DefaultMaterialName, math.NewVec4(1, 1, 1, 1))
	if err := ms.Add(ms.DefaultMaterial); err != nil {
		return nil, err
	}
	return ms, nil
}

// Register creates a material from config and adds it.
func (ms *MaterialSystem) Register(config *metadata.MaterialConfig) (*metadata.Material, error) {
	m, err := metadata.NewMaterialFromConfig(config)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if err := ms.Add(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (ms *MaterialSystem) Add(m *metadata.Material) error {
	if _, exists := ms.materials[m.Name]; exists {
		err := fmt.Errorf("material `%s` already exists", m.Name)
		core.LogError(err.Error())
		return err
	}
	if uint32(len(ms.materials)) >= ms.Config.MaxMaterialCount {
		err := fmt.Errorf("material system is full, cannot add `%s`", m.Name)
		core.LogError(err.Error())
		return err
	}
	m.ID = ms.ids.Acquire(m)
	m.Generation = 1
	ms.materials[m.Name] = m
	return nil
}

func (ms *MaterialSystem) Get(name string) (*metadata.Material, error) {
	m, ok := ms.materials[name]
	if !ok {
		err := fmt.Errorf("%w: `%s`", core.ErrMaterialNotFound, name)
		core.LogError(err.Error())
		return nil, err
	}
	return m, nil
}

/**
 * @brief Applies the named material to the current shader. Textured
 * materials load their image on first use; a missing image falls back to
 * the default texture.
 */
func (ms *MaterialSystem) Use(name string) error {
	m, err := ms.Get(name)
	if err != nil {
		return err
	}
	if m.Kind == metadata.MaterialKindTextured && m.Texture == 0 {
		texture, err := ms.textureSystem.Acquire(m.TexturePath, true)
		if err != nil || texture == nil {
			core.LogWarn("material `%s` falls back to the default texture", m.Name)
			texture = ms.textureSystem.DefaultTexture
		}
		if texture == nil {
			err := fmt.Errorf("material `%s` has no texture and no default texture is loaded", m.Name)
			core.LogError(err.Error())
			return err
		}
		m.Texture = texture.Handle
		m.Generation++
	}
	return ms.renderer.ApplyMaterial(m)
}

// Remove drops the named material and its texture reference. The default material stays.
func (ms *MaterialSystem) Remove(name string) error {
	if name == metadata.DefaultMaterialName {
		err := fmt.Errorf("the default material cannot be removed")
		core.LogError(err.Error())
		return err
	}
	m, err := ms.Get(name)
	if err != nil {
		return err
	}
	ms.release(m)
	delete(ms.materials, name)
	return ms.ids.Release(m.ID)
}

func (ms *MaterialSystem) release(m *metadata.Material) {
	if m.Kind == metadata.MaterialKindTextured && m.Texture != 0 {
		if ms.textureSystem.DefaultTexture == nil || m.Texture != ms.textureSystem.DefaultTexture.Handle {
			ms.textureSystem.Release(m.TexturePath)
		}
		m.Texture = 0
	}
}

func (ms *MaterialSystem) Shutdown() error {
	for name, m := range ms.materials {
		ms.release(m)
		delete(ms.materials, name)
	}
	return nil
}
