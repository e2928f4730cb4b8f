package systems

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// LightSystem holds the lights of the scene, at most metadata.MAX_LIGHT_COUNT, and its fog.
type LightSystem struct {
	lights   []*metadata.Light
	fog      *metadata.Fog
	renderer *renderer.Renderer
}

func NewLightSystem(r *renderer.Renderer) *LightSystem {
	return &LightSystem{renderer: r}
}

func (ls *LightSystem) Add(light *metadata.Light) error {
	if len(ls.lights) >= metadata.MAX_LIGHT_COUNT {
		err := fmt.Errorf("cannot add more than %d lights", metadata.MAX_LIGHT_COUNT)
		core.LogError(err.Error())
		return err
	}
	ls.lights = append(ls.lights, light)
	return nil
}

func (ls *LightSystem) Register(config *metadata.LightConfig) (*metadata.Light, error) {
	light, err := metadata.NewLightFromConfig(config)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if err := ls.Add(light); err != nil {
		return nil, err
	}
	return light, nil
}

func (ls *LightSystem) Remove(light *metadata.Light) bool {
	for i, l := range ls.lights {
		if l == light {
			ls.lights = append(ls.lights[:i], ls.lights[i+1:]...)
			return true
		}
	}
	return false
}

func (ls *LightSystem) Lights() []*metadata.Light {
	return append([]*metadata.Light(nil), ls.lights...)
}

// SetFog replaces the scene fog, nil clears it.
func (ls *LightSystem) SetFog(fog *metadata.Fog) {
	ls.fog = fog
}

func (ls *LightSystem) Fog() *metadata.Fog {
	return ls.fog
}

// ConfigureFog builds the fog from config and makes it the scene fog.
func (ls *LightSystem) ConfigureFog(config *metadata.FogConfig) (*metadata.Fog, error) {
	fog, err := metadata.NewFogFromConfig(config)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	ls.fog = fog
	return fog, nil
}

// Apply writes the lights and the fog into the current shader.
func (ls *LightSystem) Apply() error {
	if err := ls.renderer.ApplyLights(ls.lights); err != nil {
		return err
	}
	return ls.renderer.ApplyFog(ls.fog)
}

func (ls *LightSystem) Shutdown() error {
	ls.lights = nil
	ls.fog = nil
	return nil
}
