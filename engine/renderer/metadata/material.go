package metadata

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/math"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief The closed set of material variants. */
type MaterialKind uint8

const (
	/** @brief Plain lit colour. */
	MaterialKindColor MaterialKind = iota
	/** @brief Lit colour modulated by a 2D texture. */
	MaterialKindTextured
)

func MaterialKindFromString(s string) (MaterialKind, error) {
	switch s {
	case "", "color":
		return MaterialKindColor, nil
	case "textured":
		return MaterialKindTextured, nil
	}
	return 0, fmt.Errorf("string %s is not a valid MaterialKind", s)
}

/**
 * @brief Uniform names a material writes to, when the bound shader declares them.
 */
const (
	UniformMaterialAmbient   = "uMaterial.ambient"
	UniformMaterialDiffuse   = "uMaterial.diffuse"
	UniformMaterialSpecular  = "uMaterial.specular"
	UniformMaterialEmission  = "uMaterial.emission"
	UniformMaterialShininess = "uMaterial.shininess"
	UniformMaterialTexture   = "uTexture"
	UniformMaterialTextured  = "uTextured"
)

/**
 * @brief Material configuration typically loaded from the application
 * config or created in code.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string `toml:"name"`
	/** @brief Either "color" or "textured". */
	Kind      string     `toml:"kind"`
	Ambient   [4]float32 `toml:"ambient"`
	Diffuse   [4]float32 `toml:"diffuse"`
	Specular  [4]float32 `toml:"specular"`
	Emission  [4]float32 `toml:"emission"`
	Shininess float32    `toml:"shininess"`
	/** @brief Image path relative to the assets dir, textured materials only. */
	Texture string `toml:"texture"`
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture, colour and shininess.
 */
type Material struct {
	/** @brief The material id. */
	ID   uint32
	Name string
	Kind MaterialKind
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32

	Ambient  math.Color
	Diffuse  math.Color
	Specular math.Color
	Emission math.Color
	/** @brief The material shininess, determines how concentrated the specular lighting is. */
	Shininess float32

	/** @brief Textured materials only. */
	TexturePath string
	/** @brief Backend texture handle, 0 until the image has been uploaded. */
	Texture uint32
}

// NewMaterial returns a colour material with the classic defaults.
func NewMaterial(name string, diffuse math.Color) *Material {
	return &Material{
		Name:      name,
		Kind:      MaterialKindColor,
		Ambient:   math.NewVec4(1, 1, 1, 1),
		Diffuse:   diffuse,
		Specular:  math.NewVec4(1, 1, 1, 1),
		Emission:  math.NewVec4(0, 0, 0, 0),
		Shininess: 1,
	}
}

// NewTexturedMaterial returns a material whose diffuse colour comes from the image at path.
func NewTexturedMaterial(name, path string) *Material {
	m := NewMaterial(name, math.NewVec4(0, 0, 0, 1))
	m.Kind = MaterialKindTextured
	m.TexturePath = path
	return m
}

// NewMaterialFromConfig builds a material, keeping defaults for unset colours.
func NewMaterialFromConfig(config *MaterialConfig) (*Material, error) {
	kind, err := MaterialKindFromString(config.Kind)
	if err != nil {
		return nil, err
	}
	var m *Material
	switch kind {
	case MaterialKindTextured:
		if config.Texture == "" {
			return nil, fmt.Errorf("textured material `%s` has no texture", config.Name)
		}
		m = NewTexturedMaterial(config.Name, config.Texture)
	default:
		m = NewMaterial(config.Name, math.NewVec4(1, 1, 1, 1))
	}
	if config.Diffuse != [4]float32{} {
		m.Diffuse = math.ColorRGBA(config.Diffuse[0], config.Diffuse[1], config.Diffuse[2], config.Diffuse[3])
	}
	if config.Ambient != [4]float32{} {
		m.Ambient = math.ColorRGBA(config.Ambient[0], config.Ambient[1], config.Ambient[2], config.Ambient[3])
	}
	if config.Specular != [4]float32{} {
		m.Specular = math.ColorRGBA(config.Specular[0], config.Specular[1], config.Specular[2], config.Specular[3])
	}
	if config.Emission != [4]float32{} {
		m.Emission = math.ColorRGBA(config.Emission[0], config.Emission[1], config.Emission[2], config.Emission[3])
	}
	if config.Shininess > 0 {
		m.Shininess = config.Shininess
	}
	return m, nil
}
