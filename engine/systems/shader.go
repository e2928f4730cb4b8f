package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

/**
 * @brief The shader registry. It compiles, links and introspects programs
 * and hands them out by name.
 */
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	Lookup map[string]uint32
	ids    *core.IdentifierPool
	// sub systems
	renderer     *renderer.Renderer
	assetManager *assets.AssetManager
}

func NewShaderSystem(config *ShaderSystemConfig, r *renderer.Renderer, am *assets.AssetManager) (*ShaderSystem, error) {
	// Verify configuration.
	if config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		Config:       config,
		Lookup:       make(map[string]uint32),
		ids:          core.NewIdentifierPool(int(config.MaxShaderCount)),
		renderer:     r,
		assetManager: am,
	}, nil
}

/**
 * @brief Shuts down the shader system, destroying every program.
 */
func (shaderSystem *ShaderSystem) Shutdown() error {
	for name := range shaderSystem.Lookup {
		if err := shaderSystem.Destroy(name); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Creates a new shader with the given config: loads both stages,
 * compiles, links and introspects them.
 *
 * @param config The configuration to be used when creating the shader.
 * @return The shader, or an error. A link failure is a *core.ShaderLinkError.
 */
func (shaderSystem *ShaderSystem) Create(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	if config.Name == "" {
		err := errors.New("shader config has no name")
		core.LogError(err.Error())
		return nil, err
	}
	if _, exists := shaderSystem.Lookup[config.Name]; exists {
		err := fmt.Errorf("shader `%s` already exists", config.Name)
		core.LogError(err.Error())
		return nil, err
	}
	if len(shaderSystem.Lookup) >= int(shaderSystem.Config.MaxShaderCount) {
		err := fmt.Errorf("unable to find free slot to create shader `%s`. Aborting", config.Name)
		core.LogError(err.Error())
		return nil, err
	}

	shader := &metadata.Shader{
		Name:         config.Name,
		VertexPath:   config.Vertex,
		FragmentPath: config.Fragment,
		State:        metadata.SHADER_STATE_NOT_CREATED,
	}
	if err := shaderSystem.link(shader); err != nil {
		return nil, err
	}
	shader.Generation = 1
	shader.ID = shaderSystem.ids.Acquire(shader)
	shaderSystem.Lookup[shader.Name] = shader.ID

	core.LogInfo("shader `%s` created with %d attributes and %d uniforms", shader.Name, len(shader.Attributes()), len(shader.Uniforms()))
	return shader, nil
}

// link builds a program from the shader's stage paths and introspects it into shader.
func (shaderSystem *ShaderSystem) link(shader *metadata.Shader) error {
	vertex, err := shaderSystem.source(shader.VertexPath)
	if err != nil {
		return err
	}
	fragment, err := shaderSystem.source(shader.FragmentPath)
	if err != nil {
		return err
	}

	backend := shaderSystem.renderer.Backend()
	program, err := backend.ShaderCreate(vertex, fragment)
	if err != nil {
		if program != 0 {
			backend.ShaderDestroy(program)
		}
		core.LogError("shader `%s`: %s", shader.Name, err)
		return err
	}
	shader.Program = program
	shader.State = metadata.SHADER_STATE_UNINITIALIZED

	if err := renderer.IntrospectShader(backend, shader); err != nil {
		backend.ShaderDestroy(program)
		shader.Program = 0
		return err
	}
	return nil
}

func (shaderSystem *ShaderSystem) source(path string) (string, error) {
	res, err := shaderSystem.assetManager.LoadAsset(path, nil)
	if err != nil {
		return "", err
	}
	defer shaderSystem.assetManager.UnloadAsset(res)

	src, ok := res.Data.(string)
	if !ok {
		err := fmt.Errorf("asset `%s` is not a shader source", path)
		core.LogError(err.Error())
		return "", err
	}
	return src, nil
}

/**
 * @brief Gets a shader by name.
 */
func (shaderSystem *ShaderSystem) Get(name string) (*metadata.Shader, error) {
	id, ok := shaderSystem.Lookup[name]
	if !ok {
		err := fmt.Errorf("%w: `%s`", core.ErrShaderNotFound, name)
		core.LogError(err.Error())
		return nil, err
	}
	return shaderSystem.GetByID(id)
}

func (shaderSystem *ShaderSystem) GetByID(id uint32) (*metadata.Shader, error) {
	shader, ok := shaderSystem.ids.Owner(id).(*metadata.Shader)
	if !ok {
		err := fmt.Errorf("%w: id %d", core.ErrShaderNotFound, id)
		core.LogError(err.Error())
		return nil, err
	}
	return shader, nil
}

// Use makes the named shader current for subsequent draws.
func (shaderSystem *ShaderSystem) Use(name string) error {
	shader, err := shaderSystem.Get(name)
	if err != nil {
		return err
	}
	return shaderSystem.renderer.UseShader(shader)
}

// Current returns the shader in use, nil if none.
func (shaderSystem *ShaderSystem) Current() *metadata.Shader {
	return shaderSystem.renderer.CurrentShader()
}

/**
 * @brief Rebuilds the named shader from its sources in place. On success the
 * old program is destroyed and the generation bumped, so every pipeline
 * regenerates its buffers on the next render. On failure the old program
 * stays in use.
 */
func (shaderSystem *ShaderSystem) Reload(name string) error {
	shader, err := shaderSystem.Get(name)
	if err != nil {
		return err
	}
	next := &metadata.Shader{
		Name:         shader.Name,
		VertexPath:   shader.VertexPath,
		FragmentPath: shader.FragmentPath,
	}
	if err := shaderSystem.link(next); err != nil {
		core.LogWarn("shader `%s` kept its previous program", name)
		return err
	}

	wasCurrent := shaderSystem.Current() == shader
	shaderSystem.renderer.Backend().ShaderDestroy(shader.Program)
	shader.Program = next.Program
	shader.SetAttributes(next.Attributes())
	shader.SetUniforms(next.Uniforms())
	shader.State = metadata.SHADER_STATE_INITIALIZED
	shader.Generation++
	if wasCurrent {
		if err := shaderSystem.renderer.UseShader(shader); err != nil {
			return err
		}
	}
	core.LogInfo("shader `%s` reloaded, generation %d", name, shader.Generation)
	return nil
}

// ReloadByPath reloads every shader with a stage at path and returns how many were rebuilt.
func (shaderSystem *ShaderSystem) ReloadByPath(path string) (int, error) {
	var errs []error
	n := 0
	for name, id := range shaderSystem.Lookup {
		shader, _ := shaderSystem.ids.Owner(id).(*metadata.Shader)
		if shader == nil || (shader.VertexPath != path && shader.FragmentPath != path) {
			continue
		}
		if err := shaderSystem.Reload(name); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// OnShaderSourceChanged handles EVENT_CODE_SHADER_SOURCE_CHANGED.
func (shaderSystem *ShaderSystem) OnShaderSourceChanged(context core.EventContext, listener interface{}) bool {
	path, ok := context.Data.(string)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if _, err := shaderSystem.ReloadByPath(path); err != nil {
		core.LogError("hot reload of %s failed: %s", path, err)
	}
	// other listeners may care about the same file
	return false
}

/**
 * @brief Destroys the named shader and frees its id.
 */
func (shaderSystem *ShaderSystem) Destroy(name string) error {
	id, ok := shaderSystem.Lookup[name]
	if !ok {
		err := fmt.Errorf("%w: `%s`", core.ErrShaderNotFound, name)
		core.LogError(err.Error())
		return err
	}
	shader, _ := shaderSystem.ids.Owner(id).(*metadata.Shader)
	if shader != nil {
		if shaderSystem.Current() == shader {
			shaderSystem.renderer.ResetShader()
		}
		shaderSystem.renderer.Backend().ShaderDestroy(shader.Program)
		shader.Program = 0
		shader.State = metadata.SHADER_STATE_NOT_CREATED
	}
	delete(shaderSystem.Lookup, name)
	return shaderSystem.ids.Release(id)
}
