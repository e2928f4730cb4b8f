package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/** @brief Anything that can draw itself through the renderer. */
type Drawable interface {
	Render(r *Renderer) error
}

/**
 * @brief Everything the renderer needs to draw one frame.
 */
type RenderPacket struct {
	DeltaTime float64
	Drawables []Drawable
}

/**
 * @brief The renderer frontend. Holds the backend and the shader currently
 * in use; owned by the engine and passed to whoever draws.
 */
type Renderer struct {
	backend RendererBackend
	current *metadata.Shader

	projection mgl32.Mat4
	view       mgl32.Mat4
	model      mgl32.Mat4

	frameNumber uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{
		backend:    backend,
		projection: mgl32.Ident4(),
		view:       mgl32.Ident4(),
		model:      mgl32.Ident4(),
	}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	return r.backend.Initialize(appName, appWidth, appHeight)
}

func (r *Renderer) Shutdown() error {
	r.ResetShader()
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

func (r *Renderer) BeginFrame(deltaTime float64) error {
	return r.backend.BeginFrame(deltaTime)
}

func (r *Renderer) EndFrame(deltaTime float64) error {
	err := r.backend.EndFrame(deltaTime)
	r.frameNumber++
	return err
}

/**
 * @brief Draws every drawable of the packet. The first failing drawable
 * aborts the rest of the frame and its error is returned once the frame has
 * been ended.
 */
func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if err := r.BeginFrame(packet.DeltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}
	var drawErr error
	for _, d := range packet.Drawables {
		if err := d.Render(r); err != nil {
			drawErr = fmt.Errorf("frame %d aborted: %w", r.frameNumber, err)
			core.LogError(drawErr.Error())
			break
		}
	}
	if err := r.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return errors.Join(drawErr, err)
	}
	return drawErr
}

// UseShader makes shader current and uploads the transform uniforms it declares.
func (r *Renderer) UseShader(shader *metadata.Shader) error {
	if err := checkShader(shader); err != nil {
		return err
	}
	r.backend.ShaderUse(shader.Program)
	r.current = shader
	r.applyTransforms()
	return nil
}

// ResetShader unbinds the current program, if any.
func (r *Renderer) ResetShader() {
	r.backend.ShaderUse(0)
	r.current = nil
}

func (r *Renderer) CurrentShader() *metadata.Shader {
	return r.current
}

func (r *Renderer) SetProjection(projection mgl32.Mat4) {
	r.projection = projection
	r.applyTransforms()
}

func (r *Renderer) SetView(view mgl32.Mat4) {
	r.view = view
	r.applyTransforms()
}

func (r *Renderer) View() mgl32.Mat4 {
	return r.view
}

func (r *Renderer) Model() mgl32.Mat4 {
	return r.model
}

func (r *Renderer) SetModel(model mgl32.Mat4) {
	r.model = model
	r.applyTransforms()
}

const (
	UniformProjection = "uProjection"
	UniformView       = "uView"
	UniformModel      = "uModel"
	UniformMVP        = "uMVP"
	UniformLightCount = "uLightCount"
	UniformOpacity    = "uOpacity"
)

func (r *Renderer) applyTransforms() {
	if r.current == nil {
		return
	}
	r.SetUniformMatrix(UniformProjection, r.projection)
	r.SetUniformMatrix(UniformView, r.view)
	r.SetUniformMatrix(UniformModel, r.model)
	r.SetUniformMatrix(UniformMVP, r.projection.Mul4(r.view).Mul4(r.model))
}

// SetUniformMatrix is a no-op when the current shader does not declare name.
func (r *Renderer) SetUniformMatrix(name string, m mgl32.Mat4) {
	if loc := r.uniformLocation(name); loc >= 0 {
		r.backend.SetUniformMatrix4(loc, m)
	}
}

func (r *Renderer) SetUniform(name string, values ...float32) {
	if loc := r.uniformLocation(name); loc >= 0 {
		r.backend.SetUniform(loc, values...)
	}
}

func (r *Renderer) SetUniformi(name string, values ...int32) {
	if loc := r.uniformLocation(name); loc >= 0 {
		r.backend.SetUniformi(loc, values...)
	}
}

func (r *Renderer) uniformLocation(name string) int32 {
	if r.current == nil {
		return -1
	}
	return r.current.UniformLocation(name)
}

/**
 * @brief Writes the material into the uniforms the current shader declares.
 * A textured material must already hold a backend texture.
 */
func (r *Renderer) ApplyMaterial(material *metadata.Material) error {
	if r.current == nil {
		core.LogError(core.ErrNoShaderBound.Error())
		return core.ErrNoShaderBound
	}
	r.SetUniform(metadata.UniformMaterialAmbient, material.Ambient.Slice()...)
	r.SetUniform(metadata.UniformMaterialDiffuse, material.Diffuse.Slice()...)
	r.SetUniform(metadata.UniformMaterialSpecular, material.Specular.Slice()...)
	r.SetUniform(metadata.UniformMaterialEmission, material.Emission.Slice()...)
	r.SetUniform(metadata.UniformMaterialShininess, material.Shininess)

	switch material.Kind {
	case metadata.MaterialKindTextured:
		if material.Texture == 0 {
			err := fmt.Errorf("material `%s` has no texture loaded", material.Name)
			core.LogError(err.Error())
			return err
		}
		r.backend.TextureBind(0, material.Texture)
		r.SetUniformi(metadata.UniformMaterialTexture, 0)
		r.SetUniformi(metadata.UniformMaterialTextured, 1)
	default:
		r.backend.TextureBind(0, 0)
		r.SetUniformi(metadata.UniformMaterialTextured, 0)
	}
	return nil
}

/**
 * @brief Writes up to metadata.MAX_LIGHT_COUNT lights into the uLights array
 * of the current shader, positions in eye space.
 */
func (r *Renderer) ApplyLights(lights []*metadata.Light) error {
	if r.current == nil {
		core.LogError(core.ErrNoShaderBound.Error())
		return core.ErrNoShaderBound
	}
	if len(lights) > metadata.MAX_LIGHT_COUNT {
		err := fmt.Errorf("%d lights exceed the maximum of %d", len(lights), metadata.MAX_LIGHT_COUNT)
		core.LogError(err.Error())
		return err
	}
	for i, l := range lights {
		prefix := fmt.Sprintf("uLights[%d].", i)
		r.SetUniformi(prefix+"kind", int32(l.Kind))
		r.SetUniform(prefix+"position", l.EyePosition(r.view).Slice()...)
		r.SetUniform(prefix+"ambient", l.Ambient.Slice()...)
		r.SetUniform(prefix+"diffuse", l.Diffuse.Slice()...)
		r.SetUniform(prefix+"specular", l.Specular.Slice()...)
		switch l.Kind {
		case metadata.LightKindSpot:
			d := r.view.Mat3().Mul3x1(mgl32.Vec3{l.SpotDirection.X, l.SpotDirection.Y, l.SpotDirection.Z})
			r.SetUniform(prefix+"spotDirection", d[0], d[1], d[2])
			r.SetUniform(prefix+"spotCosCutoff", l.CosCutoff())
			r.SetUniform(prefix+"spotExponent", l.SpotExponent)
			fallthrough
		case metadata.LightKindPoint:
			r.SetUniform(prefix+"attenuation", l.Attenuation.X, l.Attenuation.Y, l.Attenuation.Z)
		}
	}
	r.SetUniformi(UniformLightCount, int32(len(lights)))
	return nil
}

// ApplyFog writes fog into the current shader. A nil fog disables it.
func (r *Renderer) ApplyFog(fog *metadata.Fog) error {
	if r.current == nil {
		core.LogError(core.ErrNoShaderBound.Error())
		return core.ErrNoShaderBound
	}
	if fog == nil {
		r.SetUniformi(metadata.UniformFogEnabled, 0)
		return nil
	}
	r.SetUniformi(metadata.UniformFogEnabled, 1)
	r.SetUniformi(metadata.UniformFogMode, int32(fog.Mode))
	r.SetUniform(metadata.UniformFogColor, fog.Color.Slice()...)
	r.SetUniform(metadata.UniformFogDensity, fog.Density)
	r.SetUniform(metadata.UniformFogStart, fog.Start)
	r.SetUniform(metadata.UniformFogEnd, fog.End)
	return nil
}

/**
 * @brief Draws geometry through pipeline with the current shader.
 */
func (r *Renderer) Draw(pipeline *AttributePipeline, vertices []VertexSource, faces []FaceSource, generation uint64) error {
	if r.current == nil {
		core.LogError(core.ErrNoShaderBound.Error())
		return core.ErrNoShaderBound
	}
	return pipeline.Render(vertices, faces, r.current, generation)
}
