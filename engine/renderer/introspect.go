package renderer

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Enumerates the active attributes and uniforms of a linked program.
 * Descriptors keep the order in which the driver reports them.
 *
 * @param backend The backend owning the program.
 * @param program The program handle.
 * @return The attributes, the uniforms, or a *core.ShaderLinkError when the
 * program is 0 or did not link.
 */
func Introspect(backend RendererBackend, program uint32) ([]metadata.AttributeDescriptor, []metadata.UniformDescriptor, error) {
	if program == 0 || !backend.ProgramLinked(program) {
		err := &core.ShaderLinkError{Program: program}
		core.LogError(err.Error())
		return nil, nil, err
	}

	active := backend.ActiveAttributes(program)
	attributes := make([]metadata.AttributeDescriptor, 0, len(active))
	seen := make(map[string]struct{}, len(active))
	for _, a := range active {
		// arrays are reported as "name[0]"
		name := strings.TrimSuffix(a.Name, "[0]")
		if _, ok := seen[name]; ok {
			err := fmt.Errorf("program %d reports attribute `%s` twice", program, name)
			core.LogError(err.Error())
			return nil, nil, err
		}
		seen[name] = struct{}{}

		count := uint32(1)
		if a.Size > 1 {
			count = uint32(a.Size)
		}
		d, err := metadata.NewAttributeDescriptor(name, a.Type, count, a.Location)
		if err != nil {
			core.LogError(err.Error())
			return nil, nil, err
		}
		attributes = append(attributes, d)
	}

	var uniforms []metadata.UniformDescriptor
	for _, u := range backend.ActiveUniforms(program) {
		count := uint32(1)
		if u.Size > 1 {
			count = uint32(u.Size)
		}
		uniforms = append(uniforms, metadata.UniformDescriptor{
			// arrays are reported as "name[0]"
			Name:     strings.TrimSuffix(u.Name, "[0]"),
			Type:     u.Type,
			Count:    count,
			Location: u.Location,
		})
	}
	return attributes, uniforms, nil
}

/**
 * @brief Introspects the shader's program and stores the result on it. The
 * shader is marked initialized only when introspection succeeds.
 */
func IntrospectShader(backend RendererBackend, shader *metadata.Shader) error {
	attributes, uniforms, err := Introspect(backend, shader.Program)
	if err != nil {
		shader.State = metadata.SHADER_STATE_UNINITIALIZED
		return err
	}
	shader.SetAttributes(attributes)
	shader.SetUniforms(uniforms)
	shader.State = metadata.SHADER_STATE_INITIALIZED
	return nil
}
