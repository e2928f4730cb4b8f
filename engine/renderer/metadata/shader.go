package metadata

import (
	"fmt"
	"strings"
)

/** @brief Name prefix reserved for attributes and uniforms provided by the driver. */
const BuiltinPrefix = "gl_"

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader has been compiled, but not linked and introspected. It is unusable.*/
	SHADER_STATE_UNINITIALIZED
	/** @brief The shader is linked and introspected, and is ready for use.*/
	SHADER_STATE_INITIALIZED
)

/**
 * @brief The scalar type underlying an attribute. Each base type gets its own
 * packed vertex buffer.
 */
type BaseType uint8

const (
	BaseTypeFloat32 BaseType = iota
	BaseTypeInt32
	BaseTypeUInt32
	BaseTypeFloat64
)

// BufferGroups are the base types that own a vertex buffer, in buffer slot order.
var BufferGroups = [...]BaseType{BaseTypeFloat32, BaseTypeInt32, BaseTypeFloat64}

// Size returns the number of bytes of one scalar.
func (b BaseType) Size() uint32 {
	switch b {
	case BaseTypeFloat64:
		return 8
	default:
		return 4
	}
}

// Group folds UInt32 into Int32, since both share the integer buffer.
func (b BaseType) Group() BaseType {
	if b == BaseTypeUInt32 {
		return BaseTypeInt32
	}
	return b
}

func (b BaseType) String() string {
	switch b {
	case BaseTypeFloat32:
		return "float32"
	case BaseTypeInt32:
		return "int32"
	case BaseTypeUInt32:
		return "uint32"
	case BaseTypeFloat64:
		return "float64"
	}
	return fmt.Sprintf("BaseType(%d)", uint8(b))
}

/**
 * @brief The declared GLSL type of an active attribute or uniform. Values match
 * the GL enums reported by program introspection.
 */
type GLSLType uint32

const (
	GLSLFloat       GLSLType = 0x1406
	GLSLVec2        GLSLType = 0x8B50
	GLSLVec3        GLSLType = 0x8B51
	GLSLVec4        GLSLType = 0x8B52
	GLSLMat2        GLSLType = 0x8B5A
	GLSLMat3        GLSLType = 0x8B5B
	GLSLMat4        GLSLType = 0x8B5C
	GLSLMat2x3      GLSLType = 0x8B65
	GLSLMat2x4      GLSLType = 0x8B66
	GLSLMat3x2      GLSLType = 0x8B67
	GLSLMat3x4      GLSLType = 0x8B68
	GLSLMat4x2      GLSLType = 0x8B69
	GLSLMat4x3      GLSLType = 0x8B6A
	GLSLInt         GLSLType = 0x1404
	GLSLIVec2       GLSLType = 0x8B53
	GLSLIVec3       GLSLType = 0x8B54
	GLSLIVec4       GLSLType = 0x8B55
	GLSLUint        GLSLType = 0x1405
	GLSLUVec2       GLSLType = 0x8DC6
	GLSLUVec3       GLSLType = 0x8DC7
	GLSLUVec4       GLSLType = 0x8DC8
	GLSLDouble      GLSLType = 0x140A
	GLSLDVec2       GLSLType = 0x8FFC
	GLSLDVec3       GLSLType = 0x8FFD
	GLSLDVec4       GLSLType = 0x8FFE
	GLSLDMat2       GLSLType = 0x8F46
	GLSLDMat3       GLSLType = 0x8F47
	GLSLDMat4       GLSLType = 0x8F48
	GLSLDMat2x3     GLSLType = 0x8F49
	GLSLDMat2x4     GLSLType = 0x8F4A
	GLSLDMat3x2     GLSLType = 0x8F4B
	GLSLDMat3x4     GLSLType = 0x8F4C
	GLSLDMat4x2     GLSLType = 0x8F4D
	GLSLDMat4x3     GLSLType = 0x8F4E
	GLSLSampler1D   GLSLType = 0x8B5D
	GLSLSampler2D   GLSLType = 0x8B5E
	GLSLSampler3D   GLSLType = 0x8B5F
	GLSLSamplerCube GLSLType = 0x8B60
)

type glslTypeInfo struct {
	name  string
	units uint32
	base  BaseType
	// Matrices take one location per column.
	columns uint32
}

var glslTypes = map[GLSLType]glslTypeInfo{
	GLSLFloat:       {"float", 1, BaseTypeFloat32, 1},
	GLSLVec2:        {"vec2", 2, BaseTypeFloat32, 1},
	GLSLVec3:        {"vec3", 3, BaseTypeFloat32, 1},
	GLSLVec4:        {"vec4", 4, BaseTypeFloat32, 1},
	GLSLMat2:        {"mat2", 4, BaseTypeFloat32, 2},
	GLSLMat3:        {"mat3", 9, BaseTypeFloat32, 3},
	GLSLMat4:        {"mat4", 16, BaseTypeFloat32, 4},
	GLSLMat2x3:      {"mat2x3", 6, BaseTypeFloat32, 2},
	GLSLMat2x4:      {"mat2x4", 8, BaseTypeFloat32, 2},
	GLSLMat3x2:      {"mat3x2", 6, BaseTypeFloat32, 3},
	GLSLMat3x4:      {"mat3x4", 12, BaseTypeFloat32, 3},
	GLSLMat4x2:      {"mat4x2", 8, BaseTypeFloat32, 4},
	GLSLMat4x3:      {"mat4x3", 12, BaseTypeFloat32, 4},
	GLSLInt:         {"int", 1, BaseTypeInt32, 1},
	GLSLIVec2:       {"ivec2", 2, BaseTypeInt32, 1},
	GLSLIVec3:       {"ivec3", 3, BaseTypeInt32, 1},
	GLSLIVec4:       {"ivec4", 4, BaseTypeInt32, 1},
	GLSLUint:        {"uint", 1, BaseTypeUInt32, 1},
	GLSLUVec2:       {"uvec2", 2, BaseTypeUInt32, 1},
	GLSLUVec3:       {"uvec3", 3, BaseTypeUInt32, 1},
	GLSLUVec4:       {"uvec4", 4, BaseTypeUInt32, 1},
	GLSLDouble:      {"double", 1, BaseTypeFloat64, 1},
	GLSLDVec2:       {"dvec2", 2, BaseTypeFloat64, 1},
	GLSLDVec3:       {"dvec3", 3, BaseTypeFloat64, 1},
	GLSLDVec4:       {"dvec4", 4, BaseTypeFloat64, 1},
	GLSLDMat2:       {"dmat2", 4, BaseTypeFloat64, 2},
	GLSLDMat3:       {"dmat3", 9, BaseTypeFloat64, 3},
	GLSLDMat4:       {"dmat4", 16, BaseTypeFloat64, 4},
	GLSLDMat2x3:     {"dmat2x3", 6, BaseTypeFloat64, 2},
	GLSLDMat2x4:     {"dmat2x4", 8, BaseTypeFloat64, 2},
	GLSLDMat3x2:     {"dmat3x2", 6, BaseTypeFloat64, 3},
	GLSLDMat3x4:     {"dmat3x4", 12, BaseTypeFloat64, 3},
	GLSLDMat4x2:     {"dmat4x2", 8, BaseTypeFloat64, 4},
	GLSLDMat4x3:     {"dmat4x3", 12, BaseTypeFloat64, 4},
	GLSLSampler1D:   {"sampler1D", 1, BaseTypeInt32, 1},
	GLSLSampler2D:   {"sampler2D", 1, BaseTypeInt32, 1},
	GLSLSampler3D:   {"sampler3D", 1, BaseTypeInt32, 1},
	GLSLSamplerCube: {"samplerCube", 1, BaseTypeInt32, 1},
}

// Units returns how many scalars one value of t holds, e.g. 3 for vec3.
func (t GLSLType) Units() (uint32, bool) {
	info, ok := glslTypes[t]
	return info.units, ok
}

// BaseType returns the scalar type of t, e.g. Float32 for vec3.
func (t GLSLType) BaseType() (BaseType, bool) {
	info, ok := glslTypes[t]
	return info.base, ok
}

// Columns returns the number of consecutive locations one value of t occupies.
func (t GLSLType) Columns() uint32 {
	if info, ok := glslTypes[t]; ok {
		return info.columns
	}
	return 1
}

func (t GLSLType) IsSampler() bool {
	switch t {
	case GLSLSampler1D, GLSLSampler2D, GLSLSampler3D, GLSLSamplerCube:
		return true
	}
	return false
}

func (t GLSLType) String() string {
	if info, ok := glslTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("GLSLType(0x%X)", uint32(t))
}

/**
 * @brief Describes one active vertex attribute of a linked program.
 *
 * Only the declared type, array size and location are stored; element count,
 * base type and byte size are always derived from them.
 */
type AttributeDescriptor struct {
	/** @brief The attribute Name, unique within a program. */
	Name string
	/** @brief The declared type. */
	Type GLSLType
	/** @brief The declared array size, 1 for non-arrays. */
	Count uint32
	/** @brief The bind location assigned by the driver. */
	Location int32

	units uint32
	base  BaseType
}

// NewAttributeDescriptor validates a reported attribute. Built-ins carry no location and may pass -1.
func NewAttributeDescriptor(name string, t GLSLType, count uint32, location int32) (AttributeDescriptor, error) {
	units, ok := t.Units()
	if !ok {
		return AttributeDescriptor{}, fmt.Errorf("attribute `%s` has unsupported type %s", name, t)
	}
	if location < 0 && !strings.HasPrefix(name, BuiltinPrefix) {
		return AttributeDescriptor{}, fmt.Errorf("attribute `%s` has invalid location %d", name, location)
	}
	if count == 0 {
		count = 1
	}
	base, _ := t.BaseType()
	return AttributeDescriptor{
		Name:     name,
		Type:     t,
		Count:    count,
		Location: location,
		units:    units,
		base:     base,
	}, nil
}

/** @brief Scalars per vertex, e.g. 3 for a vec3. */
func (a AttributeDescriptor) ElementCount() uint32 {
	return a.Count * a.units
}

/**
 * @brief Returns how many consecutive locations the attribute spans and how
 * many scalars each of them holds. A mat3 spans 3 locations of 3 scalars.
 */
func (a AttributeDescriptor) Slots() (count uint32, size uint32) {
	columns := a.Type.Columns()
	return a.Count * columns, a.units / columns
}

func (a AttributeDescriptor) BaseType() BaseType {
	return a.base
}

func (a AttributeDescriptor) ByteSize() uint32 {
	return a.ElementCount() * a.base.Size()
}

func (a AttributeDescriptor) IsBuiltIn() bool {
	return strings.HasPrefix(a.Name, BuiltinPrefix)
}

/**
 * @brief Represents a single active uniform of a linked program.
 */
type UniformDescriptor struct {
	Name     string
	Type     GLSLType
	Count    uint32
	Location int32
}

func (u UniformDescriptor) IsBuiltIn() bool {
	return strings.HasPrefix(u.Name, BuiltinPrefix)
}

/**
 * @brief Configuration for a shader, normally read from the application config.
 */
type ShaderConfig struct {
	/** @brief The name of the shader to be created. */
	Name string `toml:"name"`
	/** @brief Path of the vertex stage source, relative to the assets dir. */
	Vertex string `toml:"vertex"`
	/** @brief Path of the fragment stage source, relative to the assets dir. */
	Fragment string `toml:"fragment"`
}

/**
 * @brief Represents a linked shader program on the frontend.
 */
type Shader struct {
	/** @brief The shader identifier */
	ID   uint32
	Name string
	/** @brief The backend program handle. */
	Program uint32

	VertexPath   string
	FragmentPath string

	/** @brief The internal State of the shader. */
	State ShaderState
	/** @brief Incremented every time the program is relinked. */
	Generation uint32

	// Attributes in driver enumeration order.
	attributes      []AttributeDescriptor
	attributeLookup map[string]int

	uniforms      []UniformDescriptor
	uniformLookup map[string]int
}

// SetAttributes replaces the attribute list, keeping the given order.
func (s *Shader) SetAttributes(attributes []AttributeDescriptor) {
	s.attributes = append([]AttributeDescriptor(nil), attributes...)
	s.attributeLookup = make(map[string]int, len(attributes))
	for i, a := range s.attributes {
		s.attributeLookup[a.Name] = i
	}
}

func (s *Shader) SetUniforms(uniforms []UniformDescriptor) {
	s.uniforms = append([]UniformDescriptor(nil), uniforms...)
	s.uniformLookup = make(map[string]int, len(uniforms))
	for i, u := range s.uniforms {
		s.uniformLookup[u.Name] = i
	}
}

// Attributes returns every active attribute, built-ins included.
func (s *Shader) Attributes() []AttributeDescriptor {
	return append([]AttributeDescriptor(nil), s.attributes...)
}

func (s *Shader) Uniforms() []UniformDescriptor {
	return append([]UniformDescriptor(nil), s.uniforms...)
}

func (s *Shader) AttributeByName(name string) (AttributeDescriptor, bool) {
	i, ok := s.attributeLookup[name]
	if !ok {
		return AttributeDescriptor{}, false
	}
	return s.attributes[i], true
}

// AttributeLocation returns -1 when the program has no active attribute called name.
func (s *Shader) AttributeLocation(name string) int32 {
	if a, ok := s.AttributeByName(name); ok {
		return a.Location
	}
	return -1
}

// UniformLocation returns -1 when the program has no active uniform called name.
func (s *Shader) UniformLocation(name string) int32 {
	i, ok := s.uniformLookup[name]
	if !ok {
		return -1
	}
	return s.uniforms[i].Location
}

func (s *Shader) BuiltinAttributes() []AttributeDescriptor {
	return s.filter(func(a AttributeDescriptor) bool { return a.IsBuiltIn() })
}

func (s *Shader) UserAttributes() []AttributeDescriptor {
	return s.filter(func(a AttributeDescriptor) bool { return !a.IsBuiltIn() })
}

/**
 * @brief Returns the user-defined attributes whose base type falls in group,
 * in enumeration order. UInt32 attributes belong to the Int32 group.
 */
func (s *Shader) UserAttributesOf(group BaseType) []AttributeDescriptor {
	group = group.Group()
	return s.filter(func(a AttributeDescriptor) bool {
		return !a.IsBuiltIn() && a.BaseType().Group() == group
	})
}

func (s *Shader) filter(keep func(AttributeDescriptor) bool) []AttributeDescriptor {
	var out []AttributeDescriptor
	for _, a := range s.attributes {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
