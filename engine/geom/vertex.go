package geom

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief A single vertex: the built-in channels every vertex carries plus
 * the user-defined attributes of the shaders it is drawn with.
 */
type Vertex struct {
	position math.Vec3
	/** @brief Defaults to transparent black. */
	color math.Color

	normal    math.Vec3
	hasNormal bool

	// one or two sets of texture coordinates
	texCoords [4]float32
	texUnits  int

	tangent    math.Vec3
	hasTangent bool

	floats  attribList[float32]
	ints    attribList[int32]
	doubles attribList[float64]

	owner *Polygon
}

func NewVertex(x, y, z float32) *Vertex {
	return &Vertex{
		position: math.NewVec3(x, y, z),
		texUnits: 2,
	}
}

func NewVertexFromVec3(position math.Vec3) *Vertex {
	return NewVertex(position.X, position.Y, position.Z)
}

// touch tells the owning polygon its data changed.
func (v *Vertex) touch() {
	if v.owner != nil {
		v.owner.MarkDirty()
	}
}

func (v *Vertex) Position() math.Vec3 {
	return v.position
}

func (v *Vertex) SetPosition(x, y, z float32) {
	v.position = math.NewVec3(x, y, z)
	v.touch()
}

// Coords returns the homogeneous position, w is always 1.
func (v *Vertex) Coords() [4]float32 {
	return v.position.ToVec4(1).Array()
}

// Colour

func (v *Vertex) Color() [4]float32 {
	return v.color.Array()
}

func (v *Vertex) RGBA() math.Color {
	return v.color
}

// SetColor sets the colour from components in [0, 1].
func (v *Vertex) SetColor(r, g, b, a float32) {
	v.color = math.ColorRGBA(r, g, b, a)
	v.touch()
}

func (v *Vertex) SetColorRGB(r, g, b float32) {
	v.SetColor(r, g, b, 1)
}

/**
 * @brief Sets the colour from a packed hex value: alpha in bits 24-31, red in
 * 16-23, green in 8-15, blue in 0-7. Without alpha the colour is opaque.
 */
func (v *Vertex) SetColorHex(argb uint32, hasAlpha bool) {
	v.color = math.ColorFromARGB(argb, hasAlpha)
	v.touch()
}

// SetColorBytes sets the colour from components in [0, 255].
func (v *Vertex) SetColorBytes(r, g, b, a uint8) {
	v.color = math.ColorFromBytes(r, g, b, a)
	v.touch()
}

func (v *Vertex) IsOpaque() bool {
	return v.color.W == 1
}

// Texture coordinates

func (v *Vertex) SetTexCoords(s, t float32) {
	v.texCoords[0], v.texCoords[1] = s, t
	v.touch()
}

// SetTexCoords2 sets coordinates for double texturing.
func (v *Vertex) SetTexCoords2(s1, t1, s2, t2 float32) {
	v.texCoords = [4]float32{s1, t1, s2, t2}
	v.texUnits = 4
	v.touch()
}

// TexCoords returns the first set of texture coordinates, the one the float buffer carries.
func (v *Vertex) TexCoords() [2]float32 {
	return [2]float32{v.texCoords[0], v.texCoords[1]}
}

// TexCoords2 returns both sets, ok is false when only one was set.
func (v *Vertex) TexCoords2() ([4]float32, bool) {
	return v.texCoords, v.texUnits == 4
}

// Normal

// Normal returns the unit normal, (1, 0, 0) until one is set.
func (v *Vertex) Normal() [3]float32 {
	if !v.hasNormal {
		return math.NewVec3Right().Array()
	}
	return v.normal.Array()
}

func (v *Vertex) SetNormal(x, y, z float32) {
	v.normal = math.NewVec3(x, y, z).Normalized()
	v.hasNormal = true
	v.touch()
}

// Tangent

/**
 * @brief Computes the tangent from the triangle this vertex forms with v2 and
 * v3, oriented along increasing s. A triangle with degenerate texture
 * coordinates gives (1, 0, 0).
 */
func (v *Vertex) ComputeTangent(v2, v3 *Vertex) {
	edge1 := v2.position.Sub(v.position)
	edge2 := v3.position.Sub(v.position)

	s1 := v2.texCoords[0] - v.texCoords[0]
	s2 := v3.texCoords[0] - v.texCoords[0]
	t1 := v2.texCoords[1] - v.texCoords[1]
	t2 := v3.texCoords[1] - v.texCoords[1]

	det := s1*t2 - s2*t1
	if det == 0 {
		v.tangent = math.NewVec3Right()
	} else {
		v.tangent = edge1.MulScalar(t2).Sub(edge2.MulScalar(t1)).MulScalar(1 / det).Normalized()
	}
	v.hasTangent = true
	v.touch()
}

func (v *Vertex) SetTangent(x, y, z float32) {
	v.tangent = math.NewVec3(x, y, z)
	v.hasTangent = true
	v.touch()
}

// Tangent returns (1, 0, 0) until a tangent is computed or set.
func (v *Vertex) Tangent() [3]float32 {
	if !v.hasTangent {
		return math.NewVec3Right().Array()
	}
	return v.tangent.Array()
}

// User-defined attributes

func (v *Vertex) SetAttribf(location int32, value float32) {
	v.SetAttribfv(location, value)
}

func (v *Vertex) SetAttribfv(location int32, values ...float32) {
	v.floats.set(location, values)
	v.touch()
}

func (v *Vertex) SetAttribi(location int32, value int32) {
	v.SetAttribiv(location, value)
}

func (v *Vertex) SetAttribiv(location int32, values ...int32) {
	v.ints.set(location, values)
	v.touch()
}

// SetAttribuiv stores unsigned values; they share the integer buffer bit for bit.
func (v *Vertex) SetAttribuiv(location int32, values ...uint32) {
	ints := make([]int32, len(values))
	for i, u := range values {
		ints[i] = int32(u)
	}
	v.SetAttribiv(location, ints...)
}

func (v *Vertex) SetAttribd(location int32, value float64) {
	v.SetAttribdv(location, value)
}

func (v *Vertex) SetAttribdv(location int32, values ...float64) {
	v.doubles.set(location, values)
	v.touch()
}

// RemoveAttrib drops any value bound at location, whatever its type.
func (v *Vertex) RemoveAttrib(location int32) {
	f := v.floats.remove(location)
	i := v.ints.remove(location)
	d := v.doubles.remove(location)
	if f || i || d {
		v.touch()
	}
}

func (v *Vertex) Attribf(location int32) ([]float32, error) {
	values, ok := v.floats.get(location)
	if !ok {
		return nil, v.missing(location, metadata.BaseTypeFloat32)
	}
	return values, nil
}

func (v *Vertex) Attribi(location int32) ([]int32, error) {
	values, ok := v.ints.get(location)
	if !ok {
		return nil, v.missing(location, metadata.BaseTypeInt32)
	}
	return values, nil
}

func (v *Vertex) Attribd(location int32) ([]float64, error) {
	values, ok := v.doubles.get(location)
	if !ok {
		return nil, v.missing(location, metadata.BaseTypeFloat64)
	}
	return values, nil
}

func (v *Vertex) missing(location int32, base metadata.BaseType) error {
	index := -1
	if v.owner != nil {
		index = v.owner.indexOf(v)
	}
	return &core.MissingAttributeError{VertexIndex: index, Location: location, BaseType: base.String()}
}

/**
 * @brief Sets a user attribute by name, resolving the location and type
 * through shader. The values are converted to the attribute's base type.
 */
func (v *Vertex) SetAttribByName(shader *metadata.Shader, name string, values ...float64) error {
	a, ok := shader.AttributeByName(name)
	if !ok || a.IsBuiltIn() {
		err := fmt.Errorf("shader `%s` has no user attribute `%s`: %w", shader.Name, name, core.ErrMissingAttribute)
		core.LogError(err.Error())
		return err
	}
	switch a.BaseType().Group() {
	case metadata.BaseTypeFloat32:
		out := make([]float32, len(values))
		for i, x := range values {
			out[i] = float32(x)
		}
		v.SetAttribfv(a.Location, out...)
	case metadata.BaseTypeInt32:
		out := make([]int32, len(values))
		for i, x := range values {
			if a.BaseType() == metadata.BaseTypeUInt32 {
				out[i] = int32(uint32(x))
			} else {
				out[i] = int32(x)
			}
		}
		v.SetAttribiv(a.Location, out...)
	case metadata.BaseTypeFloat64:
		v.SetAttribdv(a.Location, values...)
	}
	return nil
}

// AttribLocations returns the locations with a value of the given base type, in the order they were first set.
func (v *Vertex) AttribLocations(base metadata.BaseType) []int32 {
	switch base.Group() {
	case metadata.BaseTypeInt32:
		return v.ints.locations()
	case metadata.BaseTypeFloat64:
		return v.doubles.locations()
	default:
		return v.floats.locations()
	}
}

func (v *Vertex) String() string {
	return fmt.Sprintf("Vertex{%v, %v, %v}", v.position.X, v.position.Y, v.position.Z)
}
