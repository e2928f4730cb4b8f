package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rendertest"
	"github.com/stretchr/testify/require"
)

// what the driver reports for a compatibility program reading every built-in
var builtins = []renderer.ActiveVariable{
	{Name: "gl_Vertex", Type: metadata.GLSLVec4, Size: 1, Location: -1},
	{Name: "gl_Color", Type: metadata.GLSLVec4, Size: 1, Location: -1},
	{Name: "gl_Normal", Type: metadata.GLSLVec3, Size: 1, Location: -1},
	{Name: "gl_MultiTexCoord0", Type: metadata.GLSLVec4, Size: 1, Location: -1},
}

func newShader(t *testing.T, b *rendertest.Backend, user ...renderer.ActiveVariable) *metadata.Shader {
	t.Helper()
	b.NextAttributes = append(append([]renderer.ActiveVariable(nil), builtins...), user...)
	program, err := b.ShaderCreate("vertex", "fragment")
	require.NoError(t, err)
	shader := &metadata.Shader{Name: "test", Program: program, Generation: 1}
	require.NoError(t, renderer.IntrospectShader(b, shader))
	return shader
}

type testVertex struct {
	coords  [4]float32
	color   [4]float32
	normal  [3]float32
	tex     [2]float32
	floats  map[int32][]float32
	ints    map[int32][]int32
	doubles map[int32][]float64
}

func newTestVertex(x, y, z float32) *testVertex {
	return &testVertex{
		coords:  [4]float32{x, y, z, 1},
		color:   [4]float32{1, 1, 1, 1},
		normal:  [3]float32{0, 0, 1},
		floats:  map[int32][]float32{},
		ints:    map[int32][]int32{},
		doubles: map[int32][]float64{},
	}
}

func (v *testVertex) Coords() [4]float32    { return v.coords }
func (v *testVertex) Color() [4]float32     { return v.color }
func (v *testVertex) Normal() [3]float32    { return v.normal }
func (v *testVertex) TexCoords() [2]float32 { return v.tex }

func (v *testVertex) Attribf(location int32) ([]float32, error) {
	if values, ok := v.floats[location]; ok {
		return values, nil
	}
	return nil, &core.MissingAttributeError{VertexIndex: -1, Location: location}
}

func (v *testVertex) Attribi(location int32) ([]int32, error) {
	if values, ok := v.ints[location]; ok {
		return values, nil
	}
	return nil, &core.MissingAttributeError{VertexIndex: -1, Location: location}
}

func (v *testVertex) Attribd(location int32) ([]float64, error) {
	if values, ok := v.doubles[location]; ok {
		return values, nil
	}
	return nil, &core.MissingAttributeError{VertexIndex: -1, Location: location}
}

type testFace [3]uint16

func (f testFace) Indices() [3]uint16 { return f }

// quad returns a unit quad split in two triangles.
func quad() ([]*testVertex, []renderer.VertexSource, []renderer.FaceSource) {
	vs := []*testVertex{
		newTestVertex(-1, -1, 0),
		newTestVertex(1, -1, 0),
		newTestVertex(1, 1, 0),
		newTestVertex(-1, 1, 0),
	}
	sources := make([]renderer.VertexSource, len(vs))
	for i, v := range vs {
		sources[i] = v
	}
	faces := []renderer.FaceSource{testFace{0, 1, 2}, testFace{0, 2, 3}}
	return vs, sources, faces
}
