package geom

import (
	"testing"

	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T) *Polygon {
	t.Helper()
	p, err := NewPolygon(
		NewVertex(-1, -1, 0),
		NewVertex(1, -1, 0),
		NewVertex(1, 1, 0),
		NewVertex(-1, 1, 0),
	)
	require.NoError(t, err)
	return p
}

func TestVertexBelongsToOnePolygon(t *testing.T) {
	v := NewVertex(0, 0, 0)
	_, err := NewPolygon(v)
	require.NoError(t, err)
	_, err = NewPolygon(v)
	assert.Error(t, err)
}

func TestFaceBindsOnce(t *testing.T) {
	a := square(t)
	b := square(t)
	face := NewFace(0, 1, 2)

	_, bound := face.Owner()
	assert.False(t, bound)

	assert.True(t, a.AddFace(face))
	assert.False(t, b.AddFace(face))
	assert.False(t, a.AddFace(face))

	owner, bound := face.Owner()
	assert.True(t, bound)
	assert.Equal(t, a.ID(), owner)
	assert.Equal(t, 1, a.FaceCount())
	assert.Zero(t, b.FaceCount())
}

func TestFaceOutOfRangeIsRejected(t *testing.T) {
	p := square(t)
	face := NewFace(0, 1, 4)
	assert.False(t, p.AddFace(face))
	_, bound := face.Owner()
	assert.False(t, bound)
	assert.Zero(t, p.FaceCount())
}

func TestQuadStripAndFan(t *testing.T) {
	p := square(t)
	require.True(t, p.AddQuad(0, 1, 2, 3))
	faces := p.Faces()
	require.Len(t, faces, 2)
	assert.Equal(t, [3]uint16{0, 1, 2}, faces[0].Indices())
	assert.Equal(t, [3]uint16{0, 2, 3}, faces[1].Indices())
	assert.Equal(t, 6, p.IndexCount())

	strip := square(t)
	require.True(t, strip.AddFaceStrip(0, 1, 3, 2))
	faces = strip.Faces()
	require.Len(t, faces, 2)
	assert.Equal(t, [3]uint16{0, 1, 3}, faces[0].Indices())
	assert.Equal(t, [3]uint16{1, 2, 3}, faces[1].Indices())

	fan := square(t)
	require.True(t, fan.AddFaceFan(0, 1, 2, 3))
	faces = fan.Faces()
	require.Len(t, faces, 2)
	assert.Equal(t, [3]uint16{0, 2, 3}, faces[1].Indices())

	assert.False(t, square(t).AddFaceStrip(0, 1))
}

func TestFaceNormalAndOpacity(t *testing.T) {
	p := square(t)
	require.True(t, p.AddTriangle(0, 1, 2))
	require.True(t, p.AddTriangle(0, 2, 3))

	n, ok := p.Faces()[0].Normal()
	require.True(t, ok)
	assert.Equal(t, float32(0), n.X)
	assert.Greater(t, n.Z, float32(0))

	p.SetColorRGB(1, 1, 1)
	p.Vertex(3).SetColor(1, 1, 1, 0.5)
	opaque, translucent := p.FaceLists()
	assert.Len(t, opaque, 1)
	assert.Len(t, translucent, 1)
}

func TestAddFaceComputesTangents(t *testing.T) {
	p := square(t)
	for i, st := range [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		p.Vertex(i).SetTexCoords(st[0], st[1])
	}
	require.True(t, p.AddQuad(0, 1, 2, 3))
	for _, v := range p.Vertices() {
		assert.Equal(t, [3]float32{1, 0, 0}, v.Tangent())
	}

	p.BindTangents(3)
	values, err := p.Vertex(2).Attribf(3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, values)
}

func TestMutationsBumpGeneration(t *testing.T) {
	p := square(t)
	g := p.Generation()

	p.Vertex(0).SetPosition(0, 0, 1)
	assert.Greater(t, p.Generation(), g)
	g = p.Generation()

	p.Vertex(1).SetAttribf(2, 1)
	assert.Greater(t, p.Generation(), g)
	g = p.Generation()

	require.True(t, p.AddTriangle(0, 1, 2))
	assert.Greater(t, p.Generation(), g)
}

func TestPolygonRender(t *testing.T) {
	b := rendertest.NewBackend()
	b.NextAttributes = []renderer.ActiveVariable{
		{Name: "gl_Vertex", Type: metadata.GLSLVec4, Size: 1, Location: -1},
		{Name: "aTangent", Type: metadata.GLSLVec3, Size: 1, Location: 3},
	}
	program, err := b.ShaderCreate("v", "f")
	require.NoError(t, err)
	shader := &metadata.Shader{Name: "lit", Program: program, Generation: 1}
	require.NoError(t, renderer.IntrospectShader(b, shader))

	r := renderer.New(b)
	require.NoError(t, r.UseShader(shader))

	p := square(t)
	for i, st := range [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		p.Vertex(i).SetTexCoords(st[0], st[1])
	}
	require.True(t, p.AddQuad(0, 1, 2, 3))
	p.BindTangents(shader.AttributeLocation("aTangent"))

	require.NoError(t, p.Render(r))
	pipeline := p.Pipeline()
	require.NotNil(t, pipeline)
	assert.Equal(t, uint32(64), pipeline.Stride(metadata.BaseTypeFloat32))
	assert.Len(t, pipeline.Buffers().Floats, 64)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, pipeline.Buffers().Indices)
	first := pipeline.Handle(metadata.BaseTypeFloat32, false)

	// an edited vertex is uploaded again on the next draw
	p.Vertex(0).SetColor(1, 0, 0, 1)
	require.NoError(t, p.Render(r))
	assert.Contains(t, b.Deleted, first)
	assert.Equal(t, float32(1), pipeline.Buffers().Floats[4])

	p.Clean()
	p.Clean()
	assert.Zero(t, b.LiveBuffers())
}
