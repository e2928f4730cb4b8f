package renderer_test

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tangent = renderer.ActiveVariable{Name: "aTangent", Type: metadata.GLSLVec3, Size: 1, Location: 3}

func TestTangentQuad(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b, tangent)
	vs, vertices, faces := quad()
	for i, v := range vs {
		v.floats[3] = []float32{float32(i), 0, 1}
	}

	p := renderer.NewAttributePipeline(b)
	host, err := p.FillBuffers(vertices, faces, shader)
	require.NoError(t, err)

	assert.Equal(t, uint32(64), p.Stride(metadata.BaseTypeFloat32))
	assert.Len(t, host.Floats, 4*16)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, host.Indices)
	assert.Empty(t, host.Ints)
	assert.Empty(t, host.Doubles)
	// the tangent follows the 13 built-in floats of each vertex
	assert.Equal(t, []float32{2, 0, 1}, host.Floats[2*16+13:2*16+16])

	offset, ok := p.Layout().Offset(3)
	require.True(t, ok)
	assert.Equal(t, uint32(52), offset)

	require.NoError(t, p.Upload())
	require.NoError(t, p.BindForDraw())

	call, ok := b.PointerAt(3)
	require.True(t, ok)
	assert.Equal(t, "float", call.Path)
	assert.Equal(t, int32(3), call.Size)
	assert.Equal(t, uint32(64), call.Stride)
	assert.Equal(t, uint32(52), call.Offset)
	assert.Equal(t, p.Handle(metadata.BaseTypeFloat32, false), call.Buffer)

	require.Len(t, b.Builtins, 4)
	for i, want := range []uint32{0, 16, 32, 44} {
		assert.Equal(t, want, b.Builtins[i].Offset)
		assert.Equal(t, uint32(64), b.Builtins[i].Stride)
	}
}

func TestBuiltinsOnly(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b)
	_, vertices, faces := quad()

	p := renderer.NewAttributePipeline(b)
	require.NoError(t, p.Render(vertices, faces, shader, 1))

	assert.Equal(t, uint32(52), p.Stride(metadata.BaseTypeFloat32))
	assert.Equal(t, uint32(0), p.Stride(metadata.BaseTypeInt32))
	assert.Equal(t, uint32(0), p.Stride(metadata.BaseTypeFloat64))
	assert.Len(t, p.Buffers().Floats, int(4*metadata.NUM_BUILTIN_ATTRIBSF))
	// float and index buffers only
	assert.Equal(t, 2, b.LiveBuffers())
	assert.Zero(t, p.Handle(metadata.BaseTypeInt32, false))
	assert.Zero(t, p.Handle(metadata.BaseTypeFloat64, false))
	assert.Empty(t, b.Pointers)
}

func TestUploadRoundTrip(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b, tangent)
	vs, vertices, faces := quad()
	for i, v := range vs {
		v.color = [4]float32{0.25, 0.5, 0.75, 1}
		v.tex = [2]float32{float32(i) / 4, 1}
		v.floats[3] = []float32{1, 0, 0}
	}

	p := renderer.NewAttributePipeline(b)
	host, err := p.FillBuffers(vertices, faces, shader)
	require.NoError(t, err)
	require.NoError(t, p.Upload())

	assert.Equal(t, renderer.PipelineFilled, p.State())
	assert.Equal(t, host.Floats, b.Floats(p.Handle(metadata.BaseTypeFloat32, false)))
	assert.Equal(t, host.Indices, b.Shorts(p.Handle(0, true)))

	v1 := host.Floats[16 : 16+13]
	assert.Equal(t, []float32{1, -1, 0, 1}, v1[0:4])
	assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, v1[4:8])
	assert.Equal(t, []float32{0, 0, 1}, v1[8:11])
	assert.Equal(t, []float32{0.25, 1}, v1[11:13])
}

func TestIntAndDoubleBuffers(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b,
		renderer.ActiveVariable{Name: "aBone", Type: metadata.GLSLIVec2, Size: 1, Location: 4},
		renderer.ActiveVariable{Name: "aFlags", Type: metadata.GLSLUint, Size: 1, Location: 5},
		renderer.ActiveVariable{Name: "aPrecise", Type: metadata.GLSLDVec2, Size: 1, Location: 6},
	)
	vs, vertices, faces := quad()
	for i, v := range vs {
		v.ints[4] = []int32{int32(i), -1}
		v.ints[5] = []int32{7}
		v.doubles[6] = []float64{float64(i), 0.5}
	}

	p := renderer.NewAttributePipeline(b)
	require.NoError(t, p.Render(vertices, faces, shader, 1))

	assert.Equal(t, uint32(52), p.Stride(metadata.BaseTypeFloat32))
	assert.Equal(t, uint32(12), p.Stride(metadata.BaseTypeInt32))
	assert.Equal(t, uint32(12), p.Stride(metadata.BaseTypeUInt32))
	assert.Equal(t, uint32(16), p.Stride(metadata.BaseTypeFloat64))
	assert.Equal(t, 4, b.LiveBuffers())

	ints := b.Ints(p.Handle(metadata.BaseTypeInt32, false))
	assert.Equal(t, []int32{2, -1, 7}, ints[6:9])
	doubles := b.Doubles(p.Handle(metadata.BaseTypeFloat64, false))
	assert.Equal(t, []float64{3, 0.5}, doubles[6:8])

	bone, ok := b.PointerAt(4)
	require.True(t, ok)
	assert.Equal(t, "int", bone.Path)
	assert.Equal(t, uint32(0), bone.Offset)
	assert.Equal(t, uint32(12), bone.Stride)
	assert.Equal(t, p.Handle(metadata.BaseTypeInt32, false), bone.Buffer)

	flags, ok := b.PointerAt(5)
	require.True(t, ok)
	assert.Equal(t, uint32(8), flags.Offset)
	assert.Equal(t, metadata.BaseTypeUInt32, flags.Base)

	precise, ok := b.PointerAt(6)
	require.True(t, ok)
	assert.Equal(t, "double", precise.Path)
	assert.Equal(t, uint32(16), precise.Stride)
	assert.Equal(t, p.Handle(metadata.BaseTypeFloat64, false), precise.Buffer)
}

func TestMatrixAttributeSpansColumns(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b, renderer.ActiveVariable{Name: "aBasis", Type: metadata.GLSLMat3, Size: 1, Location: 2})
	vs, vertices, faces := quad()
	for _, v := range vs {
		v.floats[2] = []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}

	p := renderer.NewAttributePipeline(b)
	require.NoError(t, p.Render(vertices, faces, shader, 1))
	assert.Equal(t, uint32(52+36), p.Stride(metadata.BaseTypeFloat32))

	for i, want := range []uint32{52, 64, 76} {
		call, ok := b.PointerAt(uint32(2 + i))
		require.True(t, ok)
		assert.Equal(t, int32(3), call.Size)
		assert.Equal(t, want, call.Offset)
	}
}

func TestAlignmentError(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b, tangent)
	vs, vertices, faces := quad()
	for _, v := range vs {
		v.floats[3] = []float32{1, 0, 0}
	}
	vs[2].floats[3] = []float32{1, 0}

	p := renderer.NewAttributePipeline(b)
	err := p.Render(vertices, faces, shader, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPipelineAlignment))

	var alignment *core.PipelineAlignmentError
	require.True(t, errors.As(err, &alignment))
	assert.Equal(t, 2, alignment.VertexIndex)
	assert.Equal(t, "aTangent", alignment.Attribute)
	assert.Equal(t, 3, alignment.Expected)
	assert.Equal(t, 2, alignment.Actual)

	assert.Equal(t, renderer.PipelineEmpty, p.State())
	assert.Zero(t, b.LiveBuffers())
	assert.Empty(t, b.Draws)
}

func TestMissingAttributeError(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b, tangent)
	vs, vertices, faces := quad()
	vs[0].floats[3] = []float32{1, 0, 0}

	p := renderer.NewAttributePipeline(b)
	_, err := p.FillBuffers(vertices, faces, shader)

	var missing *core.MissingAttributeError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 1, missing.VertexIndex)
	assert.Equal(t, "aTangent", missing.Name)
	assert.Equal(t, int32(3), missing.Location)
	assert.Equal(t, "float32", missing.BaseType)
	assert.True(t, errors.Is(err, core.ErrMissingAttribute))
}

func TestFaceIndexOutOfRange(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b)
	_, vertices, _ := quad()

	p := renderer.NewAttributePipeline(b)
	_, err := p.FillBuffers(vertices, []renderer.FaceSource{testFace{0, 1, 4}}, shader)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
}

func TestUnusableShader(t *testing.T) {
	b := rendertest.NewBackend()
	_, vertices, faces := quad()
	p := renderer.NewAttributePipeline(b)

	_, err := p.FillBuffers(vertices, faces, nil)
	assert.ErrorIs(t, err, core.ErrNoShaderBound)

	var link *core.ShaderLinkError
	err = p.Render(vertices, faces, &metadata.Shader{Name: "unlinked"}, 1)
	require.True(t, errors.As(err, &link))
	assert.Zero(t, link.Program)
	assert.Zero(t, b.LiveBuffers())
}

func TestCleanIsIdempotent(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b)
	_, vertices, faces := quad()

	p := renderer.NewAttributePipeline(b)
	p.Clean()
	assert.Empty(t, b.Deleted)

	require.NoError(t, p.Render(vertices, faces, shader, 1))
	p.Clean()
	assert.Len(t, b.Deleted, 2)
	assert.Zero(t, b.LiveBuffers())
	assert.Equal(t, renderer.PipelineEmpty, p.State())
	assert.Nil(t, p.Layout())
	assert.Zero(t, p.IndexCount())

	p.Clean()
	assert.Len(t, b.Deleted, 2)
}

func TestRegeneratesOnlyWhenStale(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b)
	_, vertices, faces := quad()

	p := renderer.NewAttributePipeline(b)
	require.NoError(t, p.Render(vertices, faces, shader, 1))
	first := p.Handle(metadata.BaseTypeFloat32, false)

	require.NoError(t, p.Render(vertices, faces, shader, 1))
	assert.Equal(t, first, p.Handle(metadata.BaseTypeFloat32, false))
	assert.Empty(t, b.Deleted)
	assert.Len(t, b.Draws, 2)

	require.NoError(t, p.Render(vertices, faces, shader, 2))
	assert.NotEqual(t, first, p.Handle(metadata.BaseTypeFloat32, false))
	assert.Contains(t, b.Deleted, first)
	assert.Equal(t, 2, b.LiveBuffers())

	// a relinked program invalidates the layout as well
	second := p.Handle(metadata.BaseTypeFloat32, false)
	shader.Generation++
	assert.True(t, p.Stale(shader, 2))
	require.NoError(t, p.Render(vertices, faces, shader, 2))
	assert.Contains(t, b.Deleted, second)
	assert.True(t, p.Layout().Matches(shader))
}

func TestDrawUnbindsEverything(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b, tangent)
	vs, vertices, faces := quad()
	for _, v := range vs {
		v.floats[3] = []float32{1, 0, 0}
	}
	b.ShaderUse(shader.Program)

	p := renderer.NewAttributePipeline(b)
	require.NoError(t, p.Render(vertices, faces, shader, 1))

	require.Len(t, b.Draws, 1)
	assert.Equal(t, int32(6), b.Draws[0].IndexCount)
	assert.Equal(t, p.Handle(0, true), b.Draws[0].ElementArray)
	assert.Equal(t, shader.Program, b.Draws[0].Program)

	assert.Zero(t, b.Bound[renderer.ArrayBuffer])
	assert.Zero(t, b.Bound[renderer.ElementArrayBuffer])
	assert.False(t, b.BuiltinsActive)
	assert.Empty(t, b.Enabled)
}

func TestAllocationFailure(t *testing.T) {
	b := rendertest.NewBackend()
	b.AllocationLimit = 1
	shader := newShader(t, b)
	_, vertices, faces := quad()

	p := renderer.NewAttributePipeline(b)
	err := p.Render(vertices, faces, shader, 1)
	assert.ErrorIs(t, err, core.ErrBackendAllocation)
	assert.Equal(t, renderer.PipelineEmpty, p.State())
	assert.Zero(t, b.LiveBuffers())
	assert.Empty(t, b.Draws)
}

func TestBindBeforeUpload(t *testing.T) {
	p := renderer.NewAttributePipeline(rendertest.NewBackend())
	assert.Error(t, p.BindForDraw())
}
