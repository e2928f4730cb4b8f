package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rendertest"
	"github.com/stretchr/testify/assert"
)

func TestComputeStride(t *testing.T) {
	tests := []struct {
		name    string
		user    []renderer.ActiveVariable
		float   uint32
		integer uint32
		double  uint32
	}{
		{"builtins only", nil, 52, 0, 0},
		{"tangent", []renderer.ActiveVariable{tangent}, 64, 0, 0},
		{"float array", []renderer.ActiveVariable{
			{Name: "aWeights", Type: metadata.GLSLFloat, Size: 4, Location: 1},
		}, 68, 0, 0},
		{"mixed", []renderer.ActiveVariable{
			{Name: "aBone", Type: metadata.GLSLIVec4, Size: 1, Location: 1},
			{Name: "aMask", Type: metadata.GLSLUVec2, Size: 1, Location: 2},
			{Name: "aPos64", Type: metadata.GLSLDVec3, Size: 1, Location: 3},
			{Name: "aUV2", Type: metadata.GLSLVec2, Size: 1, Location: 4},
		}, 60, 24, 24},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := rendertest.NewBackend()
			shader := newShader(t, b, test.user...)

			assert.Equal(t, test.float, renderer.ComputeStride(shader, metadata.BaseTypeFloat32))
			assert.Equal(t, test.integer, renderer.ComputeStride(shader, metadata.BaseTypeInt32))
			assert.Equal(t, test.integer, renderer.ComputeStride(shader, metadata.BaseTypeUInt32))
			assert.Equal(t, test.double, renderer.ComputeStride(shader, metadata.BaseTypeFloat64))

			layout := renderer.NewLayout(shader)
			assert.Equal(t, test.float, layout.Stride(metadata.BaseTypeFloat32))
			assert.Equal(t, test.integer, layout.Stride(metadata.BaseTypeInt32))
			assert.Equal(t, test.double, layout.Stride(metadata.BaseTypeFloat64))
			assert.Equal(t, int(test.float/4), layout.ScalarCount(metadata.BaseTypeFloat32))
		})
	}
}

func TestLayoutOffsetsFollowEnumerationOrder(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b,
		renderer.ActiveVariable{Name: "aB", Type: metadata.GLSLVec2, Size: 1, Location: 7},
		renderer.ActiveVariable{Name: "aId", Type: metadata.GLSLInt, Size: 1, Location: 2},
		renderer.ActiveVariable{Name: "aA", Type: metadata.GLSLVec4, Size: 1, Location: 1},
		renderer.ActiveVariable{Name: "aMask", Type: metadata.GLSLUint, Size: 1, Location: 5},
	)
	layout := renderer.NewLayout(shader)

	for location, want := range map[int32]uint32{7: 52, 1: 60, 2: 0, 5: 4} {
		offset, ok := layout.Offset(location)
		assert.True(t, ok, "location %d", location)
		assert.Equal(t, want, offset, "location %d", location)
	}
	_, ok := layout.Offset(9)
	assert.False(t, ok)

	names := []string{}
	for _, a := range layout.Attributes(metadata.BaseTypeInt32) {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"aId", "aMask"}, names)
}

func TestLayoutMatches(t *testing.T) {
	b := rendertest.NewBackend()
	shader := newShader(t, b)
	layout := renderer.NewLayout(shader)
	assert.True(t, layout.Matches(shader))

	shader.Generation++
	assert.False(t, layout.Matches(shader))

	var none *renderer.Layout
	assert.False(t, none.Matches(shader))
}

func TestComputeStrideWithoutShader(t *testing.T) {
	assert.Equal(t, metadata.BUILTIN_STRIDE_BYTES, renderer.ComputeStride(nil, metadata.BaseTypeFloat32))
	assert.Zero(t, renderer.ComputeStride(nil, metadata.BaseTypeInt32))
	assert.Zero(t, renderer.ComputeStride(nil, metadata.BaseTypeFloat64))
}
