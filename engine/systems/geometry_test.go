package systems

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/geom"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) *geom.Polygon {
	t.Helper()
	p, err := geom.NewPolygon(geom.NewVertex(0, 0, 0), geom.NewVertex(1, 0, 0), geom.NewVertex(0, 1, 0))
	require.NoError(t, err)
	require.True(t, p.AddTriangle(0, 1, 2))
	// the lit shader reads aTangent at location 3
	p.BindTangents(3)
	return p
}

func TestGeometryReferenceCounting(t *testing.T) {
	f := newFixture(t)
	withLitShader(t, f)
	gs := f.sm.GeometrySystem()

	kept := triangle(t)
	released := triangle(t)
	require.NoError(t, gs.Register(kept, false))
	require.NoError(t, gs.Register(released, true))
	assert.Error(t, gs.Register(kept, false))
	assert.Equal(t, 2, gs.Count())

	drawables := gs.Drawables()
	require.Len(t, drawables, 2)
	assert.Equal(t, renderer.Drawable(kept), drawables[0])

	// draw once so both own live buffers
	for _, d := range drawables {
		require.NoError(t, d.Render(f.r))
	}
	assert.Equal(t, 4, f.backend.LiveBuffers())

	p, err := gs.Acquire(released.ID())
	require.NoError(t, err)
	assert.Same(t, released, p)
	require.NoError(t, gs.Release(released.ID()))
	assert.Equal(t, 2, gs.Count())
	require.NoError(t, gs.Release(released.ID()))
	assert.Equal(t, 1, gs.Count())
	assert.Equal(t, 2, f.backend.LiveBuffers())

	require.NoError(t, gs.Release(kept.ID()))
	assert.Equal(t, 1, gs.Count())

	_, err = gs.Acquire(uuid.New())
	assert.Error(t, err)
	assert.Error(t, gs.Release(uuid.New()))

	var visited int
	require.NoError(t, gs.Each(func(*geom.Polygon) error { visited++; return nil }))
	assert.Equal(t, 1, visited)

	require.NoError(t, gs.Shutdown())
	assert.Zero(t, gs.Count())
	assert.Zero(t, f.backend.LiveBuffers())
}
