package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestTextureSystemDefaultTexture(t *testing.T) {
	f := newFixture(t)
	ts := f.sm.TextureSystem()
	require.NoError(t, ts.Initialize())

	require.NotNil(t, ts.DefaultTexture)
	uploaded, ok := f.backend.Textures[ts.DefaultTexture.Handle]
	require.True(t, ok)
	assert.Equal(t, metadata.DEFAULT_TEXTURE_DIMENSION, uploaded.Width)

	tex, err := ts.Acquire(metadata.DEFAULT_TEXTURE_NAME, false)
	require.NoError(t, err)
	assert.Same(t, ts.DefaultTexture, tex)
}

func TestTextureSystemReferenceCounting(t *testing.T) {
	f := newFixture(t)
	ts := f.sm.TextureSystem()

	first, err := ts.Acquire("textures/checker.png", true)
	require.NoError(t, err)
	second, err := ts.Acquire("textures/checker.png", true)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(2), ts.ReferenceCount("textures/checker.png"))
	assert.Equal(t, uint32(4), first.Width)
	require.Contains(t, f.backend.Textures, first.Handle)
	assert.Len(t, f.backend.Textures[first.Handle].Pixels, 4*4*4)

	ts.Release("textures/checker.png")
	assert.Contains(t, f.backend.Textures, first.Handle)
	ts.Release("textures/checker.png")
	assert.NotContains(t, f.backend.Textures, first.Handle)
	assert.Zero(t, ts.ReferenceCount("textures/checker.png"))
}

func TestTextureSystemKeepsManualTextures(t *testing.T) {
	f := newFixture(t)
	ts := f.sm.TextureSystem()

	tex, err := ts.Acquire("textures/checker.png", false)
	require.NoError(t, err)
	ts.Release("textures/checker.png")
	assert.Contains(t, f.backend.Textures, tex.Handle)

	require.NoError(t, ts.Shutdown())
	assert.NotContains(t, f.backend.Textures, tex.Handle)
}

func TestTextureSystemErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.sm.TextureSystem().Acquire("textures/none.png", false)
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)

	_, err = f.sm.TextureSystem().Acquire("shaders/lit.vert", false)
	assert.ErrorContains(t, err, "not an image")

	_, err = NewTextureSystem(&TextureSystemConfig{}, f.am, f.r)
	assert.Error(t, err)
}
