package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeStripes writes a 2x2 png whose top row is red and bottom row is blue.
func writeStripes(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
		img.Set(x, 1, color.RGBA{B: 255, A: 255})
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newIndexedManager(t *testing.T, watch bool) (*AssetManager, *core.EventSystem, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "lit.vert"), "void main() {}\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeStripes(t, filepath.Join(dir, "textures", "stripes.png"))

	events := core.NewEventSystem(16)
	am := NewAssetManager(events)
	require.NoError(t, am.Initialize(dir, watch))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am, events, dir
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeShader, determineAssetType("shaders/a.frag"))
	assert.Equal(t, metadata.ResourceTypeShader, determineAssetType("a.glsl"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("t/a.webp"))
	assert.Equal(t, metadata.ResourceTypeCustom, determineAssetType("readme.md"))
}

func TestInitializeIndexesKnownTypes(t *testing.T) {
	am, _, dir := newIndexedManager(t, false)

	assert.Equal(t, 2, am.Count())
	assert.Equal(t, dir, am.Root())

	info, ok := am.Lookup("shaders/lit.vert")
	require.True(t, ok)
	assert.Equal(t, metadata.ResourceTypeShader, info.Type)

	_, ok = am.Lookup("notes.txt")
	assert.False(t, ok)
}

func TestLoadShaderSource(t *testing.T) {
	am, _, _ := newIndexedManager(t, false)

	res, err := am.LoadAsset("shaders/lit.vert", nil)
	require.NoError(t, err)
	assert.Equal(t, "shaders/lit.vert", res.Name)
	assert.Equal(t, "void main() {}\n", res.Data.(string))

	info, _ := am.Lookup("shaders/lit.vert")
	assert.False(t, info.LastLoaded.IsZero())

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
}

func TestLoadImageFlipsRows(t *testing.T) {
	am, _, _ := newIndexedManager(t, false)

	res, err := am.LoadAsset("textures/stripes.png", &loaders.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	data := res.Data.(*metadata.ImageResourceData)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	require.Len(t, data.Pixels, 16)
	// the blue row is now first
	assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[0:4])
	assert.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[8:12])

	res, err = am.LoadAsset("textures/stripes.png", nil)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 0, 255}, res.Data.(*metadata.ImageResourceData).Pixels[0:4])
}

func TestLoadMissingAsset(t *testing.T) {
	am, _, _ := newIndexedManager(t, false)
	_, err := am.LoadAsset("shaders/none.frag", nil)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestLoadEmptyShaderFails(t *testing.T) {
	am, _, dir := newIndexedManager(t, false)
	writeFile(t, filepath.Join(dir, "shaders", "empty.frag"), "")
	am.indexFile(filepath.Join(dir, "shaders", "empty.frag"))

	_, err := am.LoadAsset("shaders/empty.frag", nil)
	assert.ErrorContains(t, err, "empty")
}

func TestWatchPostsShaderChanges(t *testing.T) {
	am, events, dir := newIndexedManager(t, true)

	var changed []string
	events.Register(core.EVENT_CODE_SHADER_SOURCE_CHANGED, am, func(ctx core.EventContext, _ interface{}) bool {
		changed = append(changed, ctx.Data.(string))
		return true
	})

	writeFile(t, filepath.Join(dir, "shaders", "lit.frag"), "void main() {}\n")

	require.Eventually(t, func() bool {
		events.Drain()
		for _, c := range changed {
			if c == "shaders/lit.frag" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	_, ok := am.Lookup("shaders/lit.frag")
	assert.True(t, ok)
}

func TestShutdownIsIdempotent(t *testing.T) {
	am, _, _ := newIndexedManager(t, true)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
}

func TestInitializeReleasesWatcherOnError(t *testing.T) {
	events := core.NewEventSystem(16)
	defer events.Shutdown()
	am := NewAssetManager(events)

	err := am.Initialize(filepath.Join(t.TempDir(), "missing"), true)
	require.Error(t, err)
	assert.Nil(t, am.fsnotify)
	assert.NoError(t, am.Shutdown())
}
