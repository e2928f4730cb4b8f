package systems

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rendertest"
	"github.com/stretchr/testify/require"
)

var litAttributes = []renderer.ActiveVariable{
	{Name: "gl_Vertex", Type: metadata.GLSLVec4, Size: 1, Location: -1},
	{Name: "gl_Normal", Type: metadata.GLSLVec3, Size: 1, Location: -1},
	{Name: "aTangent", Type: metadata.GLSLVec3, Size: 1, Location: 3},
}

var litUniforms = []renderer.ActiveVariable{
	{Name: "uMVP", Type: metadata.GLSLMat4, Size: 1, Location: 0},
	{Name: metadata.UniformMaterialDiffuse, Type: metadata.GLSLVec4, Size: 1, Location: 1},
	{Name: metadata.UniformMaterialTextured, Type: metadata.GLSLInt, Size: 1, Location: 2},
	{Name: metadata.UniformMaterialTexture, Type: metadata.GLSLSampler2D, Size: 1, Location: 3},
	{Name: "uLightCount", Type: metadata.GLSLInt, Size: 1, Location: 4},
	{Name: metadata.UniformFogEnabled, Type: metadata.GLSLInt, Size: 1, Location: 5},
	{Name: metadata.UniformFogDensity, Type: metadata.GLSLFloat, Size: 1, Location: 6},
}

type fixture struct {
	dir     string
	backend *rendertest.Backend
	r       *renderer.Renderer
	events  *core.EventSystem
	am      *assets.AssetManager
	sm      *SystemManager
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), 0, 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "lit.vert"), []byte("#version 120\nattribute vec3 aTangent;\n"))
	writeFile(t, filepath.Join(dir, "shaders", "lit.frag"), []byte("#version 120\n"))
	writePNG(t, filepath.Join(dir, "textures", "checker.png"), 4, 4)

	b := rendertest.NewBackend()
	b.NextAttributes = litAttributes
	b.NextUniforms = litUniforms
	r := renderer.New(b)
	require.NoError(t, r.Initialize("test", 320, 240))

	events := core.NewEventSystem(16)
	am := assets.NewAssetManager(events)
	require.NoError(t, am.Initialize(dir, false))

	sm, err := NewSystemManager(r, am, events)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sm.Shutdown()
		_ = am.Shutdown()
		events.Shutdown()
	})
	return &fixture{dir, b, r, events, am, sm}
}

func litConfig() metadata.ShaderConfig {
	return metadata.ShaderConfig{Name: "lit", Vertex: "shaders/lit.vert", Fragment: "shaders/lit.frag"}
}
