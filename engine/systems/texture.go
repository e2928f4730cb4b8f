package systems

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type textureReference struct {
	texture        *metadata.Texture
	referenceCount uint64
	autoRelease    bool
}

/**
 * @brief Loads images through the asset manager and keeps one backend
 * texture per image, reference counted.
 */
type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *metadata.Texture
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*textureReference
	// sub systems
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
}

func NewTextureSystem(config *TextureSystemConfig, am *assets.AssetManager, r *renderer.Renderer) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[string]*textureReference),
		assetManager:           am,
		renderer:               r,
	}, nil
}

// Initialize uploads the default texture. It needs a live backend.
func (ts *TextureSystem) Initialize() error {
	dim := metadata.DEFAULT_TEXTURE_DIMENSION
	handle, err := ts.renderer.Backend().TextureCreate(dim, dim, metadata.DefaultTexturePixels())
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	ts.DefaultTexture = &metadata.Texture{
		Name:       metadata.DEFAULT_TEXTURE_NAME,
		Width:      dim,
		Height:     dim,
		Handle:     handle,
		Generation: 1,
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for name, ref := range ts.RegisteredTextureTable {
		ts.renderer.Backend().TextureDestroy(ref.texture.Handle)
		delete(ts.RegisteredTextureTable, name)
	}
	if ts.DefaultTexture != nil {
		ts.renderer.Backend().TextureDestroy(ts.DefaultTexture.Handle)
		ts.DefaultTexture = nil
	}
	return nil
}

/**
 * @brief Returns the texture for the image at name, loading and uploading it
 * on first use. Each call increments the reference count.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("func texture system Acquire called for default texture. Use DefaultTexture instead")
		return ts.DefaultTexture, nil
	}
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		ref.referenceCount++
		return ref.texture, nil
	}
	if uint32(len(ts.RegisteredTextureTable)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("texture system is full (%d textures), cannot load `%s`", ts.Config.MaxTextureCount, name)
		core.LogError(err.Error())
		return nil, err
	}

	texture, err := ts.load(name)
	if err != nil {
		return nil, err
	}
	ts.RegisteredTextureTable[name] = &textureReference{
		texture:        texture,
		referenceCount: 1,
		autoRelease:    autoRelease,
	}
	return texture, nil
}

func (ts *TextureSystem) load(name string) (*metadata.Texture, error) {
	res, err := ts.assetManager.LoadAsset(name, &loaders.ImageResourceParams{FlipY: true})
	if err != nil {
		return nil, err
	}
	defer ts.assetManager.UnloadAsset(res)

	data, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		err := fmt.Errorf("asset `%s` is not an image", name)
		core.LogError(err.Error())
		return nil, err
	}
	handle, err := ts.renderer.Backend().TextureCreate(data.Width, data.Height, data.Pixels)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &metadata.Texture{
		Name:       name,
		Width:      data.Width,
		Height:     data.Height,
		Handle:     handle,
		Generation: 1,
	}, nil
}

/**
 * @brief Drops one reference. Auto-release textures are destroyed when the
 * count reaches zero.
 */
func (ts *TextureSystem) Release(name string) {
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogWarn("func texture system Release called for unknown texture `%s`", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		ts.renderer.Backend().TextureDestroy(ref.texture.Handle)
		delete(ts.RegisteredTextureTable, name)
	}
}

// ReferenceCount returns 0 for textures that are not loaded.
func (ts *TextureSystem) ReferenceCount(name string) uint64 {
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		return ref.referenceCount
	}
	return 0
}
