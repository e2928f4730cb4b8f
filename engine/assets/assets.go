package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	// Path relative to the assets dir, with forward slashes.
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the files under the assets dir and optionally watches them.
 * Changes to shader sources are posted on the event system; they are only
 * acted upon when the engine drains events on the render thread.
 */
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	events   *core.EventSystem
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

func NewAssetManager(events *core.EventSystem) *AssetManager {
	am := &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		events:  events,
		done:    make(chan struct{}),
	}
	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	return am
}

/**
 * @brief Indexes assetsDir recursively. With watch set, files created or
 * written afterwards are indexed as well and shader changes are posted as
 * EVENT_CODE_SHADER_SOURCE_CHANGED.
 */
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.root = root

	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
	}
	if err := am.watchRecursive(root); err != nil {
		if am.fsnotify != nil {
			am.fsnotify.Close()
			am.fsnotify = nil
		}
		return err
	}
	if am.fsnotify != nil {
		am.wg.Add(1)
		go am.start()
	}
	core.LogInfo("indexed %d assets in %s (watch=%t)", am.Count(), root, watch)
	return nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Lookup returns the index entry of a path relative to the assets dir.
func (am *AssetManager) Lookup(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	asset, ok := am.assets[filepath.ToSlash(filepath.Clean(name))]
	return asset, ok
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Load an asset using the appropriate loader. name is relative to the assets dir.
func (am *AssetManager) LoadAsset(name string, params interface{}) (*metadata.Resource, error) {
	key := filepath.ToSlash(filepath.Clean(name))

	am.mutex.Lock()
	asset, exists := am.assets[key]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[key] = asset
	}
	am.mutex.Unlock()
	if !exists {
		err := fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		core.LogError(err.Error())
		return nil, err
	}

	loader, ok := am.loaders[asset.Type]
	if !ok {
		err := fmt.Errorf("no loader registered for asset type: %s", asset.Type)
		core.LogError(err.Error())
		return nil, err
	}
	res, err := loader.Load(filepath.Join(am.root, filepath.FromSlash(key)), params)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	res.Name = key
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil
	}
	return loader.Unload(asset)
}

// Shutdown stops the watcher, if any, and waits for it to exit.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	if am.fsnotify == nil {
		return nil
	}
	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch new directory %s: %s", e.Name, err)
			}
		}
		return
	}
	// Handle create or modify events
	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		rel, ok := am.indexFile(e.Name)
		if ok && determineAssetType(rel) == metadata.ResourceTypeShader && am.events != nil {
			_ = am.events.Post(core.EventContext{
				Type:   core.EVENT_CODE_SHADER_SOURCE_CHANGED,
				Sender: am,
				Data:   rel,
			})
		}
	}
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(e.Name)
	}
}

// watchRecursive indexes every file under path and, when watching, adds every directory.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.indexFile(walkPath)
		return nil
	})
}

// indexFile records the file at an absolute path and returns its relative key.
func (am *AssetManager) indexFile(path string) (string, bool) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	assetType := determineAssetType(rel)
	if assetType == metadata.ResourceTypeCustom {
		return rel, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[rel] = AssetInfo{
		Path: rel,
		Type: assetType,
	}
	return rel, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, filepath.ToSlash(rel))
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".vert", ".frag", ".glsl", ".vs", ".fs":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	default:
		return metadata.ResourceTypeCustom
	}
}
