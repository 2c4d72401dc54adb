package assets

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	_ "image/png"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeTexture
	AssetTypeShader
)

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// AssetManager indexes the assets directory and watches it for changes so
// edited files are picked up on their next load.
type AssetManager struct {
	root   string
	assets map[string]AssetInfo

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	am.root = assetsDir

	go am.start()

	return am.watchRecursive(assetsDir)
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

// LoadTexture reads a PNG from assets/textures and returns the texture
// record plus its RGBA pixels, ready for upload.
func (am *AssetManager) LoadTexture(name string) (*metadata.Texture, []uint8, error) {
	path := filepath.Join(am.root, "textures", name+".png")

	f, err := os.Open(path)
	if err != nil {
		err := fmt.Errorf("unable to open texture '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		err := fmt.Errorf("unable to decode texture '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, nil, err
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)

	am.markLoaded(path, AssetTypeTexture)

	texture := &metadata.Texture{
		ID:           uuid.New(),
		Name:         name,
		Width:        uint32(bounds.Dx()),
		Height:       uint32(bounds.Dy()),
		ChannelCount: 4,
	}
	return texture, rgba.Pix, nil
}

// GenerateDefaultTexture builds the blue/white checker fallback used when a
// texture file is missing on disk.
func GenerateDefaultTexture(name string) (*metadata.Texture, []uint8) {
	const dimension = 256
	const half = dimension / 2

	pixels := make([]uint8, dimension*dimension*4)
	for row := 0; row < dimension; row++ {
		for col := 0; col < dimension; col++ {
			i := (row*dimension + col) * 4
			pixels[i+0] = 255
			pixels[i+1] = 255
			pixels[i+2] = 255
			pixels[i+3] = 255
			if (row < half) != (col < half) {
				pixels[i+0] = 0
				pixels[i+1] = 0
			}
		}
	}

	return &metadata.Texture{
		ID:           uuid.New(),
		Name:         name,
		Width:        dimension,
		Height:       dimension,
		ChannelCount: 4,
	}, pixels
}

func (am *AssetManager) markLoaded(path string, assetType AssetType) {
	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
}

func (am *AssetManager) start() {
	for {
		select {
		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name)
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files already present.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}

	am.mutex.Lock()
	_, known := am.assets[path]
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	if known {
		core.LogDebug("asset changed on disk: %s", path)
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	delete(am.assets, path)
	am.mutex.Unlock()
}

func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".png":
		return AssetTypeTexture
	case ".spv", ".vert", ".frag":
		return AssetTypeShader
	}
	return AssetTypeNone
}
