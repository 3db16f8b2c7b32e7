package asset

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/inamate/sceneview/internal/typeid"
)

// ErrNotFound is returned when an asset id has no stored image.
var ErrNotFound = errors.New("asset not found")

// Library stores uploaded images as PNG files and keeps decoded copies in
// memory. It also names decoded images for draw commands.
type Library struct {
	dir string

	mu    sync.RWMutex
	byID  map[string]image.Image
	names map[image.Image]string
}

// NewLibrary creates a library that stores files in dir.
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Library{
		dir:   dir,
		byID:  make(map[string]image.Image),
		names: make(map[image.Image]string),
	}, nil
}

// Dir is the directory assets are stored in.
func (l *Library) Dir() string { return l.dir }

// Filename is the stored file name for an asset id.
func Filename(id string) string { return id + ".png" }

// URL is the path the asset is served under.
func URL(id string) string { return "/assets/" + Filename(id) }

// Add writes img to disk as PNG under a new asset id and registers it.
func (l *Library) Add(img image.Image) (string, error) {
	id := typeid.NewAssetID()
	path := filepath.Join(l.dir, Filename(id))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("encode png: %w", err)
	}

	l.register(id, img)
	return id, nil
}

func (l *Library) register(id string, img image.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID[id] = img
	if isComparable(img) {
		l.names[img] = id
	}
}

// Get returns the decoded image for id, loading it from disk on first use.
func (l *Library) Get(id string) (image.Image, error) {
	if err := typeid.Validate(id, typeid.PrefixAsset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	l.mu.RLock()
	img, ok := l.byID[id]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	f, err := os.Open(filepath.Join(l.dir, Filename(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	img, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", id, err)
	}
	l.register(id, img)
	return img, nil
}

// Name returns the asset id of a registered image, or "". It has the shape
// of render.ImageResolver.
func (l *Library) Name(img image.Image) string {
	if img == nil || !isComparable(img) {
		return ""
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.names[img]
}

// Delete removes an asset from memory and disk.
func (l *Library) Delete(id string) error {
	if err := typeid.Validate(id, typeid.PrefixAsset); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	l.mu.Lock()
	if img, ok := l.byID[id]; ok {
		delete(l.byID, id)
		if isComparable(img) {
			delete(l.names, img)
		}
	}
	l.mu.Unlock()

	if err := os.Remove(filepath.Join(l.dir, Filename(id))); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

// isComparable reports whether img can key the names map. Pointer images
// compare by identity.
func isComparable(img image.Image) bool {
	return reflect.TypeOf(img).Kind() == reflect.Pointer
}
