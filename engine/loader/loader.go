// Package loader reads entity models and face textures from disk for the editor. Models are
// imported as static meshes whose frames and skins are picked per entity.
package loader

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
)

// ErrUnsupportedFormat is returned for files no backend or image decoder reads.
var ErrUnsupportedFormat = errors.New("unsupported asset format")

// textureExtensions lists the image formats LoadTexture decodes.
var textureExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true}

// loader is the implementation of the Loader interface.
type loader struct {
	searchPath SearchPath
	backends   map[string]loaderBackend
}

// Loader reads models and textures through a search path. A Loader does not cache: the asset
// manager memoizes models, including failed loads.
type Loader interface {
	assets.ModelLoader

	// LoadModelReader imports a model from a stream. The backend is chosen by the extension
	// of name.
	//
	// Parameters:
	//   - name: the model name with its file extension
	//   - r: the model data
	//
	// Returns:
	//   - assets.Model: the model
	//   - error: error if the format is unsupported or the import fails
	LoadModelReader(name string, r io.Reader) (assets.Model, error)

	// LoadTexture decodes a PNG, JPEG or BMP image into a face texture. The texture is named
	// after the slash separated path without its extension.
	//
	// Parameters:
	//   - path: the image path, resolved through the search path
	//
	// Returns:
	//   - *document.Texture: the texture with its average color
	//   - error: error if the file is missing or cannot be decoded
	LoadTexture(path string) (*document.Texture, error)

	// SearchPath returns the search path of the loader.
	SearchPath() SearchPath
}

var _ Loader = &loader{}

// NewLoader creates a loader with the glTF backend registered.
//
// Parameters:
//   - options: functional options such as WithSearchPath
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		backends: make(map[string]loaderBackend),
	}
	l.register(newGLTFLoaderBackend())
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) register(b loaderBackend) {
	for _, ext := range b.Extensions() {
		l.backends[ext] = b
	}
}

func (l *loader) backendFor(name string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(name))
	backend, ok := l.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%w: model %s", ErrUnsupportedFormat, name)
	}
	return backend, nil
}

func (l *loader) LoadModel(path string) (assets.Model, error) {
	backend, err := l.backendFor(path)
	if err != nil {
		return nil, err
	}
	resolved, err := l.searchPath.Resolve(path)
	if err != nil {
		return nil, err
	}
	imported, err := backend.Load(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	common.Logger().Debug("model loaded", "path", path, "frames", len(imported.Frames), "skins", len(imported.Skins))
	return assets.NewMeshModel(imported.Frames, imported.Skins), nil
}

func (l *loader) LoadModelReader(name string, r io.Reader) (assets.Model, error) {
	backend, err := l.backendFor(name)
	if err != nil {
		return nil, err
	}
	binary := strings.EqualFold(filepath.Ext(name), ".glb")
	imported, err := backend.LoadReader(name, r, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return assets.NewMeshModel(imported.Frames, imported.Skins), nil
}

func (l *loader) LoadTexture(p string) (*document.Texture, error) {
	ext := strings.ToLower(filepath.Ext(p))
	if !textureExtensions[ext] {
		return nil, fmt.Errorf("%w: texture %s", ErrUnsupportedFormat, p)
	}
	resolved, err := l.searchPath.Resolve(p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.ToSlash(p), ext)
	staging, err := (&common.ImportedTexture{Name: name, Path: resolved}).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %s: %w", p, err)
	}
	return document.NewTexture(path.Clean(name), staging), nil
}

func (l *loader) SearchPath() SearchPath {
	return l.searchPath
}
