package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-map/engine/assets"
)

// importedModel is the CPU side result of a model import.
type importedModel struct {
	Name   string
	Frames []assets.Mesh
	Skins  []assets.Skin
}

// loaderBackend imports one model file format.
type loaderBackend interface {
	// Load imports the model at path.
	Load(path string) (*importedModel, error)

	// LoadReader imports a model from a stream.
	//
	// Parameters:
	//   - name: the model name
	//   - r: the model data
	//   - binary: true for the binary variant of the format
	LoadReader(name string, r io.Reader, binary bool) (*importedModel, error)

	// Extensions returns the lower case file extensions the backend reads, with the dot.
	Extensions() []string
}
