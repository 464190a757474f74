package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// DefinitionType is the category of an entity definition.
type DefinitionType int

const (
	// PointEntity is an entity placed at an origin, optionally displayed as a model.
	PointEntity DefinitionType = iota

	// BrushEntity is an entity made of brushes.
	BrushEntity

	// Worldspawn is the world entity definition.
	Worldspawn
)

// String returns the name used in definition files.
func (t DefinitionType) String() string {
	switch t {
	case PointEntity:
		return "point"
	case BrushEntity:
		return "brush"
	case Worldspawn:
		return "worldspawn"
	}
	return fmt.Sprintf("DefinitionType(%d)", int(t))
}

// UnmarshalYAML decodes a definition type from its name.
func (t *DefinitionType) UnmarshalYAML(n *yaml.Node) error {
	switch strings.ToLower(n.Value) {
	case "point", "":
		*t = PointEntity
	case "brush":
		*t = BrushEntity
	case "worldspawn":
		*t = Worldspawn
	default:
		return fmt.Errorf("unknown entity definition type %q at line %d", n.Value, n.Line)
	}
	return nil
}

// ModelDefinition names the model displayed for a point entity.
type ModelDefinition struct {
	Path  string `yaml:"path"`
	Skin  int    `yaml:"skin"`
	Frame int    `yaml:"frame"`
}

// EntityDefinition describes a class of entities.
type EntityDefinition struct {
	Name   string
	Type   DefinitionType
	Color  common.Color
	Bounds BBox
	Model  *ModelDefinition
}

// ErrDuplicateDefinition is returned when a definition file names the same class twice.
var ErrDuplicateDefinition = errors.New("duplicate entity definition")

type definitionFile struct {
	Definitions []definitionEntry `yaml:"definitions"`
}

type definitionEntry struct {
	Name   string           `yaml:"name"`
	Type   DefinitionType   `yaml:"type"`
	Color  []float32        `yaml:"color"`
	Bounds *boundsEntry     `yaml:"bounds"`
	Model  *ModelDefinition `yaml:"model"`
}

type boundsEntry struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// DefinitionSet maps classnames to definitions.
type DefinitionSet map[string]*EntityDefinition

// LoadDefinitions reads entity definitions from a YAML document of the form:
//
//	definitions:
//	  - name: light
//	    type: point
//	    color: [1, 1, 0, 1]
//	    bounds: {min: [-8, -8, -8], max: [8, 8, 8]}
//	    model: {path: models/light.glb, skin: 0, frame: 0}
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - DefinitionSet: the definitions keyed by name
//   - error: error if decoding fails or a name repeats
func LoadDefinitions(r io.Reader) (DefinitionSet, error) {
	var file definitionFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode entity definitions: %w", err)
	}

	set := make(DefinitionSet, len(file.Definitions))
	for _, entry := range file.Definitions {
		if entry.Name == "" {
			return nil, fmt.Errorf("entity definition without a name")
		}
		if _, ok := set[entry.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDefinition, entry.Name)
		}

		def := &EntityDefinition{
			Name:   entry.Name,
			Type:   entry.Type,
			Color:  common.Color{1, 1, 1, 1},
			Bounds: EmptyBBox(),
			Model:  entry.Model,
		}
		copy(def.Color[:], entry.Color)
		if entry.Bounds != nil {
			def.Bounds = BBox{Min: mgl32.Vec3(entry.Bounds.Min), Max: mgl32.Vec3(entry.Bounds.Max)}
		}
		set[entry.Name] = def
	}
	return set, nil
}

// Apply attaches the matching definition to every entity of m. Entities whose classname
// has no definition keep their current one.
func (s DefinitionSet) Apply(m *Map) {
	for _, e := range m.Entities() {
		if def, ok := s[e.Classname()]; ok {
			e.SetDefinition(def)
		}
	}
}
