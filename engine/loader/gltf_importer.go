package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter combines the parser and the extractors into a mesh-only model import.
type gltfImporter interface {
	// Import loads a .gltf or .glb file.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *importedModel: the frames and skins of the model
	//   - error: error if parsing or extraction fails
	Import(path string) (*importedModel, error)

	// ImportReader loads a document from a stream.
	//
	// Parameters:
	//   - name: the model name, used for naming skin textures
	//   - r: the document data
	//   - isGLB: true for GLB containers
	//
	// Returns:
	//   - *importedModel: the frames and skins of the model
	//   - error: error if parsing or extraction fails
	ImportReader(name string, r io.Reader, isGLB bool) (*importedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*importedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, gltfModelName(parser.Document(), path))
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (*importedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return imp.importFromParser(parser, name)
}

// importFromParser extracts frames and skins from a parsed document.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, name string) (*importedModel, error) {
	frames, err := newGLTFMeshExtractor(parser).ExtractAllFrames()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%s has no meshes", name)
	}

	skins, err := newGLTFMaterialExtractor(parser, name).ExtractAllSkins()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	return &importedModel{Name: name, Frames: frames, Skins: skins}, nil
}

// gltfModelName names a model after its default scene, or after its file when the scene is
// unnamed.
func gltfModelName(doc *gltfDocument, path string) string {
	if doc != nil && doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
