package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
	name   string
}

// gltfMaterialExtractor turns glTF materials into model skins. A skin keeps the base color
// factor and the decoded base color texture; the PBR terms have no use in the editor.
type gltfMaterialExtractor interface {
	// ExtractSkin extracts one material as a skin.
	//
	// Parameters:
	//   - materialIndex: the index of the glTF material
	//
	// Returns:
	//   - assets.Skin: the skin
	//   - error: error if the material or its texture cannot be read
	ExtractSkin(materialIndex int) (assets.Skin, error)

	// ExtractAllSkins extracts every material in document order.
	ExtractAllSkins() ([]assets.Skin, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a material extractor. Texture names are prefixed with
// modelName so that skins of different models never share a GPU texture key.
func newGLTFMaterialExtractor(parser gltfParser, modelName string) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser, name: modelName}
}

func (e *gltfMaterialExtractorImpl) ExtractSkin(materialIndex int) (assets.Skin, error) {
	doc := e.parser.Document()
	if doc == nil {
		return assets.Skin{}, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return assets.Skin{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	skin := assets.Skin{
		Name:  mat.Name,
		Color: common.Color{1, 1, 1, 1},
	}
	if skin.Name == "" {
		skin.Name = fmt.Sprintf("skin_%d", materialIndex)
	}

	pbr := mat.PbrMetallicRoughness
	if pbr == nil {
		return skin, nil
	}
	if pbr.BaseColorFactor != nil {
		skin.Color = common.Color(*pbr.BaseColorFactor)
	}
	if pbr.BaseColorTexture != nil {
		imported, err := e.loadImage(pbr.BaseColorTexture.Index)
		if err != nil {
			return assets.Skin{}, fmt.Errorf("material %q: base color texture: %w", skin.Name, err)
		}
		if imported != nil {
			staging, err := imported.Decode()
			if err != nil {
				return assets.Skin{}, fmt.Errorf("material %q: %w", skin.Name, err)
			}
			skin.Texture = document.NewTexture(e.name+"#"+skin.Name, staging)
		}
	}
	return skin, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllSkins() ([]assets.Skin, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	skins := make([]assets.Skin, 0, len(doc.Materials))
	for i := range doc.Materials {
		skin, err := e.ExtractSkin(i)
		if err != nil {
			return nil, err
		}
		skins = append(skins, skin)
	}
	return skins, nil
}

// loadImage resolves a texture index to its image bytes. Images live in a buffer view (GLB),
// a data URI, or a file next to the document. A texture without a source yields nil.
func (e *gltfMaterialExtractorImpl) loadImage(textureIndex int) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *tex.Source)
	}

	img := &doc.Images[*tex.Source]
	result := &common.ImportedTexture{Name: img.Name, MimeType: img.MimeType}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
		if result.MimeType == "" {
			result.MimeType = mimeType
		}
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), filepath.FromSlash(img.URI))
		if _, err := os.Stat(result.Path); err != nil {
			return nil, fmt.Errorf("image %q: %w", img.URI, err)
		}
	default:
		return nil, nil
	}
	return result, nil
}
