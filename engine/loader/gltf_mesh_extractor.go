package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-map/engine/assets"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor turns glTF meshes into model frames. Every glTF mesh is one frame; its
// primitives are merged into one indexed triangle list.
type gltfMeshExtractor interface {
	// ExtractFrame extracts one mesh as a frame.
	//
	// Parameters:
	//   - meshIndex: the index of the glTF mesh
	//
	// Returns:
	//   - assets.Mesh: the merged triangle list in editor space
	//   - error: error if the mesh is missing, has no positions or is not made of triangles
	ExtractFrame(meshIndex int) (assets.Mesh, error)

	// ExtractAllFrames extracts every mesh in document order.
	ExtractAllFrames() ([]assets.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractFrame(meshIndex int) (assets.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return assets.Mesh{}, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return assets.Mesh{}, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	src := &doc.Meshes[meshIndex]
	frame := assets.Mesh{Name: src.Name}
	if frame.Name == "" {
		frame.Name = fmt.Sprintf("frame_%d", meshIndex)
	}
	for i := range src.Primitives {
		if err := e.appendPrimitive(&frame, &src.Primitives[i]); err != nil {
			return assets.Mesh{}, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, i, err)
		}
	}
	return frame, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllFrames() ([]assets.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	frames := make([]assets.Mesh, 0, len(doc.Meshes))
	for i := range doc.Meshes {
		frame, err := e.ExtractFrame(i)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// appendPrimitive adds a primitive's vertices and triangles to frame.
func (e *gltfMeshExtractorImpl) appendPrimitive(frame *assets.Mesh, prim *gltfPrimitive) error {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return fmt.Errorf("unsupported primitive mode %d, only triangles are supported", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return fmt.Errorf("failed to read positions: %w", err)
	}

	var texCoords [][2]float32
	if tcAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if texCoords, err = e.parser.ReadVec2Accessor(tcAccessor); err != nil {
			return fmt.Errorf("failed to read texcoords: %w", err)
		}
	}

	base := uint32(len(frame.Positions))
	for i, p := range positions {
		frame.Positions = append(frame.Positions, gltfToEditorSpace(p))
		var uv mgl32.Vec2
		if i < len(texCoords) {
			uv = texCoords[i]
		}
		frame.TexCoords = append(frame.TexCoords, uv)
	}

	if prim.Indices == nil {
		for i := range positions {
			frame.Indices = append(frame.Indices, base+uint32(i))
		}
		return nil
	}

	indices, err := e.parser.ReadIndicesAccessor(*prim.Indices)
	if err != nil {
		return fmt.Errorf("failed to read indices: %w", err)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
		frame.Indices = append(frame.Indices, base+idx)
	}
	return nil
}

// gltfToEditorSpace converts a Y-up glTF position into the Z-up editor world.
func gltfToEditorSpace(p [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{p[0], -p[2], p[1]}
}
