package assets

import (
	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer/vbo"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is one frame of a mesh model. When Indices is empty the positions are a triangle list.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Indices   []uint32
}

// Skin is one selectable surface appearance of a mesh model.
type Skin struct {
	Name    string
	Texture *document.Texture
	Color   common.Color
}

var _ Model = &MeshModel{}

// MeshModel is a model made of frames and skins. A renderer shows one frame with one skin.
type MeshModel struct {
	frames []Mesh
	skins  []Skin
}

// NewMeshModel creates a mesh model. A model without skins gets a single white skin.
//
// Parameters:
//   - frames: the meshes, one per frame
//   - skins: the skins
//
// Returns:
//   - *MeshModel: the model
func NewMeshModel(frames []Mesh, skins []Skin) *MeshModel {
	if len(skins) == 0 {
		skins = []Skin{{Name: "default", Color: common.Color{1, 1, 1, 1}}}
	}
	return &MeshModel{frames: frames, skins: skins}
}

// Frames returns the number of frames.
func (m *MeshModel) Frames() int { return len(m.frames) }

// Skins returns the number of skins.
func (m *MeshModel) Skins() int { return len(m.skins) }

func (m *MeshModel) BuildRenderer(skin, frame int) ModelRenderer {
	if skin < 0 || skin >= len(m.skins) || frame < 0 || frame >= len(m.frames) {
		return nil
	}
	vertices := expandMesh(m.frames[frame])
	if len(vertices) == 0 {
		return nil
	}

	bounds := document.EmptyBBox()
	for i := 0; i < len(vertices); i += 5 {
		bounds = bounds.MergePoint(mgl32.Vec3{vertices[i], vertices[i+1], vertices[i+2]})
	}
	return &meshRenderer{
		vertices: vertices,
		skin:     m.skins[skin],
		bounds:   bounds,
	}
}

// expandMesh resolves indices into an interleaved triangle list of position and texture coordinate.
func expandMesh(mesh Mesh) []float32 {
	indices := mesh.Indices
	if len(indices) == 0 {
		indices = make([]uint32, len(mesh.Positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)-len(indices)%3]

	out := make([]float32, 0, len(indices)*5)
	for _, idx := range indices {
		if int(idx) >= len(mesh.Positions) {
			return nil
		}
		p := mesh.Positions[idx]
		var uv mgl32.Vec2
		if int(idx) < len(mesh.TexCoords) {
			uv = mesh.TexCoords[idx]
		}
		out = append(out, p[0], p[1], p[2], uv[0], uv[1])
	}
	return out
}

var _ ModelRenderer = &meshRenderer{}

type meshRenderer struct {
	vertices []float32
	skin     Skin
	bounds   document.BBox
	block    *vbo.Block
	draws    []ModelDraw
}

func (r *meshRenderer) Prepare(v vbo.Vbo) error {
	if r.block != nil {
		return nil
	}
	count := len(r.vertices) / 5
	r.block = v.AllocBlock(count * ModelVertexStride)
	r.block.WriteBytes(common.SliceToBytes(r.vertices))
	r.draws = []ModelDraw{{
		Texture:      r.skin.Texture,
		Color:        r.skin.Color,
		BufferOffset: uint64(r.block.Offset()),
		VertexCount:  count,
	}}
	return nil
}

func (r *meshRenderer) Prepared() bool { return r.block != nil }

func (r *meshRenderer) Draws() []ModelDraw { return r.draws }

func (r *meshRenderer) Bounds() document.BBox { return r.bounds }
