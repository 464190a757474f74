package loader

import "io"

// gltfLoaderBackend reads glTF and GLB entity models.
type gltfLoaderBackend struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackend{}

func newGLTFLoaderBackend() *gltfLoaderBackend {
	return &gltfLoaderBackend{importer: newGLTFImporter()}
}

func (b *gltfLoaderBackend) Load(path string) (*importedModel, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackend) LoadReader(name string, r io.Reader, binary bool) (*importedModel, error) {
	return b.importer.ImportReader(name, r, binary)
}

func (b *gltfLoaderBackend) Extensions() []string {
	return []string{".gltf", ".glb"}
}
