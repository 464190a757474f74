package text

// RendererBuilderOption is a functional option applied to a label renderer during construction via NewRenderer.
type RendererBuilderOption func(*settings)

// WithName sets the name used for the renderer's buffer label and errors.
//
// Parameters:
//   - name: the renderer name
//
// Returns:
//   - RendererBuilderOption: a function that sets the name
func WithName(name string) RendererBuilderOption {
	return func(s *settings) {
		s.name = name
	}
}

// WithFadeDistance sets the camera distance at which labels disappear.
//
// Parameters:
//   - d: the fade distance in world units
//
// Returns:
//   - RendererBuilderOption: a function that sets the fade distance
func WithFadeDistance(d float32) RendererBuilderOption {
	return func(s *settings) {
		s.fadeDistance = d
	}
}

// WithFadeWidth sets the length of the band over which labels fade out.
//
// Parameters:
//   - w: the fade width in world units
//
// Returns:
//   - RendererBuilderOption: a function that sets the fade width
func WithFadeWidth(w float32) RendererBuilderOption {
	return func(s *settings) {
		s.fadeWidth = w
	}
}

// WithAtlas sets the glyph atlas. The default is DefaultAtlas.
func WithAtlas(a *Atlas) RendererBuilderOption {
	return func(s *settings) {
		s.atlas = a
	}
}
