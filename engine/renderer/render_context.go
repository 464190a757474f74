package renderer

import (
	"github.com/Carmen-Shannon/oxy-map/engine/config"
	"github.com/Carmen-Shannon/oxy-map/engine/document"
	"github.com/Carmen-Shannon/oxy-map/engine/text"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the view a frame is rendered from.
type Camera interface {
	// ViewProjection returns the combined view and projection matrix.
	ViewProjection() mgl32.Mat4
	// Position returns the eye position.
	Position() mgl32.Vec3
	// Right returns the unit vector pointing right on screen.
	Right() mgl32.Vec3
	// Up returns the unit vector pointing up on screen.
	Up() mgl32.Vec3
	// PixelSize returns the world size of one screen pixel at distance one.
	PixelSize() float32
}

// RenderContext carries the per-frame options of a render. Tools adjust it through
// SetRenderOptions before the map is drawn.
type RenderContext struct {
	Camera Camera
	// Filter decides which brushes and entities are drawn.
	Filter document.Filter
	// Textured draws faces with their textures instead of their average colors.
	Textured bool
	// ShowEntityModels draws point entity models.
	ShowEntityModels bool
	// ShowLabels draws entity classname labels.
	ShowLabels bool
	// CullModels skips entity models whose bounds lie outside the camera frustum.
	CullModels bool
}

// NewRenderContext creates a context with the default filter and every layer shown.
//
// Parameters:
//   - cam: the camera
//   - prefs: supplies the textured mode
//
// Returns:
//   - *RenderContext: the context
func NewRenderContext(cam Camera, prefs config.Preferences) *RenderContext {
	return &RenderContext{
		Camera:           cam,
		Filter:           document.DefaultFilter{},
		Textured:         prefs.Textured,
		ShowEntityModels: true,
		ShowLabels:       true,
	}
}

func (c *RenderContext) filter() document.Filter {
	if c.Filter == nil {
		return document.DefaultFilter{}
	}
	return c.Filter
}

func (c *RenderContext) labelView() text.View {
	return text.View{
		Eye:       c.Camera.Position(),
		Right:     c.Camera.Right(),
		Up:        c.Camera.Up(),
		PixelSize: c.Camera.PixelSize(),
	}
}
