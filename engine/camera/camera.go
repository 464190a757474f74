// Package camera provides the perspective editor camera. It implements renderer.Camera and
// turns cursor positions into picking rays.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/renderer"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// clipDepthCorrection maps OpenGL clip depth [-1, 1] to the [0, 1] range WebGPU expects.
var clipDepthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type cameraImpl struct {
	mu *sync.Mutex

	fov    float32
	near   float32
	far    float32
	width  int
	height int

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	right                mgl32.Vec3
	up                   mgl32.Vec3
	forward              mgl32.Vec3

	controller CameraController
}

// Camera holds the perspective settings of the editor view and derives its matrices from an
// attached CameraController every Update.
type Camera interface {
	renderer.Camera

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// Aspect returns the viewport width divided by its height.
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// SetViewport sets the framebuffer size the camera renders to.
	//
	// Parameters:
	//   - width: the width in pixels
	//   - height: the height in pixels
	SetViewport(width, height int)

	// Viewport returns the framebuffer size.
	Viewport() (width, height int)

	// Controller returns the attached controller.
	Controller() CameraController

	// SetController attaches a controller and recomputes the matrices.
	SetController(ctrl CameraController)

	// Update recomputes the matrices from the controller.
	Update()

	// Forward returns the unit view direction.
	Forward() mgl32.Vec3

	// PickRay returns the ray from the eye through a cursor position.
	//
	// Parameters:
	//   - x: the cursor x in pixels from the left edge
	//   - y: the cursor y in pixels from the top edge
	//
	// Returns:
	//   - common.Ray: the picking ray with a unit direction
	PickRay(x, y float32) common.Ray
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 90 degree field of view and a far plane suited to map
// scale. Without a controller the camera orbits the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		fov:    math32.Pi / 2,
		near:   1,
		far:    32768,
		width:  1,
		height: 1,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewOrbitController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller.Position()
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward
}

func (c *cameraImpl) PixelSize() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return 2 * math32.Tan(c.fov/2) / float32(c.height)
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float32(c.width) / float32(c.height)
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetViewport(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = max(width, 1), max(height, 1)
	c.updateMatrices()
}

func (c *cameraImpl) Viewport() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) PickRay(x, y float32) common.Ray {
	c.mu.Lock()
	defer c.mu.Unlock()

	ndcX := 2*x/float32(c.width) - 1
	ndcY := 1 - 2*y/float32(c.height)
	halfHeight := math32.Tan(c.fov / 2)
	halfWidth := halfHeight * float32(c.width) / float32(c.height)
	dir := c.forward.
		Add(c.right.Mul(ndcX * halfWidth)).
		Add(c.up.Mul(ndcY * halfHeight))
	return common.Ray{Origin: c.controller.Position(), Direction: dir.Normalize()}
}

// updateMatrices recalculates the view, projection and view-projection matrices and the view
// axes. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	eye := c.controller.Position()
	target := c.controller.Target()

	c.viewMatrix = mgl32.LookAtV(eye, target, mgl32.Vec3{0, 0, 1})
	c.projectionMatrix = clipDepthCorrection.Mul4(
		mgl32.Perspective(c.fov, float32(c.width)/float32(c.height), c.near, c.far),
	)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)

	c.forward = target.Sub(eye).Normalize()
	c.right = c.forward.Cross(mgl32.Vec3{0, 0, 1}).Normalize()
	c.up = c.right.Cross(c.forward)
}
