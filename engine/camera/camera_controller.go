package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController positions a camera. The editor controller orbits a target point in a Z-up
// world and translates the target to pan.
type CameraController interface {
	// Position returns the eye position.
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// SetTarget moves the target and keeps the orbit offset.
	//
	// Parameters:
	//   - target: the new target
	SetTarget(target mgl32.Vec3)

	// Zoom moves the eye towards the target. Positive deltas zoom in.
	//
	// Parameters:
	//   - delta: scroll steps, scaled by the zoom speed
	Zoom(delta float32)

	// Orbit rotates the eye around the target. Elevation is clamped to the controller bounds.
	//
	// Parameters:
	//   - dx: horizontal mouse movement in pixels
	//   - dy: vertical mouse movement in pixels
	Orbit(dx, dy float32)

	// Pan moves eye and target together in the view plane.
	//
	// Parameters:
	//   - dx: horizontal mouse movement in pixels
	//   - dy: vertical mouse movement in pixels
	Pan(dx, dy float32)

	// Radius returns the distance between eye and target.
	Radius() float32

	// SetRadius sets the orbit distance, clamped to the controller bounds.
	SetRadius(radius float32)

	// Azimuth returns the horizontal orbit angle in radians, measured from +X towards +Y.
	Azimuth() float32

	// Elevation returns the vertical orbit angle in radians above the XY plane.
	Elevation() float32
}
