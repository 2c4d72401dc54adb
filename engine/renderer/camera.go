package renderer

import (
	"github.com/spaghettifunk/prisma/engine/math"
)

// Camera holds a fixed lookat view and a perspective projection that follows
// the framebuffer aspect ratio.
type Camera struct {
	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
	// Vertical field of view in degrees.
	Fov  float32
	Near float32
	Far  float32

	projection math.Mat4
	view       math.Mat4
}

func NewCamera(position, target math.Vec3, fov, near, far float32) *Camera {
	c := &Camera{
		Position: position,
		Target:   target,
		Up:       math.NewVec3(0, 1, 0),
		Fov:      fov,
		Near:     near,
		Far:      far,
	}
	c.view = math.NewMat4LookAt(c.Position, c.Target, c.Up)
	c.projection = math.NewMat4Identity()
	return c
}

// SetAspect recomputes the projection for a new framebuffer size. A zero
// dimension (minimized window) leaves the previous projection in place.
func (c *Camera) SetAspect(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	aspect := float32(width) / float32(height)
	c.projection = math.NewMat4Perspective(math.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

func (c *Camera) View() math.Mat4 {
	return c.view
}

func (c *Camera) Projection() math.Mat4 {
	return c.projection
}
