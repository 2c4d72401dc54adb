package renderer

import (
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

// RenderObject is one textured mesh in the scene. Rotation and
// AngularVelocity are in degrees; Advance accumulates velocity over time
// and ModelMatrix bakes the current pose.
type RenderObject struct {
	Name            string
	Position        math.Vec3
	Rotation        math.Vec3
	AngularVelocity math.Vec3
	Scale           float32

	// Texture carries the dimensions before prepare and the device object
	// after; Pixels is the RGBA payload, released once uploaded.
	Texture *metadata.Texture
	Pixels  []uint8

	geometry *metadata.Geometry
	uniform  UniformBuffer
}

// Advance accumulates the angular velocity over delta seconds, wrapping each
// axis back into [0, 360). A single subtraction is enough because one step is
// always far below a full turn.
func (o *RenderObject) Advance(delta float64) {
	step := float32(delta)
	o.Rotation.X += o.AngularVelocity.X * step
	if o.Rotation.X > 360.0 {
		o.Rotation.X -= 360.0
	}
	o.Rotation.Y += o.AngularVelocity.Y * step
	if o.Rotation.Y > 360.0 {
		o.Rotation.Y -= 360.0
	}
	o.Rotation.Z += o.AngularVelocity.Z * step
	if o.Rotation.Z > 360.0 {
		o.Rotation.Z -= 360.0
	}
}

// ModelMatrix builds the world transform: scale, then the X, Y, Z rotations
// from the innermost out, then the translation.
func (o *RenderObject) ModelMatrix() math.Mat4 {
	scale := o.Scale
	if scale == 0 {
		scale = 1.0
	}
	m := math.NewMat4Scale(math.NewVec3(scale, scale, scale))
	m = m.Mul(math.NewMat4EulerZ(math.DegToRad(o.Rotation.Z)))
	m = m.Mul(math.NewMat4EulerY(math.DegToRad(o.Rotation.Y)))
	m = m.Mul(math.NewMat4EulerX(math.DegToRad(o.Rotation.X)))
	return m.Mul(math.NewMat4Translation(o.Position))
}
