package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/prisma/engine/math"
)

func TestAdvanceWrapsRotation(t *testing.T) {
	obj := &RenderObject{
		Rotation:        math.NewVec3(359.0, 0, 0),
		AngularVelocity: math.NewVec3(2.5, 0, 0),
	}
	obj.Advance(1.0)
	assert.Equal(t, float32(1.5), obj.Rotation.X)
	assert.Equal(t, float32(0), obj.Rotation.Y)
	assert.Equal(t, float32(0), obj.Rotation.Z)
}

func TestAdvanceAccumulatesPerAxis(t *testing.T) {
	obj := &RenderObject{
		AngularVelocity: math.NewVec3(2.5, 0, 0),
	}
	// 144 frames at 60 fps is 2.4 seconds of rotation at 2.5 degrees per
	// second.
	for i := 0; i < 144; i++ {
		obj.Advance(1.0 / 60.0)
	}
	assert.InDelta(t, 6.0, obj.Rotation.X, 1e-3)
}

func TestModelMatrixComposition(t *testing.T) {
	obj := &RenderObject{
		Position: math.NewVec3(1, 2, 3),
		Rotation: math.NewVec3(90, 0, 0),
		Scale:    2.0,
	}
	// (0,1,0) scales to (0,2,0), rotates about X to (0,0,2), then
	// translates to (1,2,5).
	got := math.NewVec3(0, 1, 0).Transform(obj.ModelMatrix())
	assert.True(t, got.Compare(math.NewVec3(1, 2, 5), 1e-5), "got %+v", got)
}

func TestModelMatrixZeroScaleDefaultsToUnit(t *testing.T) {
	obj := &RenderObject{Position: math.NewVec3(1, 0, 0)}
	got := math.NewVec3(0, 1, 0).Transform(obj.ModelMatrix())
	assert.True(t, got.Compare(math.NewVec3(1, 1, 0), 1e-5), "got %+v", got)
}
