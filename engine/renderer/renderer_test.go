package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

func testObjects() []*RenderObject {
	return []*RenderObject{
		{
			Name:            "cube-a",
			Position:        math.NewVec3(-2, 0, 0),
			AngularVelocity: math.NewVec3(2.5, 0, 0),
			Scale:           0.25,
			Texture:         &metadata.Texture{Name: "crate01", Width: 2, Height: 2, ChannelCount: 4},
			Pixels:          make([]uint8, 2*2*4),
		},
		{
			Name:            "cube-b",
			Position:        math.NewVec3(1.5, 0.5, 0),
			AngularVelocity: math.NewVec3(0, 2.0, 0),
			Scale:           0.25,
			Texture:         &metadata.Texture{Name: "crate02", Width: 2, Height: 2, ChannelCount: 4},
			Pixels:          make([]uint8, 2*2*4),
		},
	}
}

func newTestRenderer(t *testing.T) (*Renderer, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	r := NewRenderer(backend)
	require.NoError(t, r.Initialize("test", 1280, 720))
	camera := NewCamera(math.NewVec3(0, 0, -5), math.NewVec3(0, 0, 0), 60.0, 0.1, 512.0)
	require.NoError(t, r.PrepareScene(camera, testObjects()))
	return r, backend
}

func TestDrawFrameRequiresPreparedScene(t *testing.T) {
	r := NewRenderer(newFakeBackend())
	require.NoError(t, r.Initialize("test", 1280, 720))

	err := r.DrawFrame(1.0 / 60.0)
	assert.ErrorIs(t, err, core.ErrNotPrepared)
}

func TestPrepareSceneRequiresInitialize(t *testing.T) {
	r := NewRenderer(newFakeBackend())
	camera := NewCamera(math.NewVec3(0, 0, -5), math.NewVec3(0, 0, 0), 60.0, 0.1, 512.0)
	err := r.PrepareScene(camera, testObjects())
	assert.ErrorIs(t, err, core.ErrBindingUnavailable)
}

func TestDrawFramePushesOncePerObject(t *testing.T) {
	r, backend := newTestRenderer(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.DrawFrame(1.0/60.0))
	}

	// Two objects over three frames: six pushes and six draws, the dispatch
	// path alternating with the running call counter.
	assert.Equal(t, uint64(6), r.PushCalls())
	assert.Equal(t, 6, backend.draws)
	assert.Equal(t, []string{"direct", "structured", "direct", "structured", "direct", "structured"}, backend.paths)
	assert.Equal(t, 3, backend.ended)
}

func TestDrawFrameWritesUniformsToOwnedRegion(t *testing.T) {
	r, backend := newTestRenderer(t)

	require.NoError(t, r.DrawFrame(1.0/60.0))
	require.NoError(t, r.DrawFrame(1.0/60.0))

	scene, ok := r.sceneUniform.(*fakeUniform)
	require.True(t, ok)
	// Frame 0 and frame 1 each own a distinct region; both must have been
	// written after two frames.
	assert.NotEmpty(t, scene.regions[0])
	assert.NotEmpty(t, scene.regions[1])
	assert.Equal(t, 2, backend.begun)
}

func TestDrawFrameSkipsAnimationWhenPaused(t *testing.T) {
	r, _ := newTestRenderer(t)

	r.TogglePause()
	require.NoError(t, r.DrawFrame(1.0))
	assert.Equal(t, float32(0), r.objects[0].Rotation.X)

	r.TogglePause()
	require.NoError(t, r.DrawFrame(1.0))
	assert.Equal(t, float32(2.5), r.objects[0].Rotation.X)
}

func TestPauseToggleFromEventGoroutine(t *testing.T) {
	r, _ := newTestRenderer(t)

	// Input events arrive on their own goroutine while frames are recorded.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			r.TogglePause()
			r.SetAnimate(i%2 == 0)
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, r.DrawFrame(1.0/60.0))
	}
	<-done

	// An even number of toggles lands back on unpaused.
	assert.False(t, r.paused.Load())
	assert.False(t, r.animate.Load())
}

func TestShutdownReleasesSceneAndTemplate(t *testing.T) {
	r, backend := newTestRenderer(t)
	require.NoError(t, r.DrawFrame(1.0/60.0))

	require.NoError(t, r.Shutdown())
	assert.Equal(t, 1, backend.destroyedTemplates)
	assert.Equal(t, 3, backend.destroyedBuffers)
	assert.Equal(t, 2, backend.destroyedTextures)
	assert.Equal(t, 2, backend.destroyedMeshes)
	assert.True(t, backend.shutdown)

	err := r.DrawFrame(1.0 / 60.0)
	assert.ErrorIs(t, err, core.ErrNotPrepared)
}
