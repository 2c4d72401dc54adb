package binding

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/core"
)

func buildCubeTemplate(t *testing.T, device *fakeDevice) (*Capabilities, *Template) {
	t.Helper()
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)
	template, err := Build(caps, cubeBuildConfig(layout))
	require.NoError(t, err)
	return caps, template
}

func testBlob(seed uint64) fakeBlob {
	return fakeBlob{
		Scene:   fakeBufferDescriptor{Buffer: seed, Offset: 0, Range: 128},
		Object:  fakeBufferDescriptor{Buffer: seed + 1, Offset: 64, Range: 64},
		Texture: fakeImageDescriptor{Sampler: seed + 2, View: seed + 3, Layout: 5},
	}
}

func TestPushAlternatesPathsDeterministically(t *testing.T) {
	device := newFakeDevice()
	caps, template := buildCubeTemplate(t, device)
	dispatcher := NewDispatcher(caps)

	blob := testBlob(100)
	for call := uint64(0); call < 6; call++ {
		require.NoError(t, dispatcher.Push(nil, template, call, unsafe.Pointer(&blob)))
	}

	require.Len(t, device.pushes, 6)
	for k, push := range device.pushes {
		want := "direct"
		if k%2 == 1 {
			want = "structured"
		}
		assert.Equalf(t, want, push.path, "call %d", k)
		assert.Equal(t, want, PathForCall(uint64(k)))
	}
}

// The two device paths must yield an identical bound-resource set for
// identical template, layout and blob inputs.
func TestPushPathsAreEquivalent(t *testing.T) {
	device := newFakeDevice()
	caps, template := buildCubeTemplate(t, device)
	dispatcher := NewDispatcher(caps)

	blob := testBlob(42)
	require.NoError(t, dispatcher.Push(nil, template, 0, unsafe.Pointer(&blob)))
	require.NoError(t, dispatcher.Push(nil, template, 1, unsafe.Pointer(&blob)))

	require.Len(t, device.pushes, 2)
	direct, structured := device.pushes[0], device.pushes[1]
	assert.Equal(t, "direct", direct.path)
	assert.Equal(t, "structured", structured.path)
	assert.Equal(t, direct.set, structured.set)
	assert.Equal(t, direct.bound, structured.bound, "both paths must bind the same resource set")
}

func TestPushReadsRecordsAtTemplateOffsets(t *testing.T) {
	device := newFakeDevice()
	caps, template := buildCubeTemplate(t, device)
	dispatcher := NewDispatcher(caps)

	blob := testBlob(7)
	require.NoError(t, dispatcher.Push(nil, template, 0, unsafe.Pointer(&blob)))

	require.Len(t, device.pushes, 1)
	bound := device.pushes[0].bound
	require.Len(t, bound, 3)

	var gotObject fakeBufferDescriptor
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&gotObject)), unsafe.Sizeof(gotObject)), bound[1])
	assert.Equal(t, blob.Object, gotObject)

	var gotTexture fakeImageDescriptor
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&gotTexture)), unsafe.Sizeof(gotTexture)), bound[2])
	assert.Equal(t, blob.Texture, gotTexture)
}

func TestPushWithoutCapabilitiesFails(t *testing.T) {
	var dispatcher *Dispatcher
	err := dispatcher.Push(nil, nil, 0, nil)
	assert.ErrorIs(t, err, core.ErrBindingUnavailable)

	dispatcher = NewDispatcher(nil)
	err = dispatcher.Push(nil, nil, 0, nil)
	assert.ErrorIs(t, err, core.ErrBindingUnavailable)
}

func TestPushWithDestroyedTemplateFails(t *testing.T) {
	device := newFakeDevice()
	caps, template := buildCubeTemplate(t, device)
	dispatcher := NewDispatcher(caps)

	template.Destroy()
	blob := testBlob(1)
	err := dispatcher.Push(nil, template, 0, unsafe.Pointer(&blob))
	assert.ErrorIs(t, err, core.ErrBindingUnavailable)
}
