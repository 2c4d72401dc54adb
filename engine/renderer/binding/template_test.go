package binding

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeBuildConfig(layout *Layout) *BuildConfig {
	blobSize := unsafe.Sizeof(fakeBlob{})
	return &BuildConfig{
		Layout:         layout,
		LayoutRef:      "set-layout",
		PipelineLayout: "pipeline-layout",
		BindPoint:      BindPointGraphics,
		Set:            0,
		BlobSize:       blobSize,
		Entries: []Entry{
			{Slot: 0, Count: 1, Kind: ResourceKindUniformBuffer, Offset: unsafe.Offsetof(fakeBlob{}.Scene), Stride: blobSize},
			{Slot: 1, Count: 1, Kind: ResourceKindUniformBuffer, Offset: unsafe.Offsetof(fakeBlob{}.Object), Stride: blobSize},
			{Slot: 2, Count: 1, Kind: ResourceKindCombinedImageSampler, Offset: unsafe.Offsetof(fakeBlob{}.Texture), Stride: blobSize},
		},
	}
}

func TestBuildCreatesDeviceTemplate(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)

	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	template, err := Build(caps, cubeBuildConfig(layout))
	require.NoError(t, err)
	require.Len(t, device.templates, 1)

	assert.Equal(t, layout, template.Layout())
	assert.Equal(t, unsafe.Sizeof(fakeBlob{}), template.BlobSize())
	assert.Equal(t, uint32(0), template.Set())
	assert.Len(t, template.Entries(), 3)

	template.Destroy()
	assert.Equal(t, 1, device.destroyed)
	// Destroy is idempotent.
	template.Destroy()
	assert.Equal(t, 1, device.destroyed)
}

func TestBuildRejectsEntryBeyondBlob(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	config := cubeBuildConfig(layout)
	config.Entries[2].Offset = config.BlobSize - 1
	_, err = Build(caps, config)
	assert.Error(t, err)
	assert.Empty(t, device.templates)
}

func TestBuildRejectsUnknownSlot(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	config := cubeBuildConfig(layout)
	config.Entries[0].Slot = 9
	_, err = Build(caps, config)
	assert.ErrorContains(t, err, "slot 9")
}

func TestBuildRejectsKindMismatch(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	config := cubeBuildConfig(layout)
	config.Entries[0].Kind = ResourceKindCombinedImageSampler
	_, err = Build(caps, config)
	assert.Error(t, err)
}

func TestBuildRejectsAliasingEntries(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	config := cubeBuildConfig(layout)
	// Point the texture record into the middle of the object record.
	config.Entries[2].Offset = config.Entries[1].Offset + 8
	_, err = Build(caps, config)
	assert.ErrorContains(t, err, "overlap")
}

func TestBuildRejectsDescriptorCountOverLimit(t *testing.T) {
	device := newFakeDevice()
	device.limits.MaxPushDescriptors = 2
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	_, err = Build(caps, cubeBuildConfig(layout))
	assert.ErrorContains(t, err, "device limit")
}

func TestBuildPropagatesDeviceRejection(t *testing.T) {
	device := newFakeDevice()
	device.failCreate = true
	caps, err := Negotiate(device)
	require.NoError(t, err)
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	_, err = Build(caps, cubeBuildConfig(layout))
	assert.ErrorContains(t, err, "device rejected update template")
}

func TestBuildRejectsShortStrideForArrays(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)

	layout, err := NewLayout([]Slot{
		{Index: 0, Kind: ResourceKindUniformBuffer, Stages: StageVertex},
	})
	require.NoError(t, err)

	recordSize := unsafe.Sizeof(fakeBufferDescriptor{})
	_, err = Build(caps, &BuildConfig{
		Layout:         layout,
		PipelineLayout: "pipeline-layout",
		BlobSize:       recordSize * 4,
		Entries: []Entry{
			{Slot: 0, Count: 2, Kind: ResourceKindUniformBuffer, Offset: 0, Stride: recordSize - 4},
		},
	})
	assert.ErrorContains(t, err, "stride")
}
