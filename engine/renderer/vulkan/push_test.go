package vulkan

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer"
	"github.com/spaghettifunk/prisma/engine/renderer/binding"
)

var _ renderer.RendererBackend = (*VulkanRenderer)(nil)

func TestResolverReportsAbsentEntryPoints(t *testing.T) {
	resolver := &bindingResolver{}

	_, ok := resolver.ResolveCreateTemplate()
	assert.False(t, ok)
	_, ok = resolver.ResolveDestroyTemplate()
	assert.False(t, ok)
	_, ok = resolver.ResolvePushDirect()
	assert.False(t, ok)
	_, ok = resolver.ResolvePushStructured()
	assert.False(t, ok)
}

func TestNegotiateFailsWithoutDeviceProcs(t *testing.T) {
	caps, err := binding.Negotiate(&bindingResolver{})

	require.Error(t, err)
	assert.Nil(t, caps)
	assert.True(t, errors.Is(err, core.ErrCapabilityMissing))
}

func TestBlobLayoutMatchesDescriptorRecords(t *testing.T) {
	vr := &VulkanRenderer{}

	entries, size := vr.BlobLayout()
	require.Len(t, entries, 3)
	assert.Equal(t, unsafe.Sizeof(descriptorData{}), size)

	assert.Equal(t, renderer.SlotSceneUniform, entries[0].Slot)
	assert.Equal(t, unsafe.Offsetof(descriptorData{}.Scene), entries[0].Offset)
	assert.Equal(t, renderer.SlotObjectUniform, entries[1].Slot)
	assert.Equal(t, unsafe.Offsetof(descriptorData{}.Object), entries[1].Offset)
	assert.Equal(t, renderer.SlotObjectTexture, entries[2].Slot)
	assert.Equal(t, unsafe.Offsetof(descriptorData{}.Texture), entries[2].Offset)

	for _, entry := range entries {
		assert.Equal(t, size, entry.Stride)
	}
}
