package binding

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/core"
)

func TestNegotiateResolvesAllEntryPoints(t *testing.T) {
	device := newFakeDevice()
	caps, err := Negotiate(device)
	require.NoError(t, err)

	assert.NotNil(t, caps.CreateTemplate)
	assert.NotNil(t, caps.DestroyTemplate)
	assert.NotNil(t, caps.PushDirect)
	assert.NotNil(t, caps.PushStructured)
	assert.Equal(t, uint32(32), caps.Limits().MaxPushDescriptors)
	assert.Equal(t, unsafe.Sizeof(fakeBufferDescriptor{}), caps.DescriptorSize(ResourceKindUniformBuffer))
	assert.Equal(t, uintptr(0), caps.DescriptorSize(resourceKindMax))
}

func TestNegotiateFailsFastOnMissingEntryPoint(t *testing.T) {
	cases := []struct {
		name  string
		wreck func(*fakeDevice)
	}{
		{"create_template", func(d *fakeDevice) { d.missingCreate = true }},
		{"destroy_template", func(d *fakeDevice) { d.missingDestroy = true }},
		{"push_direct", func(d *fakeDevice) { d.missingDirect = true }},
		{"push_structured", func(d *fakeDevice) { d.missingStructured = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			device := newFakeDevice()
			tc.wreck(device)
			_, err := Negotiate(device)
			assert.ErrorIs(t, err, core.ErrCapabilityMissing)
		})
	}
}

func TestNegotiateRejectsZeroPushLimit(t *testing.T) {
	device := newFakeDevice()
	device.limits.MaxPushDescriptors = 0
	_, err := Negotiate(device)
	assert.ErrorIs(t, err, core.ErrCapabilityMissing)
}

func TestNegotiateRejectsMissingDescriptorSize(t *testing.T) {
	device := newFakeDevice()
	device.limits.DescriptorSizes[ResourceKindCombinedImageSampler] = 0
	_, err := Negotiate(device)
	assert.ErrorIs(t, err, core.ErrCapabilityMissing)
}
