package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeSlots() []Slot {
	return []Slot{
		{Index: 0, Kind: ResourceKindUniformBuffer, Stages: StageVertex},
		{Index: 1, Kind: ResourceKindUniformBuffer, Stages: StageVertex},
		{Index: 2, Kind: ResourceKindCombinedImageSampler, Stages: StageFragment},
	}
}

func TestNewLayout(t *testing.T) {
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)
	assert.Equal(t, 3, layout.SlotCount())

	slot, found := layout.find(2)
	require.True(t, found)
	assert.Equal(t, ResourceKindCombinedImageSampler, slot.Kind)

	_, found = layout.find(7)
	assert.False(t, found)
}

func TestNewLayoutRejectsDuplicateSlots(t *testing.T) {
	_, err := NewLayout([]Slot{
		{Index: 0, Kind: ResourceKindUniformBuffer, Stages: StageVertex},
		{Index: 0, Kind: ResourceKindCombinedImageSampler, Stages: StageFragment},
	})
	assert.Error(t, err)
}

func TestNewLayoutRejectsEmpty(t *testing.T) {
	_, err := NewLayout(nil)
	assert.Error(t, err)
}

func TestNewLayoutRejectsStagelessSlot(t *testing.T) {
	_, err := NewLayout([]Slot{{Index: 0, Kind: ResourceKindUniformBuffer}})
	assert.Error(t, err)
}

func TestNewLayoutRejectsUnknownKind(t *testing.T) {
	_, err := NewLayout([]Slot{{Index: 0, Kind: resourceKindMax, Stages: StageVertex}})
	assert.Error(t, err)
}

func TestLayoutSlotsIsACopy(t *testing.T) {
	layout, err := NewLayout(cubeSlots())
	require.NoError(t, err)

	slots := layout.Slots()
	slots[0].Index = 99
	_, found := layout.find(99)
	assert.False(t, found, "mutating the returned slice must not affect the layout")
}
