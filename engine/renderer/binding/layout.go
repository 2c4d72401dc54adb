// Package binding implements push-style resource binding for the renderer.
// Instead of allocating persistent descriptor sets out of a pool, a pipeline
// declares a binding layout once, a reusable update template maps byte
// offsets inside a per-draw data blob to the layout's slots, and a dispatcher
// records one push per draw into the active command context.
package binding

import (
	"fmt"
)

// ResourceKind identifies what kind of resource a binding slot consumes.
type ResourceKind uint8

const (
	ResourceKindUniformBuffer ResourceKind = iota
	ResourceKindCombinedImageSampler
	resourceKindMax
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindUniformBuffer:
		return "uniform_buffer"
	case ResourceKindCombinedImageSampler:
		return "combined_image_sampler"
	}
	return "unknown"
}

// StageFlags marks which shader stages consume a slot.
type StageFlags uint8

const (
	StageVertex StageFlags = 1 << iota
	StageFragment
)

// Slot declares a single binding slot, independent of any concrete resource.
type Slot struct {
	// Index of the slot inside the set. Unique within a layout.
	Index uint32
	// The resource kind bound at this slot.
	Kind ResourceKind
	// The shader stages that read the slot.
	Stages StageFlags
}

// Layout is an ordered sequence of slots. It is created once at pipeline
// setup and immutable afterwards; the pipeline that consumes it owns it.
type Layout struct {
	slots []Slot
}

// NewLayout validates the slot sequence and returns an immutable layout.
func NewLayout(slots []Slot) (*Layout, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("binding layout requires at least one slot")
	}
	seen := make(map[uint32]bool, len(slots))
	for _, s := range slots {
		if s.Kind >= resourceKindMax {
			return nil, fmt.Errorf("slot %d has unknown resource kind %d", s.Index, s.Kind)
		}
		if s.Stages == 0 {
			return nil, fmt.Errorf("slot %d is not visible to any shader stage", s.Index)
		}
		if seen[s.Index] {
			return nil, fmt.Errorf("duplicate slot index %d in binding layout", s.Index)
		}
		seen[s.Index] = true
	}
	out := &Layout{slots: make([]Slot, len(slots))}
	copy(out.slots, slots)
	return out, nil
}

// Slots returns a copy of the layout's slot sequence.
func (l *Layout) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}

// SlotCount returns the number of declared slots.
func (l *Layout) SlotCount() int {
	return len(l.slots)
}

func (l *Layout) find(index uint32) (Slot, bool) {
	for _, s := range l.slots {
		if s.Index == index {
			return s, true
		}
	}
	return Slot{}, false
}
