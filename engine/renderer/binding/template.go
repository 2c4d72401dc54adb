package binding

import (
	"fmt"
	"sort"
)

// Entry maps one slot of a layout to a byte range inside the per-draw blob.
type Entry struct {
	// Target slot in the binding layout.
	Slot uint32
	// First array element updated at the slot.
	ArrayElement uint32
	// Number of descriptors updated, starting at ArrayElement. Zero is
	// treated as one.
	Count uint32
	// The resource kind, matching the slot's declaration.
	Kind ResourceKind
	// Byte offset of the first descriptor record inside the blob.
	Offset uintptr
	// Byte distance between consecutive records. Meaningful only when
	// Count > 1; by convention it equals the blob size otherwise.
	Stride uintptr
}

func (e Entry) count() uintptr {
	if e.Count == 0 {
		return 1
	}
	return uintptr(e.Count)
}

// Template maps a host data blob onto one binding layout and one pipeline
// layout. Immutable after construction; owned by the pipeline/layout pair it
// was built for and destroyed with that pipeline.
type Template struct {
	entries        []Entry
	layout         *Layout
	pipelineLayout PipelineLayoutRef
	bindPoint      BindPoint
	set            uint32
	blobSize       uintptr
	ref            TemplateRef
	caps           *Capabilities
}

// BuildConfig describes the template to build.
type BuildConfig struct {
	// The slot declarations the template updates.
	Layout *Layout
	// The device object created from Layout.
	LayoutRef LayoutRef
	// The pipeline layout the template is bound to.
	PipelineLayout PipelineLayoutRef
	// The pipeline kind, graphics or compute.
	BindPoint BindPoint
	// The descriptor set index the pushes target.
	Set uint32
	// Byte size of the per-draw blob type.
	BlobSize uintptr
	// The blob field mapping.
	Entries []Entry
}

// Build validates the blob mapping against the layout and creates the
// device-side template object. Failure here is fatal at startup for the
// caller; templates are built once before the render loop starts. The caller
// owns the returned template.
func Build(caps *Capabilities, config *BuildConfig) (*Template, error) {
	if caps == nil || caps.CreateTemplate == nil {
		return nil, fmt.Errorf("cannot build update template: capabilities not negotiated")
	}
	if config.Layout == nil {
		return nil, fmt.Errorf("cannot build update template without a binding layout")
	}
	if len(config.Entries) == 0 {
		return nil, fmt.Errorf("cannot build update template without entries")
	}
	if err := validateEntries(caps, config); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(config.Entries))
	copy(entries, config.Entries)

	ref, err := caps.CreateTemplate(&DeviceTemplateInfo{
		Entries:        entries,
		Layout:         config.LayoutRef,
		PipelineLayout: config.PipelineLayout,
		BindPoint:      config.BindPoint,
		Set:            config.Set,
	})
	if err != nil {
		return nil, fmt.Errorf("device rejected update template: %w", err)
	}

	return &Template{
		entries:        entries,
		layout:         config.Layout,
		pipelineLayout: config.PipelineLayout,
		bindPoint:      config.BindPoint,
		set:            config.Set,
		blobSize:       config.BlobSize,
		ref:            ref,
		caps:           caps,
	}, nil
}

func validateEntries(caps *Capabilities, config *BuildConfig) error {
	limits := caps.Limits()

	type span struct {
		begin, end uintptr
		kind       ResourceKind
	}
	spans := make([]span, 0, len(config.Entries))
	totalDescriptors := uint32(0)

	for _, e := range config.Entries {
		slot, found := config.Layout.find(e.Slot)
		if !found {
			return fmt.Errorf("template entry targets slot %d which is not in the layout", e.Slot)
		}
		if slot.Kind != e.Kind {
			return fmt.Errorf("template entry for slot %d has kind %s, layout declares %s",
				e.Slot, e.Kind, slot.Kind)
		}

		size := caps.DescriptorSize(e.Kind)
		count := e.count()
		if count > 1 {
			if e.Stride < size {
				return fmt.Errorf("template entry for slot %d has stride %d below the %s record size %d",
					e.Slot, e.Stride, e.Kind, size)
			}
		}
		stride := e.Stride
		if count == 1 {
			stride = 0
		}
		end := e.Offset + stride*(count-1) + size
		if end > config.BlobSize {
			return fmt.Errorf("template entry for slot %d ends at byte %d, beyond the %d byte blob",
				e.Slot, end, config.BlobSize)
		}
		spans = append(spans, span{begin: e.Offset, end: e.Offset + size, kind: e.Kind})
		totalDescriptors += uint32(count)
	}

	if totalDescriptors > limits.MaxPushDescriptors {
		return fmt.Errorf("template updates %d descriptors, device limit is %d",
			totalDescriptors, limits.MaxPushDescriptors)
	}

	// Records of different kinds must not alias inside the blob.
	sort.Slice(spans, func(i, j int) bool { return spans[i].begin < spans[j].begin })
	for i := 1; i < len(spans); i++ {
		if spans[i].begin < spans[i-1].end {
			return fmt.Errorf("template entries overlap at byte %d", spans[i].begin)
		}
	}
	return nil
}

// Entries returns a copy of the template's entry sequence.
func (t *Template) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Layout returns the binding layout the template was built against.
func (t *Template) Layout() *Layout {
	return t.layout
}

// PipelineLayout returns the pipeline layout the template is bound to.
func (t *Template) PipelineLayout() PipelineLayoutRef {
	return t.pipelineLayout
}

// Set returns the descriptor set index the template pushes into.
func (t *Template) Set() uint32 {
	return t.set
}

// BlobSize returns the byte size of the per-draw blob type.
func (t *Template) BlobSize() uintptr {
	return t.blobSize
}

// Ref returns the device-side template handle.
func (t *Template) Ref() TemplateRef {
	return t.ref
}

// Destroy releases the device-side template object. Call it when the owning
// pipeline is destroyed.
func (t *Template) Destroy() {
	if t.ref != nil && t.caps != nil && t.caps.DestroyTemplate != nil {
		t.caps.DestroyTemplate(t.ref)
		t.ref = nil
	}
}
