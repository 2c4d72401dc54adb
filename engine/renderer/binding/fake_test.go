package binding

import (
	"fmt"
	"unsafe"
)

// Fixed-size host records the fake device reads out of the blob. Sized like
// real descriptor records so offset arithmetic is meaningful.
type fakeBufferDescriptor struct {
	Buffer uint64
	Offset uint64
	Range  uint64
}

type fakeImageDescriptor struct {
	Sampler uint64
	View    uint64
	Layout  uint64
}

// fakeBlob mirrors the per-draw record the renderer assembles: one scene
// buffer, one object buffer, one texture.
type fakeBlob struct {
	Scene   fakeBufferDescriptor
	Object  fakeBufferDescriptor
	Texture fakeImageDescriptor
}

type fakePush struct {
	path     string
	set      uint32
	template TemplateRef
	// Bytes of each descriptor record, keyed by slot index.
	bound map[uint32][]byte
}

// fakeDevice implements Resolver and records every binding call it applies,
// so tests can observe dispatch order and the resulting bound-resource set.
type fakeDevice struct {
	limits    Limits
	templates []*DeviceTemplateInfo
	pushes    []fakePush
	destroyed int

	missingCreate     bool
	missingDestroy    bool
	missingDirect     bool
	missingStructured bool
	failCreate        bool
}

func newFakeDevice() *fakeDevice {
	d := &fakeDevice{}
	d.limits.MaxPushDescriptors = 32
	d.limits.DescriptorSizes[ResourceKindUniformBuffer] = unsafe.Sizeof(fakeBufferDescriptor{})
	d.limits.DescriptorSizes[ResourceKindCombinedImageSampler] = unsafe.Sizeof(fakeImageDescriptor{})
	return d
}

func (d *fakeDevice) Limits() Limits {
	return d.limits
}

func (d *fakeDevice) ResolveCreateTemplate() (CreateTemplateFunc, bool) {
	if d.missingCreate {
		return nil, false
	}
	return func(info *DeviceTemplateInfo) (TemplateRef, error) {
		if d.failCreate {
			return nil, fmt.Errorf("unsupported resource kind combination")
		}
		d.templates = append(d.templates, info)
		return len(d.templates), nil
	}, true
}

func (d *fakeDevice) ResolveDestroyTemplate() (DestroyTemplateFunc, bool) {
	if d.missingDestroy {
		return nil, false
	}
	return func(ref TemplateRef) {
		d.destroyed++
	}, true
}

func (d *fakeDevice) ResolvePushDirect() (PushDirectFunc, bool) {
	if d.missingDirect {
		return nil, false
	}
	return func(target PushTarget, template TemplateRef, layout PipelineLayoutRef, set uint32, data unsafe.Pointer) {
		d.apply("direct", template, set, data)
	}, true
}

func (d *fakeDevice) ResolvePushStructured() (PushStructuredFunc, bool) {
	if d.missingStructured {
		return nil, false
	}
	return func(target PushTarget, info *PushInfo) {
		d.apply("structured", info.Template, info.Set, info.Data)
	}, true
}

// apply replays the template the way a driver would: read the descriptor
// record for each entry out of the blob at its byte offset.
func (d *fakeDevice) apply(path string, ref TemplateRef, set uint32, data unsafe.Pointer) {
	idx, ok := ref.(int)
	if !ok || idx < 1 || idx > len(d.templates) {
		panic("fake device: push with unknown template")
	}
	info := d.templates[idx-1]

	push := fakePush{path: path, set: set, template: ref, bound: make(map[uint32][]byte)}
	for _, e := range info.Entries {
		size := d.limits.DescriptorSizes[e.Kind]
		record := unsafe.Slice((*byte)(unsafe.Add(data, e.Offset)), size)
		push.bound[e.Slot] = append([]byte(nil), record...)
	}
	d.pushes = append(d.pushes, push)
}
