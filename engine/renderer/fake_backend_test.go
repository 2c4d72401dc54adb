package renderer

import (
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/prisma/engine/renderer/binding"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

// Host records sized like real descriptor records so the blob offset
// arithmetic the fake backend reports is meaningful.
type fakeBufferRecord struct {
	Buffer uint64
	Offset uint64
	Range  uint64
}

type fakeImageRecord struct {
	Sampler uint64
	View    uint64
	Layout  uint64
}

type fakeDrawRecord struct {
	Scene   fakeBufferRecord
	Object  fakeBufferRecord
	Texture fakeImageRecord
}

type fakeUniform struct {
	backend *fakeBackend
	id      uint64
	size    uintptr
	regions [][]byte
}

func (u *fakeUniform) Write(region uint32, src unsafe.Pointer, size uintptr) error {
	if int(region) >= len(u.regions) {
		return fmt.Errorf("uniform region %d out of range", region)
	}
	data := unsafe.Slice((*byte)(src), size)
	u.regions[region] = append([]byte(nil), data...)
	return nil
}

func (u *fakeUniform) Region(region uint32) BufferRegion {
	return BufferRegion{Buffer: u.id, Offset: uint64(region) * uint64(u.size), Size: uint64(u.size)}
}

func (u *fakeUniform) Destroy() {
	u.backend.destroyedBuffers++
}

// fakeBackend is an in-memory RendererBackend. It resolves real binding
// capabilities against itself and records every push path and draw, so the
// front-end tests can observe the full frame recording sequence.
type fakeBackend struct {
	limits    binding.Limits
	templates []*binding.DeviceTemplateInfo
	paths     []string
	scratch   fakeDrawRecord

	frames     uint32
	frameIndex uint32
	begun      int
	ended      int
	draws      int
	nextID     uint64

	destroyedTemplates int
	destroyedBuffers   int
	destroyedTextures  int
	destroyedMeshes    int
	shutdown           bool
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{frames: 2, nextID: 1}
	b.limits.MaxPushDescriptors = 32
	b.limits.DescriptorSizes[binding.ResourceKindUniformBuffer] = unsafe.Sizeof(fakeBufferRecord{})
	b.limits.DescriptorSizes[binding.ResourceKindCombinedImageSampler] = unsafe.Sizeof(fakeImageRecord{})
	return b
}

func (b *fakeBackend) id() uint64 {
	v := b.nextID
	b.nextID++
	return v
}

func (b *fakeBackend) Initialize(appName string, appWidth, appHeight uint32) error {
	return nil
}

func (b *fakeBackend) Shutdown() error {
	b.shutdown = true
	return nil
}

func (b *fakeBackend) Resized(width, height uint16) error {
	return nil
}

func (b *fakeBackend) BeginFrame(deltaTime float64) error {
	b.frameIndex = uint32(b.begun) % b.frames
	b.begun++
	return nil
}

func (b *fakeBackend) EndFrame(deltaTime float64) error {
	b.ended++
	return nil
}

func (b *fakeBackend) WaitIdle() error {
	return nil
}

func (b *fakeBackend) FramesInFlight() uint32 {
	return b.frames
}

func (b *fakeBackend) FrameIndex() uint32 {
	return b.frameIndex
}

func (b *fakeBackend) CommandTarget() binding.PushTarget {
	return b
}

func (b *fakeBackend) Limits() binding.Limits {
	return b.limits
}

func (b *fakeBackend) ResolveCreateTemplate() (binding.CreateTemplateFunc, bool) {
	return func(info *binding.DeviceTemplateInfo) (binding.TemplateRef, error) {
		b.templates = append(b.templates, info)
		return len(b.templates), nil
	}, true
}

func (b *fakeBackend) ResolveDestroyTemplate() (binding.DestroyTemplateFunc, bool) {
	return func(ref binding.TemplateRef) {
		b.destroyedTemplates++
	}, true
}

func (b *fakeBackend) ResolvePushDirect() (binding.PushDirectFunc, bool) {
	return func(target binding.PushTarget, template binding.TemplateRef, layout binding.PipelineLayoutRef, set uint32, data unsafe.Pointer) {
		b.paths = append(b.paths, "direct")
	}, true
}

func (b *fakeBackend) ResolvePushStructured() (binding.PushStructuredFunc, bool) {
	return func(target binding.PushTarget, info *binding.PushInfo) {
		b.paths = append(b.paths, "structured")
	}, true
}

func (b *fakeBackend) NegotiateBinding() (*binding.Capabilities, error) {
	return binding.Negotiate(b)
}

func (b *fakeBackend) CreateBindingLayout(layout *binding.Layout) (binding.LayoutRef, error) {
	return b.id(), nil
}

func (b *fakeBackend) DestroyBindingLayout(ref binding.LayoutRef) {}

func (b *fakeBackend) CreatePipeline(config *PipelineConfig) (*Pipeline, error) {
	return &Pipeline{Handle: b.id(), Layout: b.id()}, nil
}

func (b *fakeBackend) DestroyPipeline(pipeline *Pipeline) {}

func (b *fakeBackend) BindPipeline(pipeline *Pipeline) {}

func (b *fakeBackend) BlobLayout() ([]binding.Entry, uintptr) {
	entries := []binding.Entry{
		{Slot: SlotSceneUniform, Kind: binding.ResourceKindUniformBuffer, Offset: unsafe.Offsetof(fakeDrawRecord{}.Scene)},
		{Slot: SlotObjectUniform, Kind: binding.ResourceKindUniformBuffer, Offset: unsafe.Offsetof(fakeDrawRecord{}.Object)},
		{Slot: SlotObjectTexture, Kind: binding.ResourceKindCombinedImageSampler, Offset: unsafe.Offsetof(fakeDrawRecord{}.Texture)},
	}
	return entries, unsafe.Sizeof(fakeDrawRecord{})
}

func (b *fakeBackend) AssembleBlob(scene, object BufferRegion, texture *metadata.Texture) (unsafe.Pointer, error) {
	sceneID, ok := scene.Buffer.(uint64)
	if !ok {
		return nil, fmt.Errorf("scene region has no buffer")
	}
	objectID, ok := object.Buffer.(uint64)
	if !ok {
		return nil, fmt.Errorf("object region has no buffer")
	}
	textureID, ok := texture.InternalData.(uint64)
	if !ok {
		return nil, fmt.Errorf("texture '%s' was never created", texture.Name)
	}
	b.scratch = fakeDrawRecord{
		Scene:   fakeBufferRecord{Buffer: sceneID, Offset: scene.Offset, Range: scene.Size},
		Object:  fakeBufferRecord{Buffer: objectID, Offset: object.Offset, Range: object.Size},
		Texture: fakeImageRecord{Sampler: textureID, View: textureID},
	}
	return unsafe.Pointer(&b.scratch), nil
}

func (b *fakeBackend) CreateUniformBuffer(name string, size uintptr) (UniformBuffer, error) {
	return &fakeUniform{
		backend: b,
		id:      b.id(),
		size:    size,
		regions: make([][]byte, b.frames),
	}, nil
}

func (b *fakeBackend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	texture.InternalData = b.id()
	texture.Generation++
	return nil
}

func (b *fakeBackend) TextureDestroy(texture *metadata.Texture) {
	texture.InternalData = nil
	b.destroyedTextures++
}

func (b *fakeBackend) CreateCubeGeometry(name string, dimension float32) (*metadata.Geometry, error) {
	return &metadata.Geometry{Name: name, VertexCount: 24, IndexCount: 36, InternalData: b.id()}, nil
}

func (b *fakeBackend) DestroyGeometry(geometry *metadata.Geometry) {
	b.destroyedMeshes++
}

func (b *fakeBackend) DrawGeometry(geometry *metadata.Geometry) {
	b.draws++
}
