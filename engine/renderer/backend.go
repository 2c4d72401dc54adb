package renderer

import (
	"unsafe"

	"github.com/spaghettifunk/prisma/engine/renderer/binding"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

// PipelineConfig describes the single graphics pipeline the engine uses.
type PipelineConfig struct {
	VertexShaderFile   string
	FragmentShaderFile string
	// The binding layout the pipeline layout is created from.
	BindingLayout    *binding.Layout
	BindingLayoutRef binding.LayoutRef
}

// Pipeline pairs the backend pipeline object with the layout handles the
// binding core needs when building templates and pushing.
type Pipeline struct {
	Handle interface{}
	Layout binding.PipelineLayoutRef
}

// BufferRegion is one frame's slice of a uniform buffer.
type BufferRegion struct {
	Buffer interface{}
	Offset uint64
	Size   uint64
}

// UniformBuffer is a host-visible buffer split into one region per frame in
// flight. A region is only rewritten once its frame's fence has signalled,
// which the backend guarantees by ordering BeginFrame before any Write of
// that frame's region.
type UniformBuffer interface {
	Write(region uint32, src unsafe.Pointer, size uintptr) error
	Region(region uint32) BufferRegion
	Destroy()
}

type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint16) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	WaitIdle() error

	// FramesInFlight is the number of uniform regions a buffer needs.
	FramesInFlight() uint32
	// FrameIndex is the region owned by the frame currently being recorded.
	FrameIndex() uint32
	// CommandTarget is the recording context pushes are applied to. Only
	// valid between BeginFrame and EndFrame.
	CommandTarget() binding.PushTarget

	NegotiateBinding() (*binding.Capabilities, error)
	CreateBindingLayout(layout *binding.Layout) (binding.LayoutRef, error)
	DestroyBindingLayout(ref binding.LayoutRef)
	CreatePipeline(config *PipelineConfig) (*Pipeline, error)
	DestroyPipeline(pipeline *Pipeline)
	BindPipeline(pipeline *Pipeline)

	// BlobLayout reports the backend's per-draw record shape: the template
	// entries and the record size, with offsets taken from the backend's
	// device-compatible struct.
	BlobLayout() ([]binding.Entry, uintptr)
	// AssembleBlob fills the backend's scratch record for one draw and
	// returns a pointer to it. The pointer is valid until the next
	// AssembleBlob call; push commands consume the data at record time.
	AssembleBlob(scene, object BufferRegion, texture *metadata.Texture) (unsafe.Pointer, error)

	CreateUniformBuffer(name string, size uintptr) (UniformBuffer, error)
	TextureCreate(pixels []uint8, texture *metadata.Texture) error
	TextureDestroy(texture *metadata.Texture)
	CreateCubeGeometry(name string, dimension float32) (*metadata.Geometry, error)
	DestroyGeometry(geometry *metadata.Geometry)
	DrawGeometry(geometry *metadata.Geometry)
}
