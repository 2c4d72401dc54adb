package renderer

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/binding"
)

// Binding slots shared with the shaders: two uniform buffers in the vertex
// stage, one combined image sampler in the fragment stage, all in set 0.
const (
	SlotSceneUniform   uint32 = 0
	SlotObjectUniform  uint32 = 1
	SlotObjectTexture  uint32 = 2
	DescriptorSetIndex uint32 = 0
)

// SceneUniform is the per-frame camera data, laid out as the shaders expect.
type SceneUniform struct {
	Projection math.Mat4
	View       math.Mat4
}

// ObjectUniform is the per-object world transform.
type ObjectUniform struct {
	Model math.Mat4
}

// Renderer is the front-end that owns the scene and drives the backend. All
// descriptor state flows through push calls; no descriptor sets are
// allocated anywhere.
type Renderer struct {
	backend    RendererBackend
	caps       *binding.Capabilities
	dispatcher *binding.Dispatcher
	layout     *binding.Layout
	layoutRef  binding.LayoutRef
	pipeline   *Pipeline
	template   *binding.Template

	camera       *Camera
	objects      []*RenderObject
	sceneUniform UniformBuffer

	// Monotonic push call counter; its parity selects the dispatch path.
	pushCalls uint64

	width    uint32
	height   uint32
	prepared bool
	// Toggled from the input event goroutine while DrawFrame reads them.
	animate atomic.Bool
	paused  atomic.Bool
}

func NewRenderer(backend RendererBackend) *Renderer {
	r := &Renderer{
		backend: backend,
	}
	r.animate.Store(true)
	return r
}

// Initialize brings up the backend and resolves the whole binding mechanism:
// capability negotiation, binding layout, pipeline and update template. Any
// failure here is fatal for the application; there is no fallback path.
func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	r.width = appWidth
	r.height = appHeight

	if err := r.backend.Initialize(appName, appWidth, appHeight); err != nil {
		return err
	}

	caps, err := r.backend.NegotiateBinding()
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.caps = caps
	r.dispatcher = binding.NewDispatcher(caps)
	core.LogInfo("Push bindings negotiated, max %d descriptors per push.", caps.Limits().MaxPushDescriptors)

	layout, err := binding.NewLayout([]binding.Slot{
		{Index: SlotSceneUniform, Kind: binding.ResourceKindUniformBuffer, Stages: binding.StageVertex},
		{Index: SlotObjectUniform, Kind: binding.ResourceKindUniformBuffer, Stages: binding.StageVertex},
		{Index: SlotObjectTexture, Kind: binding.ResourceKindCombinedImageSampler, Stages: binding.StageFragment},
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.layout = layout

	layoutRef, err := r.backend.CreateBindingLayout(layout)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.layoutRef = layoutRef

	pipeline, err := r.backend.CreatePipeline(&PipelineConfig{
		VertexShaderFile:   "assets/shaders/cube.vert.spv",
		FragmentShaderFile: "assets/shaders/cube.frag.spv",
		BindingLayout:      layout,
		BindingLayoutRef:   layoutRef,
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.pipeline = pipeline

	entries, blobSize := r.backend.BlobLayout()
	template, err := binding.Build(caps, &binding.BuildConfig{
		Layout:         layout,
		LayoutRef:      layoutRef,
		PipelineLayout: pipeline.Layout,
		BindPoint:      binding.BindPointGraphics,
		Set:            DescriptorSetIndex,
		BlobSize:       blobSize,
		Entries:        entries,
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.template = template

	return nil
}

// PrepareScene uploads the scene resources: one uniform buffer for the
// camera, and per object a uniform buffer, a texture and a cube mesh. Only
// after this succeeds may DrawFrame run.
func (r *Renderer) PrepareScene(camera *Camera, objects []*RenderObject) error {
	if r.template == nil {
		return core.ErrBindingUnavailable
	}

	camera.SetAspect(r.width, r.height)
	r.camera = camera

	sceneUniform, err := r.backend.CreateUniformBuffer("scene", unsafe.Sizeof(SceneUniform{}))
	if err != nil {
		return err
	}
	r.sceneUniform = sceneUniform

	for _, obj := range objects {
		uniform, err := r.backend.CreateUniformBuffer(obj.Name, unsafe.Sizeof(ObjectUniform{}))
		if err != nil {
			return err
		}
		obj.uniform = uniform

		if obj.Texture == nil {
			return fmt.Errorf("object '%s' has no texture", obj.Name)
		}
		if err := r.backend.TextureCreate(obj.Pixels, obj.Texture); err != nil {
			return err
		}
		obj.Pixels = nil

		geometry, err := r.backend.CreateCubeGeometry(obj.Name, 1.0)
		if err != nil {
			return err
		}
		obj.geometry = geometry
	}

	r.objects = objects
	r.prepared = true
	core.LogInfo("Scene prepared with %d objects.", len(objects))
	return nil
}

// SetAnimate enables or disables object rotation.
func (r *Renderer) SetAnimate(animate bool) {
	r.animate.Store(animate)
}

// TogglePause flips the pause state and reports the new value.
func (r *Renderer) TogglePause() bool {
	paused := !r.paused.Load()
	r.paused.Store(paused)
	return paused
}

func (r *Renderer) OnResize(width, height uint16) error {
	r.width = uint32(width)
	r.height = uint32(height)
	if r.camera != nil {
		r.camera.SetAspect(r.width, r.height)
	}
	return r.backend.Resized(width, height)
}

// DrawFrame records and submits one frame. Each object gets exactly one push
// call carrying all three descriptors; the running call counter alternates
// the dispatch path between the direct and the structured variant.
func (r *Renderer) DrawFrame(deltaTime float64) error {
	if !r.prepared {
		return core.ErrNotPrepared
	}

	if err := r.backend.BeginFrame(deltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return nil
		}
		core.LogError(err.Error())
		return err
	}

	frame := r.backend.FrameIndex()

	scene := SceneUniform{
		Projection: r.camera.Projection(),
		View:       r.camera.View(),
	}
	if err := r.sceneUniform.Write(frame, unsafe.Pointer(&scene), unsafe.Sizeof(scene)); err != nil {
		return err
	}

	r.backend.BindPipeline(r.pipeline)
	target := r.backend.CommandTarget()

	animate := r.animate.Load() && !r.paused.Load()
	for _, obj := range r.objects {
		if animate {
			obj.Advance(deltaTime)
		}

		object := ObjectUniform{Model: obj.ModelMatrix()}
		if err := obj.uniform.Write(frame, unsafe.Pointer(&object), unsafe.Sizeof(object)); err != nil {
			return err
		}

		blob, err := r.backend.AssembleBlob(r.sceneUniform.Region(frame), obj.uniform.Region(frame), obj.Texture)
		if err != nil {
			return err
		}
		if err := r.dispatcher.Push(target, r.template, r.pushCalls, blob); err != nil {
			core.LogError(err.Error())
			return err
		}
		r.pushCalls++

		r.backend.DrawGeometry(obj.geometry)
	}

	return r.backend.EndFrame(deltaTime)
}

// PushCalls reports how many push calls have been recorded since startup.
func (r *Renderer) PushCalls() uint64 {
	return r.pushCalls
}

// Shutdown releases the scene and the binding objects, then tears the
// backend down. Safe to call after a partial Initialize.
func (r *Renderer) Shutdown() error {
	if err := r.backend.WaitIdle(); err != nil {
		core.LogWarn(err.Error())
	}

	for _, obj := range r.objects {
		if obj.geometry != nil {
			r.backend.DestroyGeometry(obj.geometry)
			obj.geometry = nil
		}
		if obj.Texture != nil {
			r.backend.TextureDestroy(obj.Texture)
		}
		if obj.uniform != nil {
			obj.uniform.Destroy()
			obj.uniform = nil
		}
	}
	r.objects = nil

	if r.sceneUniform != nil {
		r.sceneUniform.Destroy()
		r.sceneUniform = nil
	}
	if r.template != nil {
		r.template.Destroy()
		r.template = nil
	}
	if r.pipeline != nil {
		r.backend.DestroyPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.layoutRef != nil {
		r.backend.DestroyBindingLayout(r.layoutRef)
		r.layoutRef = nil
	}
	r.prepared = false

	return r.backend.Shutdown()
}
