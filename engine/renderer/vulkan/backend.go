package vulkan

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/platform"
	"github.com/spaghettifunk/prisma/engine/renderer"
	"github.com/spaghettifunk/prisma/engine/renderer/binding"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type VulkanRenderer struct {
	platform                *platform.Platform
	FrameNumber             uint64
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	resolver *bindingResolver
	// Scratch record reused for every draw; push commands consume its
	// contents at record time.
	blob descriptorData

	debug bool
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform:    p,
		FrameNumber: 0,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
		},
		cachedFramebufferWidth:  0,
		cachedFramebufferHeight: 0,
		debug:                   true,
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.Allocator = nil
	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Prisma Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogInfo("Required extensions:")
		for i := 0; i < len(requiredExtensions); i++ {
			core.LogInfo(requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers should only be enabled on non-release builds.
	requiredValidationLayerNames := []string{}
	if vr.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			err := fmt.Errorf("failed to enumerate instance layers with %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			err := fmt.Errorf("failed to enumerate instance layers with %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}

		for i := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if requiredValidationLayerNames[i] == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				err := fmt.Errorf("required validation layer is missing: %s", requiredValidationLayerNames[i])
				core.LogError(err.Error())
				return err
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	// Debugger
	if vr.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
			PNext:       nil,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		err := fmt.Errorf("failed to create platform surface: %w", err)
		core.LogError(err.Error())
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("Failed to create device!")
		return err
	}
	vr.resolver = newBindingResolver(vr.context, procAddr)

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	// Create sync objects.
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.InFlightFences = make([]*VulkanFence, vr.context.Swapchain.MaxFramesInFlight)

	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			err := fmt.Errorf("failed to create semaphore on image available")
			core.LogError(err.Error())
			return err
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			err := fmt.Errorf("failed to create semaphore on queue complete")
			core.LogError(err.Error())
			return err
		}

		// Create the fence in a signaled state so the first frame does not
		// wait on a frame that was never submitted.
		f, err := NewFence(vr.context, true)
		if err != nil {
			core.LogError(err.Error())
			return err
		}
		vr.context.InFlightFences[i] = f
	}

	// Images-in-flight fences start out empty; entries point at in-flight
	// fences while their image is owned by a frame.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.ImagesInFlight[i] = nil
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(
				vr.context.Device.LogicalDevice,
				vr.context.ImageAvailableSemaphores[i],
				vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(
				vr.context.Device.LogicalDevice,
				vr.context.QueueCompleteSemaphores[i],
				vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}

	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil

	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		if vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
			vr.context.GraphicsCommandBuffers[i].Handle = nil
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	vr.context.MainRenderpass.RenderpassDestroy(vr.context)
	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug {
		core.LogDebug("Destroying Vulkan debugger...")
		if vr.context.debugMessenger != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		}
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)

	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint16) error {
	// Bump the framebuffer size generation; BeginFrame recreates the
	// swapchain when the generations diverge.
	vr.cachedFramebufferWidth = uint32(width)
	vr.cachedFramebufferHeight = uint32(height)
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	device := vr.context.Device

	// Check if recreating swap chain and boot out.
	if vr.context.RecreatingSwapchain {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("begin frame vkDeviceWaitIdle (1) failed: '%s'", VulkanResultString(result, true))
			core.LogError(err.Error())
			return err
		}
		core.LogInfo("Recreating swapchain, booting.")
		return core.ErrSwapchainBooting
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("begin frame vkDeviceWaitIdle (2) failed: '%s'", VulkanResultString(result, true))
			core.LogError(err.Error())
			return err
		}

		// If recreation failed (for example a minimized window), boot out
		// before unsetting the flag.
		if !vr.recreateSwapchain() {
			err := fmt.Errorf("failed to recreate the swapchain")
			core.LogError(err.Error())
			return err
		}

		core.LogInfo("Resized, booting.")
		return core.ErrSwapchainBooting
	}

	// Wait for the execution of the current frame to complete. Once the
	// fence is free this frame's uniform regions may be rewritten.
	if !vr.context.InFlightFences[vr.context.CurrentFrame].FenceWait(vr.context, math.MaxUint64) {
		err := fmt.Errorf("in-flight fence wait failure")
		core.LogWarn(err.Error())
		return err
	}

	// Acquire the next image from the swap chain. The semaphore signaled on
	// completion is waited on by the queue submission.
	imageIndex, ok := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, math.MaxUint64, vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame], vk.NullFence)
	if !ok {
		err := fmt.Errorf("failed to acquire next swapchain image index")
		core.LogError(err.Error())
		return err
	}
	vr.context.ImageIndex = imageIndex

	// Begin recording commands.
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	commandBuffer.Reset()
	commandBuffer.Begin(false, false, false)

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{
			X: 0,
			Y: 0,
		},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}

	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)

	return nil
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	commandBuffer.End()

	// Make sure the previous frame is not still using this image.
	if vr.context.ImagesInFlight[vr.context.ImageIndex] != nil {
		vr.context.ImagesInFlight[vr.context.ImageIndex].FenceWait(vr.context, math.MaxUint64)
	}

	// Mark the image fence as in-use by this frame.
	vr.context.ImagesInFlight[vr.context.ImageIndex] = vr.context.InFlightFences[vr.context.CurrentFrame]

	// Reset the fence for use on the next frame
	vr.context.InFlightFences[vr.context.CurrentFrame].FenceReset(vr.context)

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		// Colour attachment writes must wait for the image to be available.
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[vr.context.CurrentFrame].Handle); result != vk.Success {
		err := fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}

	commandBuffer.UpdateSubmitted()
	vr.FrameNumber++

	// Give the image back to the swapchain.
	vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.GraphicsQueue,
		vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame],
		vr.context.ImageIndex)

	return nil
}

func (vr *VulkanRenderer) WaitIdle() error {
	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
		err := fmt.Errorf("vkDeviceWaitIdle failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vr *VulkanRenderer) FramesInFlight() uint32 {
	return uint32(vr.context.Swapchain.MaxFramesInFlight)
}

func (vr *VulkanRenderer) FrameIndex() uint32 {
	return vr.context.CurrentFrame
}

func (vr *VulkanRenderer) CommandTarget() binding.PushTarget {
	return vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
}

func (vr *VulkanRenderer) NegotiateBinding() (*binding.Capabilities, error) {
	return binding.Negotiate(vr.resolver)
}

func (vr *VulkanRenderer) CreateBindingLayout(layout *binding.Layout) (binding.LayoutRef, error) {
	return createPushDescriptorSetLayout(vr.context, layout)
}

func (vr *VulkanRenderer) DestroyBindingLayout(ref binding.LayoutRef) {
	if ref == nil {
		return
	}
	vk.DestroyDescriptorSetLayout(vr.context.Device.LogicalDevice, ref.(vk.DescriptorSetLayout), vr.context.Allocator)
}

func (vr *VulkanRenderer) CreatePipeline(config *renderer.PipelineConfig) (*renderer.Pipeline, error) {
	vertModule, vertStage, err := NewShaderModule(vr.context, config.VertexShaderFile, vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(vr.context.Device.LogicalDevice, vertModule, vr.context.Allocator)

	fragModule, fragStage, err := NewShaderModule(vr.context, config.FragmentShaderFile, vk.ShaderStageFragmentBit)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(vr.context.Device.LogicalDevice, fragModule, vr.context.Allocator)

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight},
	}

	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass:           vr.context.MainRenderpass,
		Stride:               uint32(vertexStride),
		Attributes:           vertexAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{config.BindingLayoutRef.(vk.DescriptorSetLayout)},
		Stages:               []vk.PipelineShaderStageCreateInfo{vertStage, fragStage},
		Viewport:             viewport,
		Scissor:              scissor,
		IsWireframe:          false,
	})
	if err != nil {
		return nil, err
	}

	return &renderer.Pipeline{
		Handle: pipeline,
		Layout: pipeline.PipelineLayout,
	}, nil
}

func (vr *VulkanRenderer) DestroyPipeline(pipeline *renderer.Pipeline) {
	if pipeline == nil || pipeline.Handle == nil {
		return
	}
	pipeline.Handle.(*VulkanPipeline).Destroy(vr.context)
}

func (vr *VulkanRenderer) BindPipeline(pipeline *renderer.Pipeline) {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	pipeline.Handle.(*VulkanPipeline).Bind(commandBuffer, vk.PipelineBindPointGraphics)
}

func (vr *VulkanRenderer) BlobLayout() ([]binding.Entry, uintptr) {
	size := unsafe.Sizeof(descriptorData{})
	entries := []binding.Entry{
		{
			Slot:   renderer.SlotSceneUniform,
			Kind:   binding.ResourceKindUniformBuffer,
			Offset: unsafe.Offsetof(descriptorData{}.Scene),
			Stride: size,
		},
		{
			Slot:   renderer.SlotObjectUniform,
			Kind:   binding.ResourceKindUniformBuffer,
			Offset: unsafe.Offsetof(descriptorData{}.Object),
			Stride: size,
		},
		{
			Slot:   renderer.SlotObjectTexture,
			Kind:   binding.ResourceKindCombinedImageSampler,
			Offset: unsafe.Offsetof(descriptorData{}.Texture),
			Stride: size,
		},
	}
	return entries, size
}

func (vr *VulkanRenderer) AssembleBlob(scene, object renderer.BufferRegion, texture *metadata.Texture) (unsafe.Pointer, error) {
	if texture == nil || texture.InternalData == nil {
		err := fmt.Errorf("cannot assemble draw data without an uploaded texture")
		core.LogError(err.Error())
		return nil, err
	}
	vulkanTexture, ok := texture.InternalData.(*VulkanTexture)
	if !ok {
		err := fmt.Errorf("texture '%s' does not carry vulkan data", texture.Name)
		core.LogError(err.Error())
		return nil, err
	}

	vr.blob.Scene = bufferDescriptor{
		Buffer: scene.Buffer.(vk.Buffer),
		Offset: vk.DeviceSize(scene.Offset),
		Range:  vk.DeviceSize(scene.Size),
	}
	vr.blob.Object = bufferDescriptor{
		Buffer: object.Buffer.(vk.Buffer),
		Offset: vk.DeviceSize(object.Offset),
		Range:  vk.DeviceSize(object.Size),
	}
	vr.blob.Texture = imageDescriptor{
		Sampler:     vulkanTexture.Sampler,
		ImageView:   vulkanTexture.Image.View,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	return unsafe.Pointer(&vr.blob), nil
}

func (vr *VulkanRenderer) CreateUniformBuffer(name string, size uintptr) (renderer.UniformBuffer, error) {
	return UniformBufferCreate(vr.context, name, size, uint32(vr.context.Swapchain.MaxFramesInFlight))
}

func (vr *VulkanRenderer) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	imageSize := uint64(texture.Width) * uint64(texture.Height) * uint64(texture.ChannelCount)
	if uint64(len(pixels)) < imageSize {
		err := fmt.Errorf("texture '%s' has %d pixel bytes, needs %d", texture.Name, len(pixels), imageSize)
		core.LogError(err.Error())
		return err
	}

	imageFormat := vk.FormatR8g8b8a8Unorm

	// Staging buffer, load data into it.
	staging, err := BufferCreate(vr.context, imageSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer staging.BufferDestroy(vr.context)

	if err := staging.BufferLoadData(vr.context, 0, imageSize, pixels[:imageSize]); err != nil {
		return err
	}

	image, err := ImageCreate(
		vr.context,
		vk.ImageType2d,
		texture.Width,
		texture.Height,
		imageFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}

	pool := vr.context.Device.GraphicsCommandPool
	queue := vr.context.Device.GraphicsQueue
	tempBuffer, err := AllocateAndBeginSingleUse(vr.context, pool)
	if err != nil {
		return err
	}

	// Transition the layout to the optimal for receiving data, copy, then
	// transition to the optimal read layout.
	if err := image.ImageTransitionLayout(vr.context, tempBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		return err
	}
	image.ImageCopyFromBuffer(vr.context, staging.Handle, tempBuffer)
	if err := image.ImageTransitionLayout(vr.context, tempBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return err
	}
	if err := tempBuffer.EndSingleUse(vr.context, pool, queue); err != nil {
		return err
	}

	// Create a sampler for the texture
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           16,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	samplerInfo.Deref()

	var sampler vk.Sampler
	if res := vk.CreateSampler(vr.context.Device.LogicalDevice, &samplerInfo, vr.context.Allocator, &sampler); res != vk.Success {
		err := fmt.Errorf("error creating texture sampler: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	if texture.ID == uuid.Nil {
		texture.ID = uuid.New()
	}
	texture.InternalData = &VulkanTexture{
		Image:   image,
		Sampler: sampler,
	}
	texture.Generation++
	return nil
}

func (vr *VulkanRenderer) TextureDestroy(texture *metadata.Texture) {
	if texture == nil || texture.InternalData == nil {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	vulkanTexture := texture.InternalData.(*VulkanTexture)
	vulkanTexture.Image.ImageDestroy(vr.context)
	vk.DestroySampler(vr.context.Device.LogicalDevice, vulkanTexture.Sampler, vr.context.Allocator)

	texture.InternalData = nil
	texture.Generation = 0
}

func (vr *VulkanRenderer) CreateCubeGeometry(name string, dimension float32) (*metadata.Geometry, error) {
	geometry, err := GeometryCreateCube(vr.context, dimension)
	if err != nil {
		return nil, err
	}
	return &metadata.Geometry{
		ID:           uuid.New(),
		Name:         name,
		VertexCount:  geometry.VertexCount,
		IndexCount:   geometry.IndexCount,
		InternalData: geometry,
	}, nil
}

func (vr *VulkanRenderer) DestroyGeometry(geometry *metadata.Geometry) {
	if geometry == nil || geometry.InternalData == nil {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	geometry.InternalData.(*VulkanGeometry).GeometryDestroy(vr.context)
	geometry.InternalData = nil
}

func (vr *VulkanRenderer) DrawGeometry(geometry *metadata.Geometry) {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	geometry.InternalData.(*VulkanGeometry).GeometryDraw(commandBuffer)
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	if len(vr.context.GraphicsCommandBuffers) == 0 {
		vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.context.Swapchain.ImageCount)
	}
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
		vr.context.GraphicsCommandBuffers[i] = nil
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}

	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers(swapchain *VulkanSwapchain, renderpass *VulkanRenderpass) error {
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(vr.context, renderpass, vr.context.FramebufferWidth, vr.context.FramebufferHeight, uint32(len(attachments)), attachments)
		if err != nil {
			core.LogError("failed to execute framebuffer create function")
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() bool {
	// If already being recreated, do not try again.
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreate swapchain called when already recreating. Booting.")
		return false
	}

	// Detect if the window is too small to be drawn to
	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreate swapchain called when window is < 1 in a dimension. Booting.")
		return false
	}

	vr.context.RecreatingSwapchain = true

	// Wait for any operations to complete.
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Clear these out just in case.
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.ImagesInFlight[i] = nil
	}

	// Requery support
	DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, &vr.context.Device.SwapchainSupport)
	DeviceDetectDepthFormat(vr.context.Device)

	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return false
	}
	vr.context.Swapchain = sc

	// Sync the framebuffer size with the cached sizes.
	vr.context.FramebufferWidth = vr.cachedFramebufferWidth
	vr.context.FramebufferHeight = vr.cachedFramebufferHeight
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		vr.context.RecreatingSwapchain = false
		return false
	}
	if err := vr.createCommandBuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return false
	}

	vr.context.RecreatingSwapchain = false
	return true
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
