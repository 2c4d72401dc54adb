package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/binding"
)

// bufferDescriptor is the host record a uniform buffer template entry reads.
// Field order and sizes match VkDescriptorBufferInfo.
type bufferDescriptor struct {
	Buffer vk.Buffer
	Offset vk.DeviceSize
	Range  vk.DeviceSize
}

// imageDescriptor is the host record a combined image sampler template entry
// reads. Field order and sizes match VkDescriptorImageInfo.
type imageDescriptor struct {
	Sampler     vk.Sampler
	ImageView   vk.ImageView
	ImageLayout vk.ImageLayout
}

// descriptorData is the per-draw blob pushed for every geometry. One record
// per binding slot of the scene pipeline.
type descriptorData struct {
	Scene   bufferDescriptor
	Object  bufferDescriptor
	Texture imageDescriptor
}

// bindingResolver exposes the device's push binding entry points behind the
// renderer's capability negotiation. The entry points live in the extensions,
// not the core command table, so they are looked up once at construction
// through vkGetDeviceProcAddr; a zero function means the capability is
// absent and the corresponding Resolve reports false.
type bindingResolver struct {
	context *VulkanContext
	limits  binding.Limits

	createTemplate  uintptr
	destroyTemplate uintptr
	pushTemplate    uintptr
}

func newBindingResolver(context *VulkanContext, getInstanceProcAddr unsafe.Pointer) *bindingResolver {
	r := &bindingResolver{context: context}

	r.limits.MaxPushDescriptors = context.Device.MaxPushDescriptors
	r.limits.DescriptorSizes[binding.ResourceKindUniformBuffer] = unsafe.Sizeof(bufferDescriptor{})
	r.limits.DescriptorSizes[binding.ResourceKindCombinedImageSampler] = unsafe.Sizeof(imageDescriptor{})

	physicalDevice := context.Device.PhysicalDevice
	if !deviceHasExtension(physicalDevice, pushDescriptorExtensionName) ||
		!deviceHasExtension(physicalDevice, descriptorUpdateTemplateExtensionName) {
		return r
	}

	device := context.Device.LogicalDevice
	r.createTemplate = lookupDeviceProc(getInstanceProcAddr, context.Instance, device,
		"vkCreateDescriptorUpdateTemplateKHR", "vkCreateDescriptorUpdateTemplate")
	r.destroyTemplate = lookupDeviceProc(getInstanceProcAddr, context.Instance, device,
		"vkDestroyDescriptorUpdateTemplateKHR", "vkDestroyDescriptorUpdateTemplate")
	r.pushTemplate = lookupDeviceProc(getInstanceProcAddr, context.Instance, device,
		"vkCmdPushDescriptorSetWithTemplateKHR")
	return r
}

func (r *bindingResolver) ResolveCreateTemplate() (binding.CreateTemplateFunc, bool) {
	if r.createTemplate == 0 {
		return nil, false
	}
	fn := r.createTemplate
	device := r.context.Device.LogicalDevice
	return func(info *binding.DeviceTemplateInfo) (binding.TemplateRef, error) {
		template, res := callCreateDescriptorUpdateTemplate(
			fn,
			device,
			info,
			info.Layout.(vk.DescriptorSetLayout),
			info.PipelineLayout.(vk.PipelineLayout))
		if res != vk.Success {
			err := fmt.Errorf("vkCreateDescriptorUpdateTemplate failed with %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return nil, err
		}
		return template, nil
	}, true
}

func (r *bindingResolver) ResolveDestroyTemplate() (binding.DestroyTemplateFunc, bool) {
	if r.destroyTemplate == 0 {
		return nil, false
	}
	fn := r.destroyTemplate
	device := r.context.Device.LogicalDevice
	return func(ref binding.TemplateRef) {
		callDestroyDescriptorUpdateTemplate(fn, device, ref.(descriptorUpdateTemplate))
	}, true
}

func (r *bindingResolver) ResolvePushDirect() (binding.PushDirectFunc, bool) {
	if r.pushTemplate == 0 {
		return nil, false
	}
	fn := r.pushTemplate
	return func(target binding.PushTarget, template binding.TemplateRef, layout binding.PipelineLayoutRef, set uint32, data unsafe.Pointer) {
		commandBuffer := target.(*VulkanCommandBuffer)
		callCmdPushDescriptorSetWithTemplate(
			fn,
			commandBuffer.Handle,
			template.(descriptorUpdateTemplate),
			layout.(vk.PipelineLayout),
			set,
			data)
	}, true
}

func (r *bindingResolver) ResolvePushStructured() (binding.PushStructuredFunc, bool) {
	if r.pushTemplate == 0 {
		return nil, false
	}
	fn := r.pushTemplate
	// The driver exposes a single template push entry point, so the record
	// is unpacked here at resolve level rather than per call.
	return func(target binding.PushTarget, info *binding.PushInfo) {
		commandBuffer := target.(*VulkanCommandBuffer)
		callCmdPushDescriptorSetWithTemplate(
			fn,
			commandBuffer.Handle,
			info.Template.(descriptorUpdateTemplate),
			info.Layout.(vk.PipelineLayout),
			info.Set,
			info.Data)
	}, true
}

func (r *bindingResolver) Limits() binding.Limits {
	return r.limits
}

// createPushDescriptorSetLayout builds the set layout the update templates
// reference. The push flag is what lets pipelines consume the set without a
// descriptor pool behind it.
func createPushDescriptorSetLayout(context *VulkanContext, layout *binding.Layout) (vk.DescriptorSetLayout, error) {
	slots := layout.Slots()
	bindings := make([]vk.DescriptorSetLayoutBinding, len(slots))
	for i, s := range slots {
		b := vk.DescriptorSetLayoutBinding{
			Binding:         s.Index,
			DescriptorType:  descriptorTypeFromKind(s.Kind),
			DescriptorCount: 1,
			StageFlags:      shaderStageFlagsFromStages(s.Stages),
		}
		b.Deref()
		bindings[i] = b
	}

	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		Flags:        vk.DescriptorSetLayoutCreateFlags(vk.DescriptorSetLayoutCreatePushDescriptorBit),
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	createInfo.Deref()

	var setLayout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(
		context.Device.LogicalDevice,
		&createInfo,
		context.Allocator,
		&setLayout); res != vk.Success {
		err := fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullDescriptorSetLayout, err
	}
	return setLayout, nil
}

func descriptorTypeFromKind(kind binding.ResourceKind) vk.DescriptorType {
	switch kind {
	case binding.ResourceKindUniformBuffer:
		return vk.DescriptorTypeUniformBuffer
	case binding.ResourceKindCombinedImageSampler:
		return vk.DescriptorTypeCombinedImageSampler
	}
	return vk.DescriptorTypeMaxEnum
}

func shaderStageFlagsFromStages(stages binding.StageFlags) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if stages&binding.StageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&binding.StageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return flags
}

func pipelineBindPointFromBindPoint(bindPoint binding.BindPoint) vk.PipelineBindPoint {
	if bindPoint == binding.BindPointCompute {
		return vk.PipelineBindPointCompute
	}
	return vk.PipelineBindPointGraphics
}
