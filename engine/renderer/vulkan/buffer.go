package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer"
)

type VulkanBuffer struct {
	Handle    vk.Buffer
	Memory    vk.DeviceMemory
	TotalSize uint64
	Usage     vk.BufferUsageFlags
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryPropertyFlags uint32) (*VulkanBuffer, error) {
	outBuffer := &VulkanBuffer{
		TotalSize: size,
		Usage:     usage,
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var pBuffer vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &pBuffer); res != vk.Success {
		err := fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	outBuffer.Handle = pBuffer

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, outBuffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryPropertyFlags)
	if memoryType == -1 {
		err := fmt.Errorf("required memory type not found, buffer not valid")
		core.LogError(err.Error())
		return nil, err
	}

	memoryAllocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var pMemory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &memoryAllocateInfo, context.Allocator, &pMemory); res != vk.Success {
		err := fmt.Errorf("failed to allocate buffer memory")
		core.LogError(err.Error())
		return nil, err
	}
	outBuffer.Memory = pMemory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, outBuffer.Handle, outBuffer.Memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory")
		core.LogError(err.Error())
		return nil, err
	}

	return outBuffer, nil
}

func (vb *VulkanBuffer) BufferDestroy(context *VulkanContext) {
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	vb.TotalSize = 0
}

// BufferLoadData maps the buffer range, copies the payload and unmaps. The
// buffer must be host visible.
func (vb *VulkanBuffer) BufferLoadData(context *VulkanContext, offset, size uint64, data []byte) error {
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &pData); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory")
		core.LogError(err.Error())
		return err
	}
	vk.Memcopy(pData, data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

// BufferCopyTo records and submits a single-use transfer from this buffer
// into dest.
func (vb *VulkanBuffer) BufferCopyTo(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, dest *VulkanBuffer, srcOffset, dstOffset, size uint64) error {
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(srcOffset),
		DstOffset: vk.DeviceSize(dstOffset),
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cb.Handle, vb.Handle, dest.Handle, 1, []vk.BufferCopy{copyRegion})

	return cb.EndSingleUse(context, pool, queue)
}

// VulkanUniformBuffer is a persistently mapped host-visible buffer split
// into one region per frame in flight, each aligned to the device's minimum
// uniform offset alignment. Region reuse is gated by the frame fences, so a
// write never races the GPU reads of the previous frame using that region.
type VulkanUniformBuffer struct {
	ID         uuid.UUID
	Name       string
	buffer     *VulkanBuffer
	context    *VulkanContext
	mapped     unsafe.Pointer
	stride     uint64
	regionSize uint64
	regions    uint32
}

func UniformBufferCreate(context *VulkanContext, name string, size uintptr, regions uint32) (*VulkanUniformBuffer, error) {
	if regions == 0 {
		return nil, fmt.Errorf("uniform buffer '%s' needs at least one region", name)
	}

	align := context.Device.MinUniformBufferOffsetAlign
	stride := uint64(size)
	if align > 0 {
		stride = (stride + align - 1) / align * align
	}

	buffer, err := BufferCreate(
		context,
		stride*uint64(regions),
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		uint32(vk.MemoryPropertyHostVisibleBit)|uint32(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}

	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, buffer.Memory, 0, vk.DeviceSize(buffer.TotalSize), 0, &pData); res != vk.Success {
		buffer.BufferDestroy(context)
		err := fmt.Errorf("failed to map uniform buffer '%s'", name)
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanUniformBuffer{
		ID:         uuid.New(),
		Name:       name,
		buffer:     buffer,
		context:    context,
		mapped:     pData,
		stride:     stride,
		regionSize: uint64(size),
		regions:    regions,
	}, nil
}

func (ub *VulkanUniformBuffer) Write(region uint32, src unsafe.Pointer, size uintptr) error {
	if region >= ub.regions {
		return fmt.Errorf("uniform buffer '%s': region %d out of range", ub.Name, region)
	}
	if uint64(size) > ub.regionSize {
		return fmt.Errorf("uniform buffer '%s': write of %d bytes exceeds region size %d", ub.Name, size, ub.regionSize)
	}
	dst := unsafe.Add(ub.mapped, uintptr(region)*uintptr(ub.stride))
	vk.Memcopy(dst, unsafe.Slice((*byte)(src), size))
	return nil
}

func (ub *VulkanUniformBuffer) Region(region uint32) renderer.BufferRegion {
	return renderer.BufferRegion{
		Buffer: ub.buffer.Handle,
		Offset: uint64(region) * ub.stride,
		Size:   ub.regionSize,
	}
}

func (ub *VulkanUniformBuffer) Destroy() {
	if ub.buffer == nil {
		return
	}
	if ub.mapped != nil {
		vk.UnmapMemory(ub.context.Device.LogicalDevice, ub.buffer.Memory)
		ub.mapped = nil
	}
	ub.buffer.BufferDestroy(ub.context)
	ub.buffer = nil
}
