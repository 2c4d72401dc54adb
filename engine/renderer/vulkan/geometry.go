package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/math"
)

// VulkanGeometry holds the device-local vertex and index buffers of one
// uploaded mesh.
type VulkanGeometry struct {
	VertexCount  uint32
	IndexCount   uint32
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
}

// GeometryCreateCube generates a unit-style cube of the given edge length,
// four vertices per face so each face gets its own normal and texcoords,
// and uploads it through a staging buffer.
func GeometryCreateCube(context *VulkanContext, dimension float32) (*VulkanGeometry, error) {
	h := dimension * 0.5
	white := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}

	type face struct {
		normal math.Vec3
		// Corner positions in texcoord order (0,0), (1,0), (1,1), (0,1).
		corners [4]math.Vec3
	}
	faces := []face{
		{math.NewVec3(0, 0, 1), [4]math.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		{math.NewVec3(0, 0, -1), [4]math.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}},
		{math.NewVec3(-1, 0, 0), [4]math.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}},
		{math.NewVec3(1, 0, 0), [4]math.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},
		{math.NewVec3(0, 1, 0), [4]math.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		{math.NewVec3(0, -1, 0), [4]math.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}},
	}
	texcoords := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	vertices := make([]math.Vertex3D, 0, len(faces)*4)
	indices := make([]uint32, 0, len(faces)*6)
	for f, fc := range faces {
		base := uint32(f * 4)
		for c := 0; c < 4; c++ {
			vertices = append(vertices, math.Vertex3D{
				Position: fc.corners[c],
				Normal:   fc.normal,
				Texcoord: texcoords[c],
				Colour:   white,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	geometry := &VulkanGeometry{
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	}

	vertexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(vertices[0])))
	vertexBuffer, err := uploadDeviceLocal(context, vertexBytes, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, err
	}
	geometry.VertexBuffer = vertexBuffer

	indexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
	indexBuffer, err := uploadDeviceLocal(context, indexBytes, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		geometry.VertexBuffer.BufferDestroy(context)
		return nil, err
	}
	geometry.IndexBuffer = indexBuffer

	core.LogDebug("Cube geometry uploaded: %d vertices, %d indices.", geometry.VertexCount, geometry.IndexCount)
	return geometry, nil
}

// uploadDeviceLocal stages the payload in a host-visible buffer and copies
// it into a fresh device-local buffer.
func uploadDeviceLocal(context *VulkanContext, payload []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := uint64(len(payload))

	staging, err := BufferCreate(
		context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		uint32(vk.MemoryPropertyHostVisibleBit)|uint32(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.BufferDestroy(context)

	if err := staging.BufferLoadData(context, 0, size, payload); err != nil {
		return nil, err
	}

	buffer, err := BufferCreate(
		context,
		size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		uint32(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	if err := staging.BufferCopyTo(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue, buffer, 0, 0, size); err != nil {
		buffer.BufferDestroy(context)
		return nil, err
	}
	return buffer, nil
}

func (vg *VulkanGeometry) GeometryDestroy(context *VulkanContext) {
	if vg.VertexBuffer != nil {
		vg.VertexBuffer.BufferDestroy(context)
		vg.VertexBuffer = nil
	}
	if vg.IndexBuffer != nil {
		vg.IndexBuffer.BufferDestroy(context)
		vg.IndexBuffer = nil
	}
}

func (vg *VulkanGeometry) GeometryDraw(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{vg.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, vg.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(commandBuffer.Handle, vg.IndexCount, 1, 0, 0, 0)
}
