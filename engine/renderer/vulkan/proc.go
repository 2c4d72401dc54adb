package vulkan

/*
#include <stdint.h>
#include <stdlib.h>

typedef void (*PFN_voidFunction)(void);
typedef PFN_voidFunction (*PFN_getInstanceProcAddr)(void* instance, const char* pName);
typedef PFN_voidFunction (*PFN_getDeviceProcAddr)(void* device, const char* pName);

// Host mirrors of VkDescriptorUpdateTemplateEntry and
// VkDescriptorUpdateTemplateCreateInfo. Field order and widths reproduce the
// driver ABI on 64-bit platforms, with enums as uint32_t and handles as
// uint64_t.
typedef struct {
	uint32_t dstBinding;
	uint32_t dstArrayElement;
	uint32_t descriptorCount;
	uint32_t descriptorType;
	size_t   offset;
	size_t   stride;
} updateTemplateEntry;

typedef struct {
	uint32_t                   sType;
	const void*                pNext;
	uint32_t                   flags;
	uint32_t                   descriptorUpdateEntryCount;
	const updateTemplateEntry* pDescriptorUpdateEntries;
	uint32_t                   templateType;
	uint64_t                   descriptorSetLayout;
	uint32_t                   pipelineBindPoint;
	uint64_t                   pipelineLayout;
	uint32_t                   set;
} updateTemplateCreateInfo;

typedef int32_t (*PFN_createDescriptorUpdateTemplate)(void* device, const updateTemplateCreateInfo* pCreateInfo, const void* pAllocator, uint64_t* pDescriptorUpdateTemplate);
typedef void (*PFN_destroyDescriptorUpdateTemplate)(void* device, uint64_t descriptorUpdateTemplate, const void* pAllocator);
typedef void (*PFN_cmdPushDescriptorSetWithTemplate)(void* commandBuffer, uint64_t descriptorUpdateTemplate, uint64_t layout, uint32_t set, const void* pData);

static uintptr_t lookupDeviceProcAddr(uintptr_t getInstanceProcAddr, void* instance, void* device, const char* name) {
	PFN_getInstanceProcAddr gipa = (PFN_getInstanceProcAddr)getInstanceProcAddr;
	PFN_getDeviceProcAddr gdpa = (PFN_getDeviceProcAddr)gipa(instance, "vkGetDeviceProcAddr");
	if (gdpa == NULL) {
		return 0;
	}
	return (uintptr_t)gdpa(device, name);
}

static int32_t createDescriptorUpdateTemplateProc(uintptr_t fn, void* device, const updateTemplateCreateInfo* info, uint64_t* out) {
	return ((PFN_createDescriptorUpdateTemplate)fn)(device, info, NULL, out);
}

static void destroyDescriptorUpdateTemplateProc(uintptr_t fn, void* device, uint64_t tmpl) {
	((PFN_destroyDescriptorUpdateTemplate)fn)(device, tmpl, NULL);
}

static void cmdPushDescriptorSetWithTemplateProc(uintptr_t fn, void* commandBuffer, uint64_t tmpl, uint64_t layout, uint32_t set, const void* data) {
	((PFN_cmdPushDescriptorSetWithTemplate)fn)(commandBuffer, tmpl, layout, set, data);
}
*/
import "C"

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/renderer/binding"
)

// descriptorUpdateTemplate is the device template handle. The wrapper does
// not bind the template entry points, so the handle is carried as the raw
// 64-bit value the driver returned.
type descriptorUpdateTemplate uint64

// lookupDeviceProc chains vkGetInstanceProcAddr into vkGetDeviceProcAddr and
// returns the first of the given names the device resolves, or zero.
func lookupDeviceProc(getInstanceProcAddr unsafe.Pointer, instance vk.Instance, device vk.Device, names ...string) uintptr {
	if getInstanceProcAddr == nil {
		return 0
	}
	for _, name := range names {
		cname := C.CString(name)
		fn := C.lookupDeviceProcAddr(
			C.uintptr_t(uintptr(getInstanceProcAddr)),
			unsafe.Pointer(instance),
			unsafe.Pointer(device),
			cname)
		C.free(unsafe.Pointer(cname))
		if fn != 0 {
			return uintptr(fn)
		}
	}
	return 0
}

func callCreateDescriptorUpdateTemplate(fn uintptr, device vk.Device, info *binding.DeviceTemplateInfo, setLayout vk.DescriptorSetLayout, pipelineLayout vk.PipelineLayout) (descriptorUpdateTemplate, vk.Result) {
	count := len(info.Entries)
	entrySize := unsafe.Sizeof(C.updateTemplateEntry{})
	centries := (*C.updateTemplateEntry)(C.malloc(C.size_t(uintptr(count) * entrySize)))
	defer C.free(unsafe.Pointer(centries))

	entries := unsafe.Slice(centries, count)
	for i, e := range info.Entries {
		descriptorCount := e.Count
		if descriptorCount == 0 {
			descriptorCount = 1
		}
		entries[i] = C.updateTemplateEntry{
			dstBinding:      C.uint32_t(e.Slot),
			dstArrayElement: C.uint32_t(e.ArrayElement),
			descriptorCount: C.uint32_t(descriptorCount),
			descriptorType:  C.uint32_t(descriptorTypeFromKind(e.Kind)),
			offset:          C.size_t(e.Offset),
			stride:          C.size_t(e.Stride),
		}
	}

	createInfo := C.updateTemplateCreateInfo{
		sType:                      C.uint32_t(vk.StructureTypeDescriptorUpdateTemplateCreateInfo),
		descriptorUpdateEntryCount: C.uint32_t(count),
		pDescriptorUpdateEntries:   centries,
		templateType:               C.uint32_t(vk.DescriptorUpdateTemplateTypePushDescriptors),
		descriptorSetLayout:        C.uint64_t(uintptr(unsafe.Pointer(setLayout))),
		pipelineBindPoint:          C.uint32_t(pipelineBindPointFromBindPoint(info.BindPoint)),
		pipelineLayout:             C.uint64_t(uintptr(unsafe.Pointer(pipelineLayout))),
		set:                        C.uint32_t(info.Set),
	}

	var out C.uint64_t
	res := C.createDescriptorUpdateTemplateProc(C.uintptr_t(fn), unsafe.Pointer(device), &createInfo, &out)
	return descriptorUpdateTemplate(out), vk.Result(res)
}

func callDestroyDescriptorUpdateTemplate(fn uintptr, device vk.Device, template descriptorUpdateTemplate) {
	C.destroyDescriptorUpdateTemplateProc(C.uintptr_t(fn), unsafe.Pointer(device), C.uint64_t(template))
}

func callCmdPushDescriptorSetWithTemplate(fn uintptr, commandBuffer vk.CommandBuffer, template descriptorUpdateTemplate, layout vk.PipelineLayout, set uint32, data unsafe.Pointer) {
	C.cmdPushDescriptorSetWithTemplateProc(
		C.uintptr_t(fn),
		unsafe.Pointer(commandBuffer),
		C.uint64_t(template),
		C.uint64_t(uintptr(unsafe.Pointer(layout))),
		C.uint32_t(set),
		data)
}
