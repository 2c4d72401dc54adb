package binding

import (
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/prisma/engine/core"
)

// Backend-specific handles. The core never inspects these; it only threads
// them between the functions the device resolved.
type (
	// PushTarget is the active command recording context of the backend.
	PushTarget interface{}
	// TemplateRef is a device-side update template object.
	TemplateRef interface{}
	// PipelineLayoutRef is a device-side pipeline layout.
	PipelineLayoutRef interface{}
	// LayoutRef is a device-side binding layout object.
	LayoutRef interface{}
)

// BindPoint selects which pipeline kind a template targets.
type BindPoint uint8

const (
	BindPointGraphics BindPoint = iota
	BindPointCompute
)

// PushInfo packages the arguments of one binding call into a single record
// for the structured dispatch path.
type PushInfo struct {
	Template TemplateRef
	Layout   PipelineLayoutRef
	Set      uint32
	Data     unsafe.Pointer
}

// DeviceTemplateInfo is handed to the device when a template is created.
type DeviceTemplateInfo struct {
	Entries        []Entry
	Layout         LayoutRef
	PipelineLayout PipelineLayoutRef
	BindPoint      BindPoint
	Set            uint32
}

type (
	CreateTemplateFunc  func(info *DeviceTemplateInfo) (TemplateRef, error)
	DestroyTemplateFunc func(ref TemplateRef)
	// PushDirectFunc records a binding call from four discrete arguments.
	PushDirectFunc func(target PushTarget, template TemplateRef, layout PipelineLayoutRef, set uint32, data unsafe.Pointer)
	// PushStructuredFunc records the same binding call from a single record.
	PushStructuredFunc func(target PushTarget, info *PushInfo)
)

// Limits carries the device properties the binding core validates against.
type Limits struct {
	// Maximum number of descriptors a single push may update.
	MaxPushDescriptors uint32
	// Size in bytes of the host record for each resource kind.
	DescriptorSizes [resourceKindMax]uintptr
}

// Resolver is the capability lookup surface of the device driver. Each
// method reports whether the entry point exists; resolution happens once at
// startup, never per call.
type Resolver interface {
	ResolveCreateTemplate() (CreateTemplateFunc, bool)
	ResolveDestroyTemplate() (DestroyTemplateFunc, bool)
	ResolvePushDirect() (PushDirectFunc, bool)
	ResolvePushStructured() (PushStructuredFunc, bool)
	Limits() Limits
}

// Capabilities is the typed, fully resolved entry point table. Every field
// is non-nil once Negotiate succeeds.
type Capabilities struct {
	CreateTemplate  CreateTemplateFunc
	DestroyTemplate DestroyTemplateFunc
	PushDirect      PushDirectFunc
	PushStructured  PushStructuredFunc
	limits          Limits
}

// Limits returns the device limits captured during negotiation.
func (c *Capabilities) Limits() Limits {
	return c.limits
}

// DescriptorSize returns the host record size for the given kind.
func (c *Capabilities) DescriptorSize(kind ResourceKind) uintptr {
	if kind >= resourceKindMax {
		return 0
	}
	return c.limits.DescriptorSizes[kind]
}

// Negotiate resolves every required binding entry point from the device in
// one step. Missing entries are fatal for the caller: the whole renderer
// depends on the push mechanism and there is no degraded mode.
func Negotiate(r Resolver) (*Capabilities, error) {
	caps := &Capabilities{limits: r.Limits()}

	var ok bool
	if caps.CreateTemplate, ok = r.ResolveCreateTemplate(); !ok {
		return nil, fmt.Errorf("%w: create_update_template", core.ErrCapabilityMissing)
	}
	if caps.DestroyTemplate, ok = r.ResolveDestroyTemplate(); !ok {
		return nil, fmt.Errorf("%w: destroy_update_template", core.ErrCapabilityMissing)
	}
	if caps.PushDirect, ok = r.ResolvePushDirect(); !ok {
		return nil, fmt.Errorf("%w: push_with_template", core.ErrCapabilityMissing)
	}
	if caps.PushStructured, ok = r.ResolvePushStructured(); !ok {
		return nil, fmt.Errorf("%w: push_with_template_structured", core.ErrCapabilityMissing)
	}

	if caps.limits.MaxPushDescriptors == 0 {
		return nil, fmt.Errorf("%w: device reports zero push descriptors", core.ErrCapabilityMissing)
	}
	for kind := ResourceKind(0); kind < resourceKindMax; kind++ {
		if caps.limits.DescriptorSizes[kind] == 0 {
			return nil, fmt.Errorf("%w: no descriptor size for %s", core.ErrCapabilityMissing, kind)
		}
	}
	return caps, nil
}
