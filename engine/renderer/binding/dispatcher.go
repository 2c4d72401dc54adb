package binding

import (
	"unsafe"

	"github.com/spaghettifunk/prisma/engine/core"
)

// Dispatcher records binding calls through the negotiated capability table.
//
// Two structurally different but functionally equivalent device paths exist:
// the direct path hands the template, pipeline layout, set index and blob
// pointer over as four discrete arguments; the structured path packages the
// same four values into a single record. Both must produce identical binding
// results for identical inputs; the alternation exists to exercise both API
// surfaces, not as a performance choice.
//
// Path selection is an explicit per-call index owned by the caller (the
// frame recorder keeps a running counter), so dispatch order stays
// reproducible and testable. Even indices use the direct path.
type Dispatcher struct {
	caps *Capabilities
}

// NewDispatcher wires a dispatcher to a negotiated capability table.
func NewDispatcher(caps *Capabilities) *Dispatcher {
	return &Dispatcher{caps: caps}
}

// PathForCall reports which of the two device paths the given call index
// selects.
func PathForCall(call uint64) string {
	if call%2 == 0 {
		return "direct"
	}
	return "structured"
}

// Push records one binding call for the blob at data into target. No GPU
// work happens until the target's command sequence is submitted.
//
// Returns core.ErrBindingUnavailable when the capability table was never
// negotiated; that is a programming invariant violation and fatal before
// any frame is drawn, never a mid-frame condition.
func (d *Dispatcher) Push(target PushTarget, template *Template, call uint64, data unsafe.Pointer) error {
	if d == nil || d.caps == nil {
		return core.ErrBindingUnavailable
	}
	if template == nil || template.ref == nil {
		return core.ErrBindingUnavailable
	}

	if call%2 == 0 {
		d.caps.PushDirect(target, template.ref, template.pipelineLayout, template.set, data)
		return nil
	}
	d.caps.PushStructured(target, &PushInfo{
		Template: template.ref,
		Layout:   template.pipelineLayout,
		Set:      template.set,
		Data:     data,
	})
	return nil
}
