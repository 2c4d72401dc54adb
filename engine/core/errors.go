package core

import (
	"errors"
)

var (
	// ErrCapabilityMissing means a required binding entry point could not be
	// resolved from the device driver. There is no degraded mode; callers
	// terminate before entering the render loop.
	ErrCapabilityMissing = errors.New("required device capability missing")
	// ErrBindingUnavailable means a binding dispatch was attempted before the
	// capability table was negotiated. Programming error, never recoverable.
	ErrBindingUnavailable = errors.New("binding mechanism not resolved")
	// ErrNotPrepared means a per-frame operation ran before all device
	// resources were constructed.
	ErrNotPrepared = errors.New("renderer not prepared")
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
)
