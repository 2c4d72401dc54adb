package core

import (
	"sync"
)

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01
	// Keyboard key pressed. Data is a *KeyEvent.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02
	// Keyboard key released. Data is a *KeyEvent.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03
	// Resized/resolution changed from the OS. Data is a *SystemEvent.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type FnOnEvent func(context EventContext)

type eventSystemState struct {
	mutex      sync.RWMutex
	registered map[SystemEventCode][]FnOnEvent
	queue      chan EventContext
	done       chan struct{}
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode][]FnOnEvent),
			queue:      make(chan EventContext, 256),
			done:       make(chan struct{}),
		}
	})
	return eventState != nil
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	close(eventState.done)
	eventState.mutex.Lock()
	eventState.registered = nil
	eventState.mutex.Unlock()
	return nil
}

// EventRegister adds a listener for the given code.
func EventRegister(code SystemEventCode, onEvent FnOnEvent) {
	if eventState == nil {
		return
	}
	eventState.mutex.Lock()
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	eventState.mutex.Unlock()
}

// EventFire queues an event for dispatch. Never blocks the caller; if the
// queue is full the event is dropped with a warning.
func EventFire(context EventContext) {
	if eventState == nil {
		return
	}
	select {
	case eventState.queue <- context:
	default:
		LogWarn("event queue full, dropping event with code `%d`", context.Type)
	}
}

// ProcessEvents drains the event queue until shutdown. Run it in its own
// goroutine before the main loop starts.
func ProcessEvents() {
	for {
		select {
		case <-eventState.done:
			return
		case ctx := <-eventState.queue:
			eventState.mutex.RLock()
			listeners := eventState.registered[ctx.Type]
			eventState.mutex.RUnlock()
			for _, cb := range listeners {
				cb(ctx)
			}
		}
	}
}
