package core

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * data := ctx.Data.(*SystemEvent)
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// A watched shader source file was created or written.
	/* Context usage:
	 * path := ctx.Data.(string)
	 */
	EVENT_CODE_SHADER_SOURCE_CHANGED SystemEventCode = 0x10

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// Pending events beyond this are dropped with a warning.
const DefaultEventQueueSize = 256

type EventContext struct {
	Type   SystemEventCode
	Sender interface{}
	Data   interface{}
}

/** @brief Payload of EVENT_CODE_RESIZED. */
type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// Should return true if handled.
type FnOnEvent func(ctx EventContext, listener interface{}) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

/**
 * @brief Dispatches engine events to registered listeners.
 *
 * Fire dispatches synchronously on the caller's goroutine. Post may be called
 * from any goroutine; posted events are only dispatched by Drain, which the
 * engine calls once per frame on the thread that owns the graphics context.
 */
type EventSystem struct {
	registered map[SystemEventCode][]*registeredEvent

	mutex   sync.Mutex
	pending *containers.RingQueue[EventContext]
}

func NewEventSystem(queueSize int) *EventSystem {
	if queueSize <= 0 {
		queueSize = DefaultEventQueueSize
	}
	return &EventSystem{
		registered: make(map[SystemEventCode][]*registeredEvent),
		pending:    containers.NewRingQueue[EventContext](queueSize),
	}
}

/**
 * Register to listen for when events are sent with the provided code. A listener may
 * only be registered once per code; a duplicate registration returns false.
 */
func (es *EventSystem) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	for _, e := range es.registered[code] {
		if listener != nil && e.listener == listener {
			LogWarn("listener already registered for event code `%d`", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister removes the registration of listener for code. Returns false if none existed.
func (es *EventSystem) Unregister(code SystemEventCode, listener interface{}) bool {
	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func (es *EventSystem) Fire(ctx EventContext) bool {
	for _, e := range es.registered[ctx.Type] {
		if e.callback(ctx, e.listener) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// Post queues ctx for the next Drain. Safe for concurrent use.
func (es *EventSystem) Post(ctx EventContext) error {
	es.mutex.Lock()
	defer es.mutex.Unlock()
	if err := es.pending.Enqueue(ctx); err != nil {
		err = fmt.Errorf("dropping event `%d`: %w", ctx.Type, err)
		LogWarn(err.Error())
		return err
	}
	return nil
}

// Drain fires every queued event and returns how many were dispatched.
func (es *EventSystem) Drain() int {
	n := 0
	for {
		es.mutex.Lock()
		ctx, err := es.pending.Dequeue()
		es.mutex.Unlock()
		if err != nil {
			return n
		}
		es.Fire(ctx)
		n++
	}
}

func (es *EventSystem) Shutdown() {
	es.mutex.Lock()
	defer es.mutex.Unlock()
	es.registered = make(map[SystemEventCode][]*registeredEvent)
	for !es.pending.IsEmpty() {
		_, _ = es.pending.Dequeue()
	}
}
