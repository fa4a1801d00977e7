package emitter

import (
	"sync"
)

// Handler receives the payload of an emitted event
type Handler func(payload any)

// WildcardHandler receives every event together with its name
type WildcardHandler func(event string, payload any)

// Emitter is a synchronous in-process event bus. Handlers run in
// registration order on the emitting goroutine.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wildcard []WildcardHandler
}

func New() *Emitter {
	return &Emitter{
		handlers: make(map[string][]Handler),
	}
}

// On registers a handler for a single event name, e.g. "clients.create"
func (e *Emitter) On(event string, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[event] = append(e.handlers[event], handler)
}

// OnAll registers a handler for every event
func (e *Emitter) OnAll(handler WildcardHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wildcard = append(e.wildcard, handler)
}

// Emit dispatches payload to the handlers of event. A nil emitter is a no-op.
func (e *Emitter) Emit(event string, payload any) {
	if e == nil {
		return
	}

	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[event]...)
	wildcard := append([]WildcardHandler(nil), e.wildcard...)
	e.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	for _, h := range wildcard {
		h(event, payload)
	}
}
