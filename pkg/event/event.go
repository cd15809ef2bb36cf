// Package event is an in-process publish/subscribe dispatcher keyed by
// event name.
package event

import (
	"context"
	"sync"
)

// Handler receives the payload of a fired event.
type Handler func(ctx context.Context, payload interface{})

// Dispatcher holds listeners per event name.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Listen registers h for name.
func (d *Dispatcher) Listen(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

func (d *Dispatcher) listeners(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Handler(nil), d.handlers[name]...)
}

// Fire runs every listener of name in registration order before returning.
func (d *Dispatcher) Fire(ctx context.Context, name string, payload interface{}) {
	for _, h := range d.listeners(name) {
		h(ctx, payload)
	}
}

// FireAsync runs each listener in its own goroutine. Listeners get a context
// detached from ctx's cancellation.
func (d *Dispatcher) FireAsync(ctx context.Context, name string, payload interface{}) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range d.listeners(name) {
		go h(ctx, payload)
	}
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}

var std = NewDispatcher()

// Default returns the process-wide dispatcher.
func Default() *Dispatcher { return std }

func Listen(name string, h Handler)                             { std.Listen(name, h) }
func Fire(ctx context.Context, name string, payload interface{}) { std.Fire(ctx, name, payload) }
func Flush()                                                    { std.Flush() }
