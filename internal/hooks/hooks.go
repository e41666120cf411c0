// Package hooks implements named lifecycle hooks with ordered listeners.
package hooks

import (
	"fmt"
	"sync"
)

// Lifecycle hook names fired by the compiler.
const (
	Run  = "run"
	Done = "done"
)

// Callback is a payload-free listener. A non-nil error aborts the call.
type Callback func() error

type tap struct {
	listener string
	fn       Callback
}

// Hook is an ordered list of listeners fired at one lifecycle point.
type Hook struct {
	name string
	mu   sync.Mutex
	taps []tap
}

// Name returns the hook name.
func (h *Hook) Name() string { return h.name }

// Tap appends a listener. Listeners fire in registration order.
func (h *Hook) Tap(listener string, fn Callback) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.taps = append(h.taps, tap{listener: listener, fn: fn})
	h.mu.Unlock()
}

// Len reports the number of registered listeners.
func (h *Hook) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.taps)
}

// Call fires every listener synchronously on the calling goroutine and
// stops at the first failure.
func (h *Hook) Call() error {
	h.mu.Lock()
	taps := make([]tap, len(h.taps))
	copy(taps, h.taps)
	h.mu.Unlock()

	for _, t := range taps {
		if err := invoke(t.fn); err != nil {
			return &CallbackError{Hook: h.name, Listener: t.listener, Cause: err}
		}
	}
	return nil
}

func invoke(fn Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Registry owns hooks by name.
type Registry struct {
	mu    sync.Mutex
	hooks map[string]*Hook
	order []string
}

// NewRegistry creates a registry with the given hooks pre-declared.
func NewRegistry(names ...string) *Registry {
	r := &Registry{hooks: make(map[string]*Hook, len(names))}
	for _, name := range names {
		r.Hook(name)
	}
	return r
}

// Hook returns the hook called name, creating it on first use.
func (r *Registry) Hook(name string) *Hook {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hooks[name]; ok {
		return h
	}
	h := &Hook{name: name}
	r.hooks[name] = h
	r.order = append(r.order, name)
	return h
}

// Tap registers fn on the named hook.
func (r *Registry) Tap(name, listener string, fn Callback) {
	r.Hook(name).Tap(listener, fn)
}

// Call fires the named hook. Calling a hook nobody tapped is a no-op.
func (r *Registry) Call(name string) error {
	return r.Hook(name).Call()
}

// Names lists hooks in declaration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// CallbackError wraps a listener failure.
type CallbackError struct {
	Hook     string
	Listener string
	Cause    error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("hook %q: listener %q: %v", e.Hook, e.Listener, e.Cause)
}

func (e *CallbackError) Unwrap() error { return e.Cause }
