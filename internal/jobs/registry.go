package jobs

import (
	"context"
	"fmt"
	"sync"
)

// Handler executes jobs of one type.
type Handler interface {
	Type() string
	Run(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc struct {
	JobType string
	Fn      func(ctx context.Context, job Job) error
}

// Type returns the job type.
func (h HandlerFunc) Type() string { return h.JobType }

// Run calls Fn.
func (h HandlerFunc) Run(ctx context.Context, job Job) error { return h.Fn(ctx, job) }

// Registry maps job types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler; a type can only be registered once.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.Type()
	if t == "" {
		return fmt.Errorf("handler type is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for job type %s", t)
	}
	r.handlers[t] = h
	return nil
}

// Get returns the handler for a job type.
func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}
