package llm

import (
	"context"
	"fmt"
	"sync"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/ragerror"
)

const logModule = "llm_registry"

// Registry holds the configured backends in a fixed order and tracks the
// default one. The default is chosen once at construction (first available
// backend) and only changes through SetDefaultBackend.
type Registry struct {
	mu          sync.RWMutex
	logger      logger.ILogger
	order       []string
	backends    map[string]Backend
	defaultName string
}

func NewRegistry(ctx context.Context, log logger.ILogger, backends ...Backend) *Registry {
	r := &Registry{
		logger:   log,
		backends: map[string]Backend{},
	}
	for _, b := range backends {
		if b == nil {
			continue
		}
		if _, dup := r.backends[b.Name()]; dup {
			log.Warn(logModule, "Duplicate backend ignored", map[string]interface{}{"backend": b.Name()})
			continue
		}
		r.order = append(r.order, b.Name())
		r.backends[b.Name()] = b
	}

	for _, name := range r.order {
		if r.backends[name].IsAvailable(ctx) {
			r.defaultName = name
			log.Info(logModule, "Default LLM set", map[string]interface{}{"backend": name})
			break
		}
	}
	if r.defaultName == "" {
		log.Warn(logModule, "No LLM backends available", nil)
	}
	return r
}

// GenerateResponse answers question over the retrieved context using the
// named backend, or the default one when name is empty. Availability is
// checked on every call.
func (r *Registry) GenerateResponse(ctx context.Context, question, retrieved, name string, opts ...Option) (string, error) {
	r.mu.RLock()
	if name == "" {
		name = r.defaultName
	}
	backend, ok := r.backends[name]
	r.mu.RUnlock()

	if name == "" {
		r.logger.Error(logModule, "No LLM backend available", nil)
		return "", ragerror.ErrNoBackend
	}
	if !ok {
		r.logger.Error(logModule, "Unknown backend", map[string]interface{}{"backend": name})
		return "", fmt.Errorf("%w: %s", ragerror.ErrUnknownBackend, name)
	}
	if !backend.IsAvailable(ctx) {
		r.logger.Error(logModule, "Backend not available", map[string]interface{}{"backend": name})
		return "", fmt.Errorf("%w: %s", ragerror.ErrBackendUnavailable, name)
	}

	answer, err := backend.GenerateResponse(ctx, question, retrieved, opts...)
	if err != nil {
		r.logger.Error(logModule, "Generation failed", map[string]interface{}{
			"backend": name,
			"error":   err.Error(),
		})
		return "", err
	}
	return answer, nil
}

// SetDefaultBackend switches the default to name if it is registered and
// currently available.
func (r *Registry) SetDefaultBackend(ctx context.Context, name string) bool {
	r.mu.RLock()
	backend, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok || !backend.IsAvailable(ctx) {
		return false
	}

	r.mu.Lock()
	r.defaultName = name
	r.mu.Unlock()

	r.logger.Info(logModule, "Default LLM changed", map[string]interface{}{"backend": name})
	return true
}

func (r *Registry) DefaultBackend() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// AvailableBackends probes every backend in registry order.
func (r *Registry) AvailableBackends(ctx context.Context) []string {
	available := []string{}
	for _, name := range r.Names() {
		if r.backend(name).IsAvailable(ctx) {
			available = append(available, name)
		}
	}
	return available
}

func (r *Registry) IsAnyAvailable(ctx context.Context) bool {
	for _, name := range r.Names() {
		if r.backend(name).IsAvailable(ctx) {
			return true
		}
	}
	return false
}

// Names lists every registered backend, available or not.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Backend returns the registered backend called name.
func (r *Registry) Backend(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

func (r *Registry) backend(name string) Backend {
	b, _ := r.Backend(name)
	return b
}
