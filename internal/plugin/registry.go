// Package plugin implements the plugin registry and the base descriptor
// concrete plugins embed. The task engine consumes it through the
// task.Registry interface.
package plugin

import (
	"fmt"
	"sync"

	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// RunPhases returns the fixed run sequence of phases. Terminate and abort
// are dispatched out of band and are deliberately not part of it.
func RunPhases() []task.Phase {
	return []task.Phase{task.PhaseInput, task.PhaseFilter, task.PhaseDownload, task.PhaseOutput}
}

// Registry manages registered plugins. Registration order is preserved:
// the scheduler's priority tie-break depends on it.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]task.Plugin
	ordered []task.Plugin
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]task.Plugin)}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name is already registered.
func (r *Registry) Register(p task.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[p.Name()]; exists {
		return fmt.Errorf("plugin %q already registered", p.Name())
	}
	r.byName[p.Name()] = p
	r.ordered = append(r.ordered, p)
	return nil
}

// MustRegister registers a plugin and panics on error. Intended for
// wiring the builtin plugin set at startup.
func (r *Registry) MustRegister(p task.Plugin) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Phases returns the fixed run sequence of phases.
func (r *Registry) Phases() []task.Phase {
	return RunPhases()
}

// PluginsForPhase returns every plugin that participates in the phase, in
// registration order.
func (r *Registry) PluginsForPhase(phase task.Phase) []task.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []task.Plugin
	for _, p := range r.ordered {
		if _, ok := p.Handler(phase); ok {
			result = append(result, p)
		}
	}
	return result
}

// Plugin returns a plugin by name.
func (r *Registry) Plugin(name string) (task.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// List returns all registered plugins in registration order.
func (r *Registry) List() []task.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]task.Plugin, len(r.ordered))
	copy(result, r.ordered)
	return result
}
