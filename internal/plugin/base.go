package plugin

import "github.com/fyrsmithlabs/fetchd/internal/task"

// Base is the common descriptor state concrete plugins embed. It satisfies
// task.Plugin; plugins add capability interfaces (task.ValidatorProvider)
// on their own types.
type Base struct {
	name       string
	builtin    bool
	priorities map[task.Phase]int
	handlers   map[task.Phase]task.PhaseHandler
}

// NewBase creates a descriptor for a plugin named name.
func NewBase(name string) *Base {
	return &Base{
		name:       name,
		priorities: make(map[task.Phase]int),
		handlers:   make(map[task.Phase]task.PhaseHandler),
	}
}

// AsBuiltin marks the plugin to run on every task regardless of
// configuration.
func (b *Base) AsBuiltin() *Base {
	b.builtin = true
	return b
}

// On registers the plugin's handler for a phase with the given default
// priority.
func (b *Base) On(phase task.Phase, priority int, handler task.PhaseHandler) *Base {
	b.priorities[phase] = priority
	b.handlers[phase] = handler
	return b
}

// Name returns the unique plugin identifier.
func (b *Base) Name() string { return b.name }

// Builtin reports whether the plugin runs without being configured.
func (b *Base) Builtin() bool { return b.builtin }

// DefaultPriority returns the declared priority for a phase, 0 if
// undeclared.
func (b *Base) DefaultPriority(phase task.Phase) int {
	return b.priorities[phase]
}

// Handler returns the handler registered for a phase.
func (b *Base) Handler(phase task.Phase) (task.PhaseHandler, bool) {
	h, ok := b.handlers[phase]
	return h, ok
}
