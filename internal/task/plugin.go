// Package task implements the per-task execution engine: it drives one run
// of a task through the fixed phase sequence, dispatching configured plugins
// in priority order and reconciling entry classifications between calls.
package task

import "context"

// Phase is a named stage in the fixed pipeline sequence.
type Phase string

// Pipeline phases. Input through output form the run sequence; terminate
// and abort are dispatched out of band by Terminate and Abort.
const (
	PhaseInput     Phase = "input"
	PhaseFilter    Phase = "filter"
	PhaseDownload  Phase = "download"
	PhaseOutput    Phase = "output"
	PhaseTerminate Phase = "terminate"
	PhaseAbort     Phase = "abort"
)

// PhaseHandler executes one plugin's behavior for one phase against the
// running task. The handler may mutate the working set and classify entries.
// Returning a *Warning signals a recoverable condition; any other non-nil
// error is fatal to the run.
type PhaseHandler func(ctx context.Context, t *Task) error

// Plugin is the descriptor the engine consumes for each registered plugin.
type Plugin interface {
	// Name returns the unique identifier used as a configuration key.
	Name() string

	// Builtin reports whether the plugin runs on every task regardless of
	// configuration.
	Builtin() bool

	// DefaultPriority returns the plugin's declared priority for a phase,
	// 0 if undeclared. Configuration may override it per task.
	DefaultPriority(phase Phase) int

	// Handler returns the plugin's handler for a phase and whether the
	// plugin participates in that phase at all.
	Handler(phase Phase) (PhaseHandler, bool)
}

// ConfigValidator checks a plugin's per-task sub-configuration and returns
// human-readable error messages, empty when the configuration is valid.
type ConfigValidator interface {
	ValidateConfig(cfg any) []string
}

// ValidatorProvider is implemented by plugins that can validate their
// configuration. Plugins without it produce a compatibility warning during
// validation but are not treated as misconfigured.
type ValidatorProvider interface {
	// ConfigValidator constructs the validation capability. A construction
	// error is a defect in the plugin; validation of that plugin is skipped.
	ConfigValidator() (ConfigValidator, error)
}

// Registry supplies the plugin set and the fixed phase sequence for a run.
type Registry interface {
	// Phases returns the ordered run sequence of phases.
	Phases() []Phase

	// PluginsForPhase returns every plugin that participates in the phase,
	// in registration order. The scheduler re-sorts by priority; the
	// registration order is the tie-break, so it must be stable.
	PluginsForPhase(phase Phase) []Plugin

	// Plugin looks up a plugin by its configuration keyword.
	Plugin(name string) (Plugin, bool)
}

// FailureSink receives entries the first time they are marked failed, for
// run-level failure bookkeeping outside this engine.
type FailureSink interface {
	AddFailed(e *Entry)
}

// Warning is a recoverable condition raised by a plugin handler. The run
// continues; the reason is logged, once only when LogOnce is set (some
// plugins hit the same condition on every entry).
type Warning struct {
	Reason  string
	LogOnce bool
}

func (w *Warning) Error() string { return w.Reason }
