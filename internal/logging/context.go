package logging

import (
	"context"

	"go.uber.org/zap"
)

// Context key types
type taskCtxKey struct{}
type runCtxKey struct{}
type phaseCtxKey struct{}
type pluginCtxKey struct{}
type loggerCtxKey struct{}

// ContextFields extracts run attribution from context. The executor threads
// the current task, run ID, phase, and plugin through the dispatch context
// instead of storing them as shared mutable state.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)
	if task := TaskFromContext(ctx); task != "" {
		fields = append(fields, zap.String("task", task))
	}
	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if phase := PhaseFromContext(ctx); phase != "" {
		fields = append(fields, zap.String("phase", phase))
	}
	if plugin := PluginFromContext(ctx); plugin != "" {
		fields = append(fields, zap.String("plugin", plugin))
	}
	return fields
}

// WithTask adds the task name to context.
func WithTask(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, taskCtxKey{}, name)
}

// TaskFromContext extracts the task name from context.
func TaskFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(taskCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithRunID adds the run ID to context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, runID)
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(runCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithPhase adds the executing phase to context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseCtxKey{}, phase)
}

// PhaseFromContext extracts the executing phase from context.
func PhaseFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(phaseCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithPlugin adds the executing plugin name to context.
func WithPlugin(ctx context.Context, plugin string) context.Context {
	return context.WithValue(ctx, pluginCtxKey{}, plugin)
}

// PluginFromContext extracts the executing plugin name from context.
func PluginFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(pluginCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
