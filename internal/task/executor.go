package task

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/fetchd/internal/logging"
	"github.com/fyrsmithlabs/fetchd/internal/telemetry"
)

// ErrAborted is returned by Execute when the run was aborted, either by
// validation failure or by a fatal plugin fault.
var ErrAborted = errors.New("task aborted")

// Execute runs the task: configuration validation, then the registry's
// fixed phase sequence. Classification decisions are reconciled against the
// working set after every plugin call (rejected, failed) and after every
// phase (filtered). Returns ErrAborted when the run stopped early.
func (t *Task) Execute(ctx context.Context) error {
	ctx = logging.WithTask(ctx, t.Name)
	ctx = logging.WithRunID(ctx, t.runID)
	telemetry.TaskRuns.Inc()

	errs := t.Validate(ctx)
	if t.abort {
		return ErrAborted
	}
	if t.options.CheckOnly {
		if len(errs) == 0 {
			t.progress(ctx, fmt.Sprintf("Task '%s' passed", t.Name))
		}
		return nil
	}

	for _, phase := range t.registry.Phases() {
		if t.options.Learn && (phase == PhaseDownload || phase == PhaseOutput) {
			t.logSkipped(ctx, phase)
			continue
		}

		t.runPhase(ctx, phase)

		// Filtered entries purge between phases; rejected and failed
		// entries were already purged between plugin calls.
		t.Purge(ctx)

		switch phase {
		case PhaseInput:
			t.detailEntries(ctx)
			if len(t.Entries) == 0 {
				t.progress(ctx, fmt.Sprintf("Task %s didn't produce any entries. This is likely to be a misconfigured or non-functional input.", t.Name))
			} else {
				t.progress(ctx, fmt.Sprintf("Task %s produced %d entries.", t.Name, len(t.Entries)))
				telemetry.EntriesProduced.Add(float64(len(t.Entries)))
			}
		case PhaseFilter:
			t.progress(ctx, fmt.Sprintf("Task %s filtered %d entries (%d remain).", t.Name, t.purged, len(t.Entries)))
		}

		if !t.shouldContinue() {
			return ErrAborted
		}
	}
	return nil
}

// Terminate dispatches the terminate phase so plugins can tear down and
// record learned state. It is a no-op for an aborted run.
func (t *Task) Terminate(ctx context.Context) {
	if t.abort {
		return
	}
	ctx = logging.WithTask(ctx, t.Name)
	t.runPhase(ctx, PhaseTerminate)
}

// Abort stops the run: no further plugins or phases execute after the
// current call returns. The abort phase is dispatched immediately so
// plugins can react to early termination. Repeated calls are no-ops.
func (t *Task) Abort(ctx context.Context, silent bool) {
	if t.abort {
		return
	}
	if !silent {
		t.log.Info(ctx, "aborting task", zap.String("task", t.Name))
	}
	t.abort = true
	if t.aborting {
		return
	}
	t.aborting = true
	t.runPhase(ctx, PhaseAbort)
}

// shouldContinue is the single cooperative-cancellation check the executor
// polls between plugin calls and between phases. Abort cannot interrupt a
// plugin already in progress.
func (t *Task) shouldContinue() bool { return !t.abort }

// runPhase dispatches every applicable plugin for the phase in scheduled
// order, purging rejected and failed entries after each call so decisions
// take effect before the next plugin sees the working set.
func (t *Task) runPhase(ctx context.Context, phase Phase) {
	ctx = logging.WithPhase(ctx, string(phase))
	for _, p := range t.schedule(phase) {
		if !t.configured(p.Name()) && !p.Builtin() {
			continue
		}
		handler, ok := p.Handler(phase)
		if !ok {
			continue
		}
		pctx := logging.WithPlugin(ctx, p.Name())
		t.dispatch(pctx, p, handler)
		t.purgeRejected(pctx)
		t.purgeFailed(pctx)
		// The abort phase itself must reach every plugin even though the
		// abort flag is already set.
		if phase != PhaseAbort && !t.shouldContinue() {
			return
		}
	}
}

// dispatch calls the handler and consumes its outcome at the single
// boundary where plugin conditions are allowed to surface: a *Warning is
// recoverable and logged, anything else is fatal and aborts the run.
func (t *Task) dispatch(ctx context.Context, p Plugin, handler PhaseHandler) {
	err := t.call(ctx, handler)
	if err == nil {
		return
	}

	var warn *Warning
	if errors.As(err, &warn) {
		if !warn.LogOnce || t.warnOnce.First(warn.Reason) {
			t.log.Warn(ctx, warn.Reason)
		}
		return
	}

	t.log.Error(ctx, "unhandled error in plugin",
		zap.String("plugin", p.Name()), zap.Error(err))
	telemetry.PluginFaults.Inc()
	t.Abort(ctx, false)
}

// call invokes the handler, converting a panic into a fatal error so a
// defective plugin cannot take down the whole process.
func (t *Task) call(ctx context.Context, handler PhaseHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panic: %v", r)
		}
	}()
	return handler(ctx, t)
}

// logSkipped records which configured plugins a learn-mode run skipped, for
// operator visibility.
func (t *Task) logSkipped(ctx context.Context, phase Phase) {
	for _, p := range t.registry.PluginsForPhase(phase) {
		if t.configured(p.Name()) {
			t.log.Info(ctx, "plugin not executed because of learn mode",
				zap.String("task", t.Name),
				zap.String("plugin", p.Name()),
				zap.String("phase", string(phase)))
		}
	}
}

// Validate checks every configured keyword against the registry and the
// plugin's validation capability. All collected error messages are returned
// for check-only reporting; any error also aborts the run.
func (t *Task) Validate(ctx context.Context) []string {
	var validateErrors []string
	for _, keyword := range t.configKeywords() {
		p, ok := t.registry.Plugin(keyword)
		if !ok {
			validateErrors = append(validateErrors, fmt.Sprintf("Unknown keyword '%s'", keyword))
			continue
		}
		provider, ok := p.(ValidatorProvider)
		if !ok {
			t.log.Warn(ctx, "plugin does not support validating",
				zap.String("plugin", keyword))
			continue
		}
		validator, err := provider.ConfigValidator()
		if err != nil {
			t.log.Error(ctx, "invalid validator in plugin",
				zap.String("plugin", keyword), zap.Error(err))
			continue
		}
		for _, msg := range validator.ValidateConfig(t.Config[keyword]) {
			validateErrors = append(validateErrors, fmt.Sprintf("%s %s", keyword, msg))
		}
	}

	if len(validateErrors) > 0 {
		t.log.Error(ctx, "task has configuration errors", zap.String("task", t.Name))
		for _, msg := range validateErrors {
			t.log.Error(ctx, msg)
		}
		t.Abort(ctx, false)
	}
	return validateErrors
}
