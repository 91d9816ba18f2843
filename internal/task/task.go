package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/fetchd/internal/logging"
)

// Classification categories addressable by FindEntry.
const (
	CategoryEntries  = "entries"
	CategoryAccepted = "accepted"
	CategoryFiltered = "filtered"
	CategoryRejected = "rejected"
	CategoryFailed   = "failed"
)

// ErrUnknownCategory is returned by FindEntry for an unrecognized category.
var ErrUnknownCategory = errors.New("unknown entry category")

// Options are the run-level flags supplied by the caller.
type Options struct {
	// Quiet suppresses progress output.
	Quiet bool

	// Details prints one line per classification decision.
	Details bool

	// CheckOnly validates the configuration without executing phases.
	CheckOnly bool

	// Learn skips the download and output phases so filters can learn
	// without acquiring anything.
	Learn bool

	// UnitTest suppresses interactive output entirely.
	UnitTest bool
}

// Task drives one run of one configured task. It owns the working set and
// the classification sets exclusively; no other run shares them. All methods
// must be called from a single goroutine.
type Task struct {
	// Name identifies the task in configuration and diagnostics.
	Name string

	// Config maps configured plugin keywords to their sub-configuration.
	Config map[string]any

	// Entries is the live working set, the only collection plugins iterate
	// to produce output. Plugins append to it; the purge engine removes
	// from it.
	Entries []*Entry

	accepted *entrySet
	filtered *entrySet
	rejected *entrySet
	failed   *entrySet

	registry Registry
	options  Options
	failures FailureSink

	log        *logging.Logger
	warnOnce   *logging.Once
	detailsOut io.Writer

	runID    string
	purged   int
	abort    bool
	aborting bool
}

// New creates a task for a single run with empty working and classification
// sets. The logger, failure sink, and details writer default to a nop
// logger, no sink, and stdout; use the setters to replace them.
func New(name string, config map[string]any, registry Registry, opts Options) *Task {
	return &Task{
		Name:       name,
		Config:     config,
		accepted:   newEntrySet(),
		filtered:   newEntrySet(),
		rejected:   newEntrySet(),
		failed:     newEntrySet(),
		registry:   registry,
		options:    opts,
		log:        logging.NewNop(),
		warnOnce:   logging.NewOnce(),
		detailsOut: os.Stdout,
		runID:      uuid.NewString(),
	}
}

// SetLogger replaces the task's logger.
func (t *Task) SetLogger(l *logging.Logger) {
	if l != nil {
		t.log = l
	}
}

// SetFailureSink sets the collaborator notified when entries fail.
func (t *Task) SetFailureSink(s FailureSink) { t.failures = s }

// SetDetailsOutput redirects classification detail lines.
func (t *Task) SetDetailsOutput(w io.Writer) {
	if w != nil {
		t.detailsOut = w
	}
}

// RunID returns the unique identifier of this run.
func (t *Task) RunID() string { return t.runID }

// Aborted reports whether the run has been aborted.
func (t *Task) Aborted() bool { return t.abort }

// PurgeCount returns how many entries counted purges have removed.
func (t *Task) PurgeCount() int { return t.purged }

// Accepted returns the accepted entries in classification order.
func (t *Task) Accepted() []*Entry { return t.accepted.all() }

// Filtered returns the filtered entries in classification order.
func (t *Task) Filtered() []*Entry { return t.filtered.all() }

// Rejected returns the rejected entries in classification order.
func (t *Task) Rejected() []*Entry { return t.rejected.all() }

// Failed returns the failed entries in classification order.
func (t *Task) Failed() []*Entry { return t.failed.all() }

// PluginConfig returns the sub-configuration for a plugin keyword.
func (t *Task) PluginConfig(keyword string) (any, bool) {
	v, ok := t.Config[keyword]
	return v, ok
}

// Accept accepts the entry. Accepting is idempotent and reverses a prior
// filter decision; a later filtered-purge will not remove an accepted entry.
func (t *Task) Accept(ctx context.Context, e *Entry, reason string) {
	if t.accepted.has(e) {
		return
	}
	t.accepted.add(e)
	if t.filtered.remove(e) {
		t.detail(ctx, fmt.Sprintf("Accepted previously filtered %s", e.Title()), "")
		return
	}
	t.detail(ctx, fmt.Sprintf("Accepted %s", e.Title()), reason)
}

// Filter marks the entry to be removed at the end of the phase unless a
// later plugin accepts it. Filtering an already-accepted entry is a no-op.
func (t *Task) Filter(ctx context.Context, e *Entry, reason string) {
	if t.filtered.has(e) || t.accepted.has(e) {
		return
	}
	t.filtered.add(e)
	t.detail(ctx, fmt.Sprintf("Filtered %s", e.Title()), reason)
}

// Reject rejects the entry permanently. Rejection dominates acceptance: the
// entry leaves the working set at the next purge point, which runs as soon
// as the current plugin's call returns.
func (t *Task) Reject(ctx context.Context, e *Entry, reason string) {
	if t.rejected.has(e) {
		return
	}
	t.rejected.add(e)
	t.detail(ctx, fmt.Sprintf("Rejected %s", e.Title()), reason)
}

// Fail marks the entry as failed and notifies the failure sink. Failed
// entries are purged unconditionally after the current plugin's call.
func (t *Task) Fail(ctx context.Context, e *Entry, reason string) {
	t.log.Debug(ctx, "marking entry as failed", zap.String("entry", e.Title()))
	if t.failed.has(e) {
		return
	}
	t.failed.add(e)
	if t.failures != nil {
		t.failures.AddFailed(e)
	}
	t.detail(ctx, fmt.Sprintf("Failed %s", e.Title()), reason)
}

// Purge removes filtered entries from the working set, exempting accepted
// ones. The executor runs this after every phase; plugins should only call
// it when they need filter decisions applied mid-phase.
func (t *Task) Purge(ctx context.Context) {
	t.purge(ctx, t.filtered, t.accepted, true)
}

func (t *Task) purgeRejected(ctx context.Context) {
	t.purge(ctx, t.rejected, nil, true)
}

func (t *Task) purgeFailed(ctx context.Context) {
	t.purge(ctx, t.failed, nil, false)
}

// purge removes from the working set every entry in victims that is not in
// exempt, incrementing the purge counter when counted.
func (t *Task) purge(ctx context.Context, victims, exempt *entrySet, counted bool) {
	kept := t.Entries[:0]
	for _, e := range t.Entries {
		if victims.has(e) && !exempt.has(e) {
			t.log.Debug(ctx, "purging entry", zap.String("entry", e.String()))
			if counted {
				t.purged++
			}
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(t.Entries); i++ {
		t.Entries[i] = nil
	}
	t.Entries = kept
}

// FindEntry returns the first entry in the named category whose fields all
// match the given values, or nil if none does.
func (t *Task) FindEntry(category string, fields map[string]any) (*Entry, error) {
	var entries []*Entry
	switch category {
	case CategoryEntries:
		entries = t.Entries
	case CategoryAccepted:
		entries = t.accepted.all()
	case CategoryFiltered:
		entries = t.filtered.all()
	case CategoryRejected:
		entries = t.rejected.all()
	case CategoryFailed:
		entries = t.failed.all()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	for _, e := range entries {
		match := true
		for k, v := range fields {
			if got, ok := e.Get(k); !ok || got != v {
				match = false
				break
			}
		}
		if match {
			return e, nil
		}
	}
	return nil, nil
}

// InputURL returns the address configured for an input keyword. Both forms
// are supported:
//
//	<keyword>: <address>
//
// and
//
//	<keyword>:
//	    url: <address>
func (t *Task) InputURL(keyword string) (string, error) {
	switch cfg := t.Config[keyword].(type) {
	case map[string]any:
		url, ok := cfg[FieldURL].(string)
		if !ok {
			return "", fmt.Errorf("input %s has invalid configuration, url is missing", keyword)
		}
		return url, nil
	case string:
		return cfg, nil
	default:
		return "", fmt.Errorf("input %s has invalid configuration", keyword)
	}
}

// configured reports whether the keyword is present in the task config.
func (t *Task) configured(keyword string) bool {
	_, ok := t.Config[keyword]
	return ok
}

// configKeywords returns the configured plugin keywords in sorted order so
// validation output is deterministic.
func (t *Task) configKeywords() []string {
	keys := make([]string, 0, len(t.Config))
	for k := range t.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// progress logs operator-facing progress, suppressed in quiet and unit-test
// modes.
func (t *Task) progress(ctx context.Context, msg string) {
	if t.options.Quiet || t.options.UnitTest {
		return
	}
	t.log.Info(ctx, msg)
}

// detail prints one classification decision when the details option is on.
// The phase and plugin columns come from the dispatch context.
func (t *Task) detail(ctx context.Context, msg, reason string) {
	if !t.options.Details || t.options.UnitTest {
		return
	}
	reasonStr := ""
	if reason != "" {
		reasonStr = fmt.Sprintf(" (%s)", reason)
	}
	fmt.Fprintf(t.detailsOut, "+ %-8s %-12s %s%s\n",
		logging.PhaseFromContext(ctx), logging.PluginFromContext(ctx), msg, reasonStr)
}

// detailEntries prints every entry in the working set when details are on.
func (t *Task) detailEntries(ctx context.Context) {
	if !t.options.Details || t.options.UnitTest {
		return
	}
	for _, e := range t.Entries {
		t.detail(ctx, e.Title(), "")
	}
}

// entrySet is an insertion-ordered set of entry references. Classification
// sets need both membership checks during purges and stable iteration for
// diagnostics and tests.
type entrySet struct {
	index map[*Entry]struct{}
	order []*Entry
}

func newEntrySet() *entrySet {
	return &entrySet{index: make(map[*Entry]struct{})}
}

func (s *entrySet) add(e *Entry) bool {
	if _, ok := s.index[e]; ok {
		return false
	}
	s.index[e] = struct{}{}
	s.order = append(s.order, e)
	return true
}

func (s *entrySet) remove(e *Entry) bool {
	if _, ok := s.index[e]; !ok {
		return false
	}
	delete(s.index, e)
	for i, cur := range s.order {
		if cur == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *entrySet) has(e *Entry) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[e]
	return ok
}

func (s *entrySet) len() int { return len(s.order) }

func (s *entrySet) all() []*Entry {
	out := make([]*Entry, len(s.order))
	copy(out, s.order)
	return out
}
