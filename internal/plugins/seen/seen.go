// Package seen implements the builtin seen plugin: it rejects entries whose
// original url was already processed by an earlier run, and records the
// accepted entries of the current run at terminate.
//
// The plugin is builtin and runs on every task. Matching uses the entry's
// original_url so url rewrites during a run cannot defeat deduplication.
package seen

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// Name is the configuration keyword.
const Name = "seen"

// FilterPriority runs the seen check before other filters so known entries
// never reach them.
const FilterPriority = 255

// Plugin drops already-seen entries and learns new ones.
type Plugin struct {
	*plugin.Base
	store *Store
}

// New creates the seen plugin backed by store.
func New(store *Store) *Plugin {
	p := &Plugin{store: store}
	p.Base = plugin.NewBase(Name).AsBuiltin()
	p.Base.On(task.PhaseFilter, FilterPriority, p.filter)
	p.Base.On(task.PhaseTerminate, 0, p.learn)
	return p
}

func (p *Plugin) filter(ctx context.Context, t *task.Task) error {
	for _, e := range t.Entries {
		url := e.OriginalURL()
		if url == "" {
			continue
		}
		known, err := p.store.Has(url)
		if err != nil {
			return fmt.Errorf("seen lookup: %w", err)
		}
		if known {
			t.Reject(ctx, e, "entry already seen")
		}
	}
	return nil
}

// learn records the run's accepted entries so later runs skip them.
func (p *Plugin) learn(ctx context.Context, t *task.Task) error {
	for _, e := range t.Accepted() {
		url := e.OriginalURL()
		if url == "" {
			continue
		}
		if err := p.store.Add(url, e.Title(), t.Name); err != nil {
			return fmt.Errorf("seen learn: %w", err)
		}
	}
	return nil
}

// ConfigValidator implements task.ValidatorProvider. The plugin is builtin
// and normally unconfigured; an explicit boolean enables or disables
// nothing yet but is accepted for forward compatibility.
func (p *Plugin) ConfigValidator() (task.ConfigValidator, error) {
	return validator{}, nil
}

type validator struct{}

func (validator) ValidateConfig(cfg any) []string {
	if _, ok := cfg.(bool); !ok {
		return []string{"must be a boolean"}
	}
	return nil
}
