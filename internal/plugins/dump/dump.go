// Package dump implements the dump output plugin: it writes the surviving
// entries to stdout or a file for operator inspection.
package dump

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// Name is the configuration keyword.
const Name = "dump"

// Plugin writes entries during the output phase.
//
// Configuration:
//
//	dump: true        # write to stdout
//
// or
//
//	dump:
//	    path: entries.txt
type Plugin struct {
	*plugin.Base
	out io.Writer // overrides stdout when set, used by tests
}

// New creates the dump plugin.
func New() *Plugin {
	p := &Plugin{}
	p.Base = plugin.NewBase(Name)
	p.Base.On(task.PhaseOutput, 0, p.output)
	return p
}

// SetOutput redirects stdout dumps, primarily for tests.
func (p *Plugin) SetOutput(w io.Writer) { p.out = w }

func (p *Plugin) output(ctx context.Context, t *task.Task) error {
	cfg, _ := t.PluginConfig(Name)

	var w io.Writer
	switch c := cfg.(type) {
	case bool:
		if !c {
			return nil
		}
		w = p.stdout()
	case map[string]any:
		path, ok := c["path"].(string)
		if !ok || path == "" {
			return fmt.Errorf("dump configuration is missing path")
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create dump file: %w", err)
		}
		defer f.Close()
		w = f
	default:
		return fmt.Errorf("dump configuration must be a boolean or a map with a path field")
	}

	for _, e := range t.Entries {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}
	return nil
}

func (p *Plugin) stdout() io.Writer {
	if p.out != nil {
		return p.out
	}
	return os.Stdout
}

// ConfigValidator implements task.ValidatorProvider.
func (p *Plugin) ConfigValidator() (task.ConfigValidator, error) {
	return validator{}, nil
}

type validator struct{}

func (validator) ValidateConfig(cfg any) []string {
	switch c := cfg.(type) {
	case bool:
		return nil
	case map[string]any:
		if path, ok := c["path"].(string); !ok || path == "" {
			return []string{"path is missing"}
		}
		return nil
	default:
		return []string{"must be a boolean or a map with a path field"}
	}
}
