// Package plugins wires the shipped plugin set into a registry.
package plugins

import (
	"fmt"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/download"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/dump"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/regexpfilter"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/rss"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/seen"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// NewRegistry creates a registry with every shipped plugin registered.
// The seen store is shared by all tasks of the process.
func NewRegistry(seenStore *seen.Store) (*plugin.Registry, error) {
	r := plugin.NewRegistry()
	all := []task.Plugin{
		rss.New(nil),
		seen.New(seenStore),
		regexpfilter.New(),
		download.New(nil),
		dump.New(),
	}
	for _, p := range all {
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("register plugin: %w", err)
		}
	}
	return r, nil
}
