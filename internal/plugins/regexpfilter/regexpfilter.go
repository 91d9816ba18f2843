// Package regexpfilter implements the regexp filter plugin: entries are
// accepted, rejected, or filtered by matching their title against
// configured pattern lists.
package regexpfilter

import (
	"context"
	"fmt"
	"regexp"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// Name is the configuration keyword.
const Name = "regexp"

// Plugin classifies entries by title patterns during the filter phase.
//
// Configuration:
//
//	regexp:
//	    accept: ['pattern', ...]
//	    reject: ['pattern', ...]
//	    filter: ['pattern', ...]
//
// Reject patterns win over accept patterns; patterns are matched
// case-insensitively.
type Plugin struct {
	*plugin.Base
}

// New creates the regexp plugin.
func New() *Plugin {
	p := &Plugin{}
	p.Base = plugin.NewBase(Name)
	p.Base.On(task.PhaseFilter, 0, p.filter)
	return p
}

func (p *Plugin) filter(ctx context.Context, t *task.Task) error {
	cfg, _ := t.PluginConfig(Name)
	rules, err := compile(cfg)
	if err != nil {
		return err
	}
	for _, e := range t.Entries {
		title := e.Title()
		if pattern, ok := rules.match(rules.reject, title); ok {
			t.Reject(ctx, e, fmt.Sprintf("regexp %q", pattern))
			continue
		}
		if pattern, ok := rules.match(rules.accept, title); ok {
			t.Accept(ctx, e, fmt.Sprintf("regexp %q", pattern))
			continue
		}
		if pattern, ok := rules.match(rules.filter, title); ok {
			t.Filter(ctx, e, fmt.Sprintf("regexp %q", pattern))
		}
	}
	return nil
}

type ruleSet struct {
	accept []*regexp.Regexp
	reject []*regexp.Regexp
	filter []*regexp.Regexp
}

func (r *ruleSet) match(patterns []*regexp.Regexp, title string) (string, bool) {
	for _, re := range patterns {
		if re.MatchString(title) {
			return re.String(), true
		}
	}
	return "", false
}

func compile(cfg any) (*ruleSet, error) {
	m, ok := cfg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("regexp configuration must be a map")
	}
	rules := &ruleSet{}
	var err error
	if rules.accept, err = compileList(m["accept"]); err != nil {
		return nil, err
	}
	if rules.reject, err = compileList(m["reject"]); err != nil {
		return nil, err
	}
	if rules.filter, err = compileList(m["filter"]); err != nil {
		return nil, err
	}
	return rules, nil
}

func compileList(v any) ([]*regexp.Regexp, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("patterns must be a list")
	}
	compiled := make([]*regexp.Regexp, 0, len(list))
	for _, item := range list {
		pattern, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("pattern must be a string, got %T", item)
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// ConfigValidator implements task.ValidatorProvider.
func (p *Plugin) ConfigValidator() (task.ConfigValidator, error) {
	return validator{}, nil
}

type validator struct{}

func (validator) ValidateConfig(cfg any) []string {
	if _, err := compile(cfg); err != nil {
		return []string{err.Error()}
	}
	return nil
}
