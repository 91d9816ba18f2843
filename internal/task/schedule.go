package task

import "sort"

// effectivePriority resolves the dispatch priority for a plugin in a phase.
// A priority field in the plugin's structured sub-configuration overrides
// the plugin's declared default for the phase.
func (t *Task) effectivePriority(p Plugin, phase Phase) int {
	priority := p.DefaultPriority(phase)
	if sub, ok := t.Config[p.Name()].(map[string]any); ok {
		if v, ok := sub["priority"]; ok {
			if n, ok := asInt(v); ok {
				priority = n
			}
		}
	}
	return priority
}

// schedule returns the phase's plugins in descending effective priority.
// The sort is a single stable descending sort over precomputed priorities;
// equal priorities keep the registry's registration order.
func (t *Task) schedule(phase Phase) []Plugin {
	plugins := t.registry.PluginsForPhase(phase)
	scheduled := make([]struct {
		plugin   Plugin
		priority int
	}, len(plugins))
	for i, p := range plugins {
		scheduled[i].plugin = p
		scheduled[i].priority = t.effectivePriority(p, phase)
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].priority > scheduled[j].priority
	})
	ordered := make([]Plugin, len(scheduled))
	for i, s := range scheduled {
		ordered[i] = s.plugin
	}
	return ordered
}

// asInt normalizes the numeric types a parsed configuration may carry.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
