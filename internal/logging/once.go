package logging

import "sync"

// Once deduplicates repeated messages. Plugins can flag a warning as
// log-once when the same condition may repeat for every entry in a run.
type Once struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewOnce creates an empty deduplicator.
func NewOnce() *Once {
	return &Once{seen: make(map[string]struct{})}
}

// First reports whether msg has not been seen before, recording it.
func (o *Once) First(msg string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.seen[msg]; ok {
		return false
	}
	o.seen[msg] = struct{}{}
	return true
}
