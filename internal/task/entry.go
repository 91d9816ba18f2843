package task

import "fmt"

// Well-known entry field names.
const (
	FieldTitle       = "title"
	FieldURL         = "url"
	FieldOriginalURL = "original_url"
)

// Entry represents one item flowing through a task run. It is an ordered
// key/value record: keys iterate in first-insertion order so diagnostic
// output stays stable across runs.
//
// The original_url field is derived, not independently writable through Set:
// the first time url is written its value is also captured under
// original_url, and later url rewrites (resolvers, redirect chasers) leave
// it untouched so provenance is never lost.
type Entry struct {
	keys   []string
	values map[string]any
}

// NewEntry creates an entry with title and url populated.
// The url write runs through Set, so original_url is captured immediately.
func NewEntry(title, url string) *Entry {
	e := &Entry{values: make(map[string]any)}
	e.Set(FieldTitle, title)
	e.Set(FieldURL, url)
	return e
}

// Set stores value under key. Writing url for the first time also records
// the value under original_url. This operation cannot fail.
func (e *Entry) Set(key string, value any) {
	if e.values == nil {
		e.values = make(map[string]any)
	}
	if key == FieldURL {
		if _, ok := e.values[FieldOriginalURL]; !ok {
			e.store(FieldOriginalURL, value)
		}
	}
	e.store(key, value)
}

func (e *Entry) store(key string, value any) {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Get returns the value stored under key.
func (e *Entry) Get(key string) (any, bool) {
	v, ok := e.values[key]
	return v, ok
}

// GetString returns the value under key if it is a string, else "".
func (e *Entry) GetString(key string) string {
	if s, ok := e.values[key].(string); ok {
		return s
	}
	return ""
}

// Has reports whether key is present.
func (e *Entry) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// Keys returns all field names in first-insertion order.
func (e *Entry) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Title returns the title field.
func (e *Entry) Title() string { return e.GetString(FieldTitle) }

// URL returns the url field, which plugins may rewrite during a run.
func (e *Entry) URL() string { return e.GetString(FieldURL) }

// OriginalURL returns the url value as it was first set.
func (e *Entry) OriginalURL() string { return e.GetString(FieldOriginalURL) }

// IsValid reports whether the entry can be used by the pipeline.
// Only title is required; entries without a resolvable url are legitimate
// at intermediate stages, so url presence is deliberately not checked.
func (e *Entry) IsValid() bool {
	return e.Has(FieldTitle)
}

// String formats the entry for diagnostics as "title | url".
func (e *Entry) String() string {
	url := e.URL()
	if !e.Has(FieldURL) {
		url = "<no url>"
	}
	return fmt.Sprintf("%s | %s", e.Title(), url)
}
