package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	e := NewEntry("Some.Title", "http://example.org/item")

	assert.Equal(t, "Some.Title", e.Title())
	assert.Equal(t, "http://example.org/item", e.URL())
	assert.Equal(t, "http://example.org/item", e.OriginalURL())
}

func TestEntryOriginalURLCapturedOnce(t *testing.T) {
	e := NewEntry("title", "http://first.example.org")

	e.Set(FieldURL, "http://second.example.org")
	e.Set(FieldURL, "http://third.example.org")

	assert.Equal(t, "http://third.example.org", e.URL())
	assert.Equal(t, "http://first.example.org", e.OriginalURL(),
		"original_url must keep the first url ever set")
}

func TestEntryOriginalURLNotWritableThroughURL(t *testing.T) {
	e := &Entry{}
	e.Set(FieldURL, "http://a.example.org")
	e.Set(FieldURL, "http://b.example.org")

	assert.Equal(t, "http://a.example.org", e.OriginalURL())
}

func TestEntryIsValid(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *Entry
		valid bool
	}{
		{
			name:  "title and url",
			setup: func() *Entry { return NewEntry("t", "http://example.org") },
			valid: true,
		},
		{
			name: "title without url",
			setup: func() *Entry {
				e := &Entry{}
				e.Set(FieldTitle, "t")
				return e
			},
			valid: true,
		},
		{
			name: "url without title",
			setup: func() *Entry {
				e := &Entry{}
				e.Set(FieldURL, "http://example.org")
				return e
			},
			valid: false,
		},
		{
			name:  "empty",
			setup: func() *Entry { return &Entry{} },
			valid: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.setup().IsValid())
		})
	}
}

func TestEntryString(t *testing.T) {
	e := NewEntry("Some Item", "http://example.org")
	assert.Equal(t, "Some Item | http://example.org", e.String())

	noURL := &Entry{}
	noURL.Set(FieldTitle, "Some Item")
	assert.Equal(t, "Some Item | <no url>", noURL.String())
}

func TestEntryKeysInsertionOrder(t *testing.T) {
	e := NewEntry("t", "http://example.org")
	e.Set("description", "d")
	e.Set(FieldTitle, "t2") // overwrite must not reorder

	require.Equal(t, []string{FieldTitle, FieldOriginalURL, FieldURL, "description"}, e.Keys())
	assert.Equal(t, "t2", e.Title())
}

func TestEntryGet(t *testing.T) {
	e := NewEntry("t", "http://example.org")
	e.Set("size", 1234)

	v, ok := e.Get("size")
	require.True(t, ok)
	assert.Equal(t, 1234, v)

	_, ok = e.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", e.GetString("size"), "non-string field reads as empty string")
}
