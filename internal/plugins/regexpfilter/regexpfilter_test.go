package regexpfilter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

func runFilter(t *testing.T, cfg map[string]any, titles ...string) *task.Task {
	t.Helper()
	p := New()
	reg := plugin.NewRegistry()
	reg.MustRegister(p)

	tk := task.New("test", map[string]any{Name: cfg}, reg, task.Options{UnitTest: true})
	for _, title := range titles {
		tk.Entries = append(tk.Entries, task.NewEntry(title, "http://example.org/"+title))
	}

	handler, ok := p.Handler(task.PhaseFilter)
	require.True(t, ok)
	require.NoError(t, handler(context.Background(), tk))
	return tk
}

func TestFilterAccept(t *testing.T) {
	tk := runFilter(t, map[string]any{
		"accept": []any{"linux"},
	}, "Some.Linux.Release", "Unrelated.Item")

	require.Len(t, tk.Accepted(), 1)
	assert.Equal(t, "Some.Linux.Release", tk.Accepted()[0].Title())
	assert.Empty(t, tk.Rejected())
	assert.Empty(t, tk.Filtered())
}

func TestFilterCaseInsensitive(t *testing.T) {
	tk := runFilter(t, map[string]any{
		"accept": []any{"LINUX"},
	}, "some.linux.release")

	assert.Len(t, tk.Accepted(), 1)
}

func TestFilterRejectWinsOverAccept(t *testing.T) {
	tk := runFilter(t, map[string]any{
		"accept": []any{"linux"},
		"reject": []any{"beta"},
	}, "Linux.Beta.Build")

	assert.Empty(t, tk.Accepted())
	require.Len(t, tk.Rejected(), 1)
	assert.Equal(t, "Linux.Beta.Build", tk.Rejected()[0].Title())
}

func TestFilterListMarksEntries(t *testing.T) {
	tk := runFilter(t, map[string]any{
		"filter": []any{"nightly"},
	}, "Nightly.Build", "Stable.Build")

	require.Len(t, tk.Filtered(), 1)
	assert.Equal(t, "Nightly.Build", tk.Filtered()[0].Title())
	// The filtered entry remains in the working set until the phase-end purge.
	assert.Len(t, tk.Entries, 2)
}

func TestFilterUnmatchedEntriesUntouched(t *testing.T) {
	tk := runFilter(t, map[string]any{
		"accept": []any{"linux"},
		"reject": []any{"beta"},
		"filter": []any{"nightly"},
	}, "Plain.Item")

	assert.Empty(t, tk.Accepted())
	assert.Empty(t, tk.Rejected())
	assert.Empty(t, tk.Filtered())
	assert.Len(t, tk.Entries, 1)
}

func TestFilterBadConfigIsFatal(t *testing.T) {
	p := New()
	reg := plugin.NewRegistry()
	reg.MustRegister(p)
	tk := task.New("test", map[string]any{Name: "not a map"}, reg, task.Options{UnitTest: true})

	handler, _ := p.Handler(task.PhaseFilter)
	err := handler(context.Background(), tk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a map")
}

func TestConfigValidator(t *testing.T) {
	p := New()
	v, err := p.ConfigValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     any
		wantErr string
	}{
		{
			name: "valid",
			cfg:  map[string]any{"accept": []any{"linux"}, "reject": []any{"beta"}},
		},
		{
			name:    "not a map",
			cfg:     "linux",
			wantErr: "must be a map",
		},
		{
			name:    "patterns not a list",
			cfg:     map[string]any{"accept": "linux"},
			wantErr: "patterns must be a list",
		},
		{
			name:    "non-string pattern",
			cfg:     map[string]any{"accept": []any{42}},
			wantErr: "pattern must be a string",
		},
		{
			name:    "invalid regexp",
			cfg:     map[string]any{"accept": []any{"("}},
			wantErr: `invalid pattern "("`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := v.ValidateConfig(tt.cfg)
			if tt.wantErr == "" {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			assert.Contains(t, msgs[0], tt.wantErr)
		})
	}
}
