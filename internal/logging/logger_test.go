package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid json",
			cfg:  Config{Level: "debug", Format: "json"},
		},
		{
			name: "valid console",
			cfg:  Config{Level: "warn", Format: "console"},
		},
		{
			name:    "bad level",
			cfg:     Config{Level: "loud", Format: "json"},
			wantErr: "invalid level",
		},
		{
			name:    "bad format",
			cfg:     Config{Level: "info", Format: "xml"},
			wantErr: "invalid format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLoggerRejectsInvalidConfig(t *testing.T) {
	_, err := NewLogger(&Config{Level: "loud", Format: "console"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewLoggerDefaultsNilConfig(t *testing.T) {
	log, err := NewLogger(nil)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithTask(ctx, "nightly")
	ctx = WithRunID(ctx, "run-1")
	ctx = WithPhase(ctx, "filter")
	ctx = WithPlugin(ctx, "regexp")

	assert.Equal(t, []zap.Field{
		zap.String("task", "nightly"),
		zap.String("run_id", "run-1"),
		zap.String("phase", "filter"),
		zap.String("plugin", "regexp"),
	}, ContextFields(ctx))
}

func TestContextFieldsAttachToLogs(t *testing.T) {
	log := NewTestLogger()
	ctx := WithPlugin(WithTask(context.Background(), "nightly"), "rss")

	log.Info(ctx, "fetching feed")

	entries := log.FilterMessage("fetching feed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "nightly", fields["task"])
	assert.Equal(t, "rss", fields["plugin"])
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, FromContext(ctx), "missing logger falls back to nop")

	log := NewNop()
	assert.Same(t, log, FromContext(WithLogger(ctx, log)))
}

func TestOnceFirst(t *testing.T) {
	once := NewOnce()
	assert.True(t, once.First("tracker overloaded"))
	assert.False(t, once.First("tracker overloaded"))
	assert.True(t, once.First("feed unavailable"))
}

func TestTestLoggerObservation(t *testing.T) {
	log := NewTestLogger()
	log.Warn(context.Background(), "something odd")

	log.AssertLogged(t, zapcore.WarnLevel, "something odd")
	log.AssertNotLogged(t, zapcore.ErrorLevel, "something odd")

	log.Reset()
	assert.Empty(t, log.All())
}
