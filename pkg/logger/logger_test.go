package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcarousel/pkg/config"
)

func TestNewWithValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "disabled"} {
		t.Run(level, func(t *testing.T) {
			l, err := New(&config.LoggingConfig{Level: level})
			require.NoError(t, err)
			assert.NotNil(t, l.GetZerolog())
		})
	}
}

func TestNewWithInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	base, err := New(&config.LoggingConfig{Level: "disabled"})
	require.NoError(t, err)

	child := base.WithField("shortcode", "ABC123")
	grandchild := child.WithFields(map[string]interface{}{"attempt": 2})

	// The parent keeps its own field set
	assert.Empty(t, base.(*zerologLogger).fields)
	assert.Len(t, child.(*zerologLogger).fields, 1)
	assert.Len(t, grandchild.(*zerologLogger).fields, 2)
}

func TestWithErrorNil(t *testing.T) {
	base, err := New(&config.LoggingConfig{Level: "disabled"})
	require.NoError(t, err)

	assert.Same(t, base, base.WithError(nil))
}

func TestGetLoggerFallback(t *testing.T) {
	globalLogger = nil
	assert.NotNil(t, GetLogger())
}
