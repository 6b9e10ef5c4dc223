package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerbosityLevel(t *testing.T) {
	for _, level := range []VerbosityLevel{Verbose, Info, Warning, Error, Off} {
		parsed, err := ParseVerbosityLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	parsed, err := ParseVerbosityLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, Warning, parsed)

	_, err = ParseVerbosityLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     VerbosityLevel
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
		wantError bool
	}{
		{Verbose, true, true, true, true},
		{Info, false, true, true, true},
		{Warning, false, false, true, true},
		{Error, false, false, false, true},
		{Off, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			emitted := func(log func(string, ...any), msg string) bool {
				buf.Reset()
				log(msg)
				return buf.Len() > 0
			}

			assert.Equal(t, tt.wantDebug, emitted(logger.Debug, "d"))
			assert.Equal(t, tt.wantInfo, emitted(logger.Info, "i"))
			assert.Equal(t, tt.wantWarn, emitted(logger.Warn, "w"))
			assert.Equal(t, tt.wantError, emitted(logger.Error, "e"))
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Verbose.SlogLevel())
	assert.Equal(t, slog.LevelInfo, VerbosityLevel(42).SlogLevel())
}
