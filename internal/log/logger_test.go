package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/authdemo/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"loud", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLevelToSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.ToSlogLevel())
	assert.Equal(t, slog.LevelWarn, LevelWarn.ToSlogLevel())
	assert.Equal(t, slog.LevelInfo, Level(42).ToSlogLevel())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLookupLevel(t *testing.T) {
	l, err := LookupLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	_, err = LookupLevel("loud")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestSetDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	cfg.Format = FormatText
	cfg.Output = NewOutput(&buf)
	l := New(cfg)

	prev := slog.Default()
	SetDefaultLogger(l)
	t.Cleanup(func() {
		SetDefaultLogger(nil)
		slog.SetDefault(prev)
	})

	assert.Same(t, l, DefaultLogger())
	slog.Info("via slog")
	assert.Contains(t, buf.String(), "via slog")

	SetDefaultLogger(nil)
	assert.NotNil(t, DefaultLogger())
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("console"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("nonsense"))
	assert.Equal(t, "text", FormatText.String())
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatJSON, Output: NewOutput(&buf)})

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Zero(t, buf.Len(), "debug/info must be filtered at warn level")

	logger.Warn("warn message")
	assert.NotZero(t, buf.Len())
}

func TestWithErrorClassified(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatJSON, Output: NewOutput(&buf), ServiceName: "authdemo"})

	err := fmt.Errorf("refresh: %w", errors.API(401, "invalid token", "fallback"))
	logger.WithError(err).Error("refresh failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "invalid token", entry["error"])
	assert.Equal(t, "api", entry["error_kind"])
	assert.Equal(t, "API-001", entry["error_code"])
	assert.Equal(t, float64(401), entry["http_status"])
	assert.Equal(t, "authdemo", entry["service"])
}

func TestWithErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatText, Output: NewOutput(&buf)})

	logger.WithError(fmt.Errorf("boom")).Warn("something")
	assert.Contains(t, buf.String(), "error=boom")

	assert.Same(t, logger, logger.WithError(nil))
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authdemo.log")
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: OutputFile(path, 1, 1)})
	logger.Info("written to file")
	require.NoError(t, logger.Close())
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("dropped")
	assert.NoError(t, logger.Close())
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "****", MaskToken("short"))
	masked := MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.signature")
	assert.True(t, strings.HasPrefix(masked, "eyJhbGci"))
	assert.NotContains(t, masked, "signature")
}

func TestDefaultLogger(t *testing.T) {
	original := defaultLogger.Load()
	defer defaultLogger.Store(original)

	defaultLogger.Store(nil)
	first := DefaultLogger()
	require.NotNil(t, first)
	assert.Same(t, first, DefaultLogger())

	custom := Nop()
	SetDefaultLogger(custom)
	assert.Same(t, custom, DefaultLogger())
}
