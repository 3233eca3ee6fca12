package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		_ = Setup("info", FormatText)
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		records = append(records, rec)
	}
	return records
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Setup("info", FormatJSON))
	SetVerbose(true)

	Debug("test message %s", "arg")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.Equal(t, "test message arg", records[0]["msg"])
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")

	assert.Zero(t, buf.Len())
}

func TestInfoWarnError_AlwaysEmitted(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Setup("info", FormatJSON))

	Info("sweep %d", 1)
	Warn("tenant %s skipped", "t1")
	Error("failed: %v", "boom")

	records := decodeLines(t, &buf)
	require.Len(t, records, 3)
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "sweep 1", records[0]["msg"])
	assert.Equal(t, "WARN", records[1]["level"])
	assert.Equal(t, "ERROR", records[2]["level"])
}

func TestSetup_LevelFilters(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Setup("warn", FormatJSON))

	Info("hidden")
	Warn("shown")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "shown", records[0]["msg"])
}

func TestSetup_Invalid(t *testing.T) {
	reset(t)

	assert.Error(t, Setup("loud", FormatText))
	assert.Error(t, Setup("info", "xml"))
}

func TestWith_StructuredAttrs(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Setup("info", FormatJSON))

	With("tenant", "t1").Info("synced", "leads", 2)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0]["tenant"])
	assert.EqualValues(t, 2, records[0]["leads"])
}

func TestTextFormat_NoColorForBuffers(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestSection(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Sweep")
	assert.Zero(t, buf.Len())

	SetVerbose(true)
	Section("Sweep")
	assert.Equal(t, "\n=== Sweep ===\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
