package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "", want: slog.LevelInfo},
		{name: "INFO", want: slog.LevelInfo},
		{name: "warning", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrettyHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo, false))

	logger.Info("Analyzed project", "project", "game", "assets", 3)
	line := buf.String()

	assert.Contains(t, line, "INFO  Analyzed project")
	assert.Contains(t, line, "project=game")
	assert.Contains(t, line, "assets=3")
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.NotContains(t, line, "\x1b[")
}

func TestPrettyHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelWarn, false))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN  shown")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelDebug, false)).
		With("project", "game").
		WithGroup("store")

	logger.Debug("Saved", "driver", "sqlite3", "path", "/tmp/my cache.db")
	line := buf.String()

	assert.Contains(t, line, "project=game")
	assert.Contains(t, line, "store.driver=sqlite3")
	assert.Contains(t, line, `store.path="/tmp/my cache.db"`)
}

func TestPrettyHandler_Colorized(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo, true))

	logger.Error("boom")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger, err := Setup(&buf, "debug", false)
	require.NoError(t, err)

	slog.Debug("via default")
	logger.Debug("via returned")
	assert.Contains(t, buf.String(), "via default")
	assert.Contains(t, buf.String(), "via returned")

	_, err = Setup(&buf, "nope", false)
	assert.Error(t, err)
}
