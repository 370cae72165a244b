package logx_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(format logx.Format, level logx.Level) (*logx.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := logx.DefaultConfig()
	cfg.Format = format
	cfg.Level = level
	cfg.EnableColors = false
	cfg.EnableTimestamp = false
	cfg.Output = buf
	return logx.NewLogger(cfg), buf
}

func TestLogger_NamedAddsComponentField(t *testing.T) {
	l, buf := newBufferLogger(logx.FormatJSON, logx.LevelDebug)

	l.Named("dispatcher").WithField("reactor", "labeler").WithError(errors.New("boom")).Warn("reactor failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dispatcher", line["component"])
	assert.Equal(t, "labeler", line["reactor"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "reactor failed", line["message"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(logx.FormatConsole, logx.LevelWarn)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConsoleFormatter_SortsFields(t *testing.T) {
	l, buf := newBufferLogger(logx.FormatConsole, logx.LevelInfo)

	l.WithFields(logx.Fields{"b": 2, "a": 1}).Info("hello")

	out := buf.String()
	assert.True(t, strings.Index(out, "a=1") < strings.Index(out, "b=2"), out)
	assert.True(t, strings.HasPrefix(out, "[INFO ]"), out)
}

func TestCloudWatchFormatter_Keys(t *testing.T) {
	l, buf := newBufferLogger(logx.FormatCloudWatch, logx.LevelInfo)

	l.WithError(errors.New("x")).Error("failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "failed", line["msg"])
	assert.Equal(t, "error", line["error_type"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logx.LevelWarn, logx.ParseLevel("warning"))
	assert.Equal(t, logx.LevelInfo, logx.ParseLevel("nonsense"))

	var lvl logx.Level
	require.NoError(t, lvl.UnmarshalText([]byte("debug")))
	assert.Equal(t, logx.LevelDebug, lvl)
}
