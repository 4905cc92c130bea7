package slog

import (
	"bytes"
	"encoding/json"
	"errors"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/memocache"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug})))

	l.Error("unable to use cache", memocache.Fields{"func": "double", "op": "get", "err": errors.New("boom")})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "unable to use cache", rec["msg"])
	assert.Equal(t, "memocache", rec["component"])
	assert.Equal(t, "double", rec["func"])
	assert.Equal(t, "boom", rec["err"])
}

func TestLoggerOrdersFieldsAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo}))}

	l.Debug("cache hit", memocache.Fields{"key": "k"})
	assert.Zero(t, buf.Len())

	l.Warn("falling back", memocache.Fields{"b": 2, "a": 1})
	line := buf.String()
	assert.Less(t, strings.Index(line, "a=1"), strings.Index(line, "b=2"))
}
