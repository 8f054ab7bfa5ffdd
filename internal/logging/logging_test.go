package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "json")

	logger.Info("issued charge %s", "abc")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "info", line["level"])
	require.Equal(t, "issued charge abc", line["message"])
	require.Equal(t, ApplicationName, line["App"])
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("not written")
	require.Empty(t, buf.String())

	logger.Warn("written %d", 1)
	require.Contains(t, buf.String(), "written 1")
}

func TestLoggerFromContext(t *testing.T) {
	noop := NewNoopLogger()
	ctx := WithLogger(context.Background(), noop)

	require.Equal(t, noop, LoggerFromContext(ctx))
	require.NotNil(t, LoggerFromContext(context.Background()))
}
