package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "info", JSON: true, Out: &buf})
	defer cleanup()

	l.Debug("hidden")
	l.Info("note created", zap.String("id", "n1"))
	_ = l.Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "note created", rec["msg"])
	assert.Equal(t, "n1", rec["id"])
	assert.Contains(t, rec, "ts")
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "loud", JSON: true, Out: &buf})
	defer cleanup()

	l.Debug("hidden")
	l.Info("shown")
	_ = l.Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestToWriterAndRedirect(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "debug", JSON: true, Out: &buf})
	defer cleanup()

	w := ToWriter(l, zapcore.WarnLevel)
	_, err := w.Write([]byte("slow query\n"))
	require.NoError(t, err)

	undo := RedirectStdLog(l, zapcore.InfoLevel)
	log.Print("from std log")
	undo()
	_ = l.Sync()

	assert.Contains(t, buf.String(), `"msg":"slow query"`)
	assert.Contains(t, buf.String(), "from std log")
}
