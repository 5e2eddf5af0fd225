package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaults(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewInvalid(t *testing.T) {
	var tests = []Config{
		{Level: "loud"},
		{Encoding: "xml"},
	}

	for i, cfg := range tests {
		_, err := New(cfg)
		assert.Error(t, err, "test %d", i)
	}
}

func TestNewJSONOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	log, err := New(Config{Level: "debug", Encoding: "json", OutputPaths: []string{out}})
	require.NoError(t, err)

	log.Warn("unknown template", zap.String("source", "wm.conf"), zap.Int("line", 12))
	require.NoError(t, log.Sync())

	buf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"message":"unknown template"`)
	assert.Contains(t, string(buf), `"source":"wm.conf"`)
	assert.Contains(t, string(buf), `"line":12`)
}
