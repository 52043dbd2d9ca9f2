package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sim.log")

	log, err := New(Options{Level: "debug", Encoding: "json", File: path})
	require.NoError(t, err)

	log.Info("world stepped")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "world stepped"))
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Options{Level: "loud"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel), "debug should be disabled")
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel), "info should be enabled")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
