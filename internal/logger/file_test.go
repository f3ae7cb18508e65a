package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsoleLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "launchpad.log")
	cfg := DefaultConfig()
	cfg.LogFile = path
	cfg.Debug = true

	log := NewConsoleLogger(cfg)
	log.Debug("Rent exemption fetched", zap.Uint64("lamports", 1461600))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Rent exemption fetched"`)
	assert.Contains(t, string(data), `"lamports":1461600`)
}

func TestTUILoggerWithoutFile(t *testing.T) {
	log := NewTUILogger(Config{}, nil)
	assert.NotPanics(t, func() { log.Info("nothing to write to") })
}
