package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/roadmapper/internal/config"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "roadmapper.log")
	logger, err := New(config.LoggingConfig{Level: "debug", JSON: true, File: path})
	require.NoError(t, err)

	logger.Debug("progress updated")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"progress updated"`), "log file: %s", data)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	logger, err := New(config.LoggingConfig{Level: "warn", JSON: true, File: path})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestForTUI_NoFileIsNop(t *testing.T) {
	logger, err := ForTUI(config.LoggingConfig{Level: "info"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
