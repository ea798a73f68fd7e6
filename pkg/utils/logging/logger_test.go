package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTee_Levels(t *testing.T) {
	var console, file bytes.Buffer
	logger := newTee(&console, &file)

	logger.Debug("building pools", zap.String("date", "QUA 04/06"))
	logger.Info("schedule generated", zap.Int("slots", 8))
	require.NoError(t, logger.Sync())

	assert.NotContains(t, console.String(), "building pools", "Console only shows Info and above")
	assert.Contains(t, console.String(), "schedule generated")

	assert.Contains(t, file.String(), `"msg":"building pools"`)
	assert.Contains(t, file.String(), `"date":"QUA 04/06"`)
	assert.Contains(t, file.String(), `"slots":8`)
}

func TestInitLogger_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := InitLogger("test", dir)
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^test_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.log$`, entries[0].Name())
}
