package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// The file should be rotated once it reaches the maximum size.
func TestLogRotation(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "libraxpert.log")

	rotationLog := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    1, // megabytes
		MaxBackups: 3,
		MaxAge:     1, // days
	}
	defer rotationLog.Close()

	logger := newZap(zapcore.InfoLevel, rotationLog)
	defer logger.Sync()

	oneMegabyte := 1024 * 1024
	_, err := rotationLog.Write(make([]byte, oneMegabyte))
	require.NoError(t, err)
	logger.Info("This log should be in a new file")

	fileInfo, err := os.Stat(filename)
	require.NoError(t, err)
	assert.LessOrEqual(t, fileInfo.Size(), int64(oneMegabyte))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestInitWithoutFileLogsToConsoleOnly(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	logger := Init(Options{Level: "debug"})
	assert.Same(t, logger, Logger)
	assert.True(t, Logger.Core().Enabled(zapcore.DebugLevel))
}
