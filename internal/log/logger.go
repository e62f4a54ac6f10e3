// internal/log/logger.go
package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It discards everything until Init is called.
var Logger = zap.NewNop()

// Options controls the level and the rotating file sink.
type Options struct {
	Level      string
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Init builds a logger from opts and installs it as Logger.
func Init(opts Options) *zap.Logger {
	Logger = NewLogger(opts)
	return Logger
}

// NewLogger writes to stdout and, when opts.File is set, to a rotating JSON file.
func NewLogger(opts Options) *zap.Logger {
	var rotationLog *lumberjack.Logger
	if opts.File != "" {
		rotationLog = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
	}
	return newZap(ParseLevel(opts.Level), rotationLog)
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newZap(level zapcore.Level, rotationLog *lumberjack.Logger) *zap.Logger {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encodeConfig), zapcore.AddSync(os.Stdout), level)
	core := consoleCore
	if rotationLog != nil {
		rotationCore := zapcore.NewCore(zapcore.NewJSONEncoder(encodeConfig), zapcore.AddSync(rotationLog), level)
		core = zapcore.NewTee(consoleCore, rotationCore)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
