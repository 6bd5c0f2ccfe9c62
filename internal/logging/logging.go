// Package logging builds the zap logger shared by the server and the
// consumer.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Log file names written under Config.Dir.
const (
	CombinedFile = "combined.log"
	ErrorFile    = "error.log"
)

// Config controls the logger.
type Config struct {
	Format string
	Level  string
	// Dir, when set, also writes JSON logs to CombinedFile and, for errors,
	// ErrorFile. Files rotate at MaxSizeMB.
	Dir        string
	MaxSizeMB  int
	MaxBackups int
}

// New builds a logger writing to stdout and, optionally, rotating files.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil && cfg.Level != "" {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	if cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	var stdoutEncoder zapcore.Encoder

	switch cfg.Format {
	case FormatJSON:
		stdoutEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case FormatConsole, "":
		stdoutEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig)

		cores = append(cores,
			zapcore.NewCore(fileEncoder, rotating(cfg, CombinedFile), level),
			zapcore.NewCore(fileEncoder, rotating(cfg, ErrorFile), zapcore.ErrorLevel),
		)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func rotating(cfg Config, name string) zapcore.WriteSyncer {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, name),
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	})
}
