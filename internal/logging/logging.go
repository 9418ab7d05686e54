// Package logging sets up the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how logs are written
type Options struct {
	// Level is a zap level name; empty means info
	Level string
	// Format is "json" or "console"
	Format string
	// Path is the log file; it is created with its directory. Empty means stderr.
	Path string
}

// Init builds the logger, installs it as the zap global and routes the
// standard library log package into it. The returned function flushes and
// restores the previous globals.
func Init(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	sink := zapcore.Lock(os.Stderr)
	var file *os.File
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		file = f
		sink = zapcore.AddSync(f)
	}

	logger := zap.New(zapcore.NewCore(newEncoder(opts.Format), sink, level), zap.AddCaller())
	restoreGlobals := zap.ReplaceGlobals(logger)
	restoreStdLog := zap.RedirectStdLog(logger)

	return logger, func() {
		_ = logger.Sync()
		restoreStdLog()
		restoreGlobals()
		if file != nil {
			_ = file.Close()
		}
	}, nil
}

// Nop returns a logger that discards everything
func Nop() *zap.Logger {
	return zap.NewNop()
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
