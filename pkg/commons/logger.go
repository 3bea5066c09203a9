// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package commons

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging facade injected into every component. It mirrors the
// zap sugared API so call sites can mix printf-style and structured logging.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Fatalf(template string, args ...interface{})
	Sync() error
}

type loggerOptions struct {
	name  string
	path  string
	level string
}

type Option func(*loggerOptions)

// Name sets the logger name, used as the rotated log file basename.
func Name(name string) Option {
	return func(o *loggerOptions) { o.name = name }
}

// Path sets the directory where rotated log files are written. Empty path
// disables file logging.
func Path(path string) Option {
	return func(o *loggerOptions) { o.path = path }
}

// Level sets the minimum log level (debug, info, warn, error).
func Level(level string) Option {
	return func(o *loggerOptions) { o.level = level }
}

type applicationLogger struct {
	*zap.SugaredLogger
}

// NewApplicationLogger builds the process-wide logger: console output on
// stdout plus a size-rotated file sink when a path is configured.
func NewApplicationLogger(opts ...Option) (Logger, error) {
	options := &loggerOptions{
		name:  "application",
		level: "debug",
	}
	for _, opt := range opts {
		opt(options)
	}

	level := zapcore.DebugLevel
	if err := level.Set(options.level); err != nil {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	if options.path != "" {
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(options.path, options.name+".log"),
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotated),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &applicationLogger{logger.Sugar().Named(options.name)}, nil
}
