//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package log provides the logging facility used across the project.
// It is backed by zap and exposes a swappable process-wide default logger.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the minimal logging surface required by this project.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}

// Default is the logger used by the package-level functions.
// It may be replaced before any goroutines start logging.
var Default Logger = New(zapcore.InfoLevel)

// New creates a zap-backed logger writing to stderr at the given level.
func New(level zapcore.Level) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		// Falling back to a no-op core keeps logging failures non-fatal.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// Debug logs at debug level using the default logger.
func Debug(args ...any) { Default.Debug(args...) }

// Debugf logs a formatted message at debug level using the default logger.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }

// Info logs at info level using the default logger.
func Info(args ...any) { Default.Info(args...) }

// Infof logs a formatted message at info level using the default logger.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Warn logs at warn level using the default logger.
func Warn(args ...any) { Default.Warn(args...) }

// Warnf logs a formatted message at warn level using the default logger.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Error logs at error level using the default logger.
func Error(args ...any) { Default.Error(args...) }

// Errorf logs a formatted message at error level using the default logger.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }
