// Package logging builds the application's zap logger from configuration.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tickerlens/tickerlens/internal/config"
)

// New creates a zap.Logger honoring the configured level and format.
// Unknown levels fall back to info rather than failing startup.
func New(cfg config.LoggingConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	return zap.New(core)
}

// Sync flushes buffered log entries; safe to call on process exit.
func Sync(log *zap.Logger) {
	if log == nil {
		return
	}
	if err := log.Sync(); err != nil {
		// Syncing stdout fails on some platforms; nothing actionable.
		fmt.Fprintf(os.Stderr, "logger sync: %v\n", err)
	}
}
