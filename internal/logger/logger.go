// Package logger builds the zap loggers used by the command line.
package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to w. Warnings and errors are always shown;
// verbose adds debug and info entries. jsonOutput switches from the
// human-readable console format to one JSON object per line.
func New(w io.Writer, verbose, jsonOutput bool) *zap.Logger {
	if w == nil {
		return zap.NewNop()
	}
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if jsonOutput {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}
