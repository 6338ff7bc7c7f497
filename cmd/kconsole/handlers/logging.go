package handlers

import (
	"io"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// NewLogger creates the CLI logger writing to w. Without debug only
// warnings and errors are shown; with debug every V-level is.
func NewLogger(w io.Writer, debug bool) logr.Logger {
	opts := zap.Options{
		Development: debug,
		DestWriter:  w,
	}
	if !debug {
		opts.Level = zapcore.WarnLevel
	}
	return zap.New(zap.UseFlagOptions(&opts))
}
