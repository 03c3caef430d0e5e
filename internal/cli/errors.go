package cli

// This file defines error handling utilities for the CLI, including:
//   - Sentinel errors for invalid command input
//   - Structured error logging of client error chains
//   - Debug mode management for error output

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"kubeclient/pkg/errlog"
	"kubeclient/pkg/errx"
)

var (
	debugMode   bool
	debugModeMu sync.RWMutex
)

// SetDebugMode sets the global debug mode flag.
// When enabled, logStructuredError writes structured error logs to the terminal
// and reportError prints the full error chain.
func SetDebugMode(enabled bool) {
	debugModeMu.Lock()
	defer debugModeMu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool {
	debugModeMu.RLock()
	defer debugModeMu.RUnlock()
	return debugMode
}

// Sentinel errors for CLI input.
var (
	ErrUnknownCode   = errors.New("unknown error code or kind")
	ErrUnknownFormat = errors.New("unknown output format")
	ErrCheckFailed   = errors.New("cluster check failed")
)

// logStructuredError logs an error with structured fields to the terminal.
// Only logs when debug mode is enabled (via --debug flag).
//
// Client errors are logged with the fields produced by errlog:
// - error.kind: "ReadEvents"
// - error.code: "80008"
// - error.category: "Event stream read error"
// - error.context.url: "https://10.0.0.1:6443/api/v1/pods?watch=true"
func logStructuredError(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil || !IsDebugMode() {
		return
	}
	errlog.Zap(logger, err, msg)
}

// reportError prints err for the user: the outermost client error message,
// or the numbered chain in debug mode.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if IsDebugMode() {
		fmt.Fprintln(w, Red("Error chain:"))
		fmt.Fprintln(w, errx.DebugString(err))
		return
	}
	fmt.Fprintf(w, "%s %s\n", Red("Error:"), errx.UserString(err))
}

// errKindLabel names the client error kind and code of err for the final
// command error, or "unexpected error" for other errors.
func errKindLabel(err error) string {
	e, ok := errx.As(err)
	if !ok {
		return "unexpected error"
	}
	return fmt.Sprintf("%s (%s)", e.Kind(), e.Code())
}
