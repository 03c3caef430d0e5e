// Package errlog writes ClientErrors to structured loggers.
//
// Both zap and logr receive the same field set:
//   - error.kind: "Api"
//   - error.code: "80001"
//   - error.category: "API server error response"
//   - error.message: the outermost ClientError message
//   - error.context.<key>: each diagnostic context entry
//   - error.cause: the immediate source
//   - error.root: the root cause, when it differs from the immediate source
//   - error.status.reason / error.status.code: the server status of Api errors
//
// Errors that are not ClientErrors are logged with the logger's plain error field.
package errlog

import (
	"errors"
	"maps"
	"slices"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"kubeclient/pkg/errx"
)

// Field names shared by both loggers.
const (
	FieldKind         = "error.kind"
	FieldCode         = "error.code"
	FieldCategory     = "error.category"
	FieldMessage      = "error.message"
	FieldContext      = "error.context."
	FieldCause        = "error.cause"
	FieldRoot         = "error.root"
	FieldStatusReason = "error.status.reason"
	FieldStatusCode   = "error.status.code"
)

// KeysAndValues returns the structured fields for err as logr key/value pairs,
// or nil when err is not a ClientError.
func KeysAndValues(err error) []any {
	e, ok := errx.As(err)
	if !ok {
		return nil
	}
	kv := []any{
		FieldKind, string(e.Kind()),
		FieldCode, e.Code(),
		FieldCategory, e.Description(),
		FieldMessage, e.Error(),
	}
	if ctx := e.Context(); ctx != nil {
		for _, key := range slices.Sorted(maps.Keys(ctx)) {
			kv = append(kv, FieldContext+key, ctx[key])
		}
	}
	if cause := e.Cause(); cause != nil {
		kv = append(kv, FieldCause, cause.Error())
		if errors.Unwrap(cause) != nil {
			kv = append(kv, FieldRoot, errx.RootCause(cause).Error())
		}
	}
	if status, ok := e.ServerStatus(); ok {
		kv = append(kv, FieldStatusReason, string(status.Reason), FieldStatusCode, status.Code)
	}
	return kv
}

// ZapFields returns the structured fields for err as zap fields.
func ZapFields(err error) []zap.Field {
	kv := KeysAndValues(err)
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, zap.Any(kv[i].(string), kv[i+1]))
	}
	return fields
}

// Zap logs err at error level with its structured fields.
func Zap(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil {
		return
	}
	fields := append(ZapFields(err), zap.Error(err))
	logger.Error(msg, fields...)
}

// Logr logs err with its structured fields.
func Logr(logger logr.Logger, err error, msg string) {
	if err == nil {
		return
	}
	logger.Error(err, msg, KeysAndValues(err)...)
}

// NewLogr returns a logr.Logger backed by a zap logger, for library callers
// that take a logr.Logger.
func NewLogr(logger *zap.Logger) logr.Logger {
	if logger == nil {
		return logr.Discard()
	}
	return zapr.NewLogger(logger)
}
