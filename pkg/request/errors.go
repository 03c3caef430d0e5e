package request

import (
	"errors"
	"fmt"
)

// Sentinel errors for request construction.
var (
	ErrMissingVersion  = errors.New("version is required")
	ErrMissingResource = errors.New("resource is required")
	ErrMissingName     = errors.New("name is required")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrInvalidBody     = errors.New("invalid body")
	ErrClusterScoped   = errors.New("resource is cluster scoped")
)

// Error is the source of every BuildRequest error. Op names the verb being
// built and Path the resource path, when one could be computed.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
