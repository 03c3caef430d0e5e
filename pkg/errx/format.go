package errx

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// maxChainEntries bounds chain walks over cyclic or very deep error graphs.
const maxChainEntries = 64

// UserString returns the message of the outermost *Error in err's chain,
// dropping any prefixes callers added with fmt.Errorf. Other errors render as-is.
func UserString(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Error()
	}
	return err.Error()
}

// IsError checks if the given error is, or wraps, an *Error.
func IsError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := As(err)
	return ok
}

// DebugString returns a verbose, numbered rendering of err's chain with kinds,
// codes and context, outermost first.
func DebugString(err error) string {
	if err == nil {
		return ""
	}
	lines := make([]string, 0, 4)
	for i, item := range Chain(err) {
		line := fmt.Sprintf("%d: %T: %s", i+1, item, item.Error())
		switch typed := item.(type) {
		case *Error:
			line += " | kind=" + string(typed.kind)
			if code := typed.Code(); code != "" {
				line += " | code=" + code
			}
			if desc := typed.Description(); desc != "" {
				line += fmt.Sprintf(" | description=%q", desc)
			}
			if len(typed.context) > 0 {
				line += " | context={" + formatContext(typed.context) + "}"
			}
		case *DiscoveryError:
			line += fmt.Sprintf(" | reason=%s | code=%s", typed.reason, typed.reason.Code())
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Chain returns err followed by every error it wraps, breadth first, following
// both Unwrap() error and Unwrap() []error.
func Chain(err error) []error {
	var out []error
	queue := []error{err}
	for len(queue) > 0 && len(out) < maxChainEntries {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		out = append(out, current)
		queue = append(queue, unwrapAll(current)...)
	}
	return out
}

// RootCause follows the single-error Unwrap chain to its end.
func RootCause(err error) error {
	for i := 0; err != nil && i < maxChainEntries; i++ {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

func unwrapAll(err error) []error {
	switch unwrapped := err.(type) {
	case interface{ Unwrap() []error }:
		return unwrapped.Unwrap()
	case interface{ Unwrap() error }:
		if next := unwrapped.Unwrap(); next != nil {
			return []error{next}
		}
	}
	return nil
}

func formatContext(ctx map[string]any) string {
	parts := make([]string, 0, len(ctx))
	for _, key := range slices.Sorted(maps.Keys(ctx)) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, ctx[key]))
	}
	return strings.Join(parts, ", ")
}
