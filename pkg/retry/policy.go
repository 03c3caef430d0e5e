// Package retry decides how a caller recovers from a ClientError and runs
// operations under that policy.
package retry

import (
	"context"
	"errors"
	"net/http"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/wait"

	"kubeclient/pkg/config"
	"kubeclient/pkg/errx"
)

// Action is the recovery a caller should take for an error.
type Action string

const (
	// ActionNone means there is nothing to recover from.
	ActionNone Action = "none"
	// ActionRetry means the operation may succeed if repeated after a backoff.
	ActionRetry Action = "retry"
	// ActionResync means the caller's resourceVersion is stale: re-list, then watch again.
	ActionResync Action = "resync"
	// ActionFailFast means repeating the operation cannot help.
	ActionFailFast Action = "fail-fast"
	// ActionConfigDefect means the client configuration must change.
	ActionConfigDefect Action = "config-defect"
)

func (a Action) String() string { return string(a) }

// byKind maps kinds to their action. Api is decided by its status instead.
// Gated kinds are added by the build-constrained files that know them.
var byKind = map[errx.Kind]Action{
	errx.KindProxyProtocolUnsupported:        ActionConfigDefect,
	errx.KindProxyProtocolDisabled:           ActionConfigDefect,
	errx.KindInferConfig:                     ActionConfigDefect,
	errx.KindTLSRequired:                     ActionFailFast,
	errx.KindFromUTF8:                        ActionFailFast,
	errx.KindLinesCodecMaxLineLengthExceeded: ActionFailFast,
	errx.KindReadEvents:                      ActionRetry,
	errx.KindHTTP:                            ActionFailFast,
	errx.KindSerde:                           ActionFailFast,
	errx.KindBuildRequest:                    ActionFailFast,
	errx.KindDiscovery:                       ActionFailFast,
}

// ActionFor returns the action for a kind. Api and unknown kinds return
// ActionFailFast; use Classify to decide Api errors by status.
func ActionFor(kind errx.Kind) Action {
	if action, ok := byKind[kind]; ok {
		return action
	}
	return ActionFailFast
}

// Classify returns the recovery action for err.
func Classify(err error) Action {
	if err == nil {
		return ActionNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionFailFast
	}
	kind, ok := errx.KindOf(err)
	if !ok {
		return ActionFailFast
	}
	if kind == errx.KindAPI {
		return classifyStatus(err)
	}
	return ActionFor(kind)
}

func classifyStatus(err error) Action {
	switch {
	case errx.IsStaleResourceVersion(err):
		return ActionResync
	case apierrors.IsTooManyRequests(err),
		apierrors.IsServerTimeout(err),
		apierrors.IsTimeout(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err):
		return ActionRetry
	}
	switch errx.StatusCode(err) {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return ActionRetry
	}
	return ActionFailFast
}

// Retriable reports whether err is worth retrying after a backoff.
func Retriable(err error) bool {
	return Classify(err) == ActionRetry
}

// DefaultBackoff is used when no options are given.
var DefaultBackoff = wait.Backoff{Steps: 5, Duration: 200 * time.Millisecond, Factor: 2.0, Jitter: 0.1}

// BackoffFrom converts retry options into a backoff.
func BackoffFrom(opts config.RetryOptions) wait.Backoff {
	b := wait.Backoff{
		Steps:    opts.Steps,
		Duration: opts.Duration,
		Factor:   opts.Factor,
		Jitter:   opts.Jitter,
	}
	if b.Steps <= 0 {
		b.Steps = DefaultBackoff.Steps
	}
	if b.Duration <= 0 {
		b.Duration = DefaultBackoff.Duration
	}
	return b
}

// OnError runs fn until it succeeds, returns an error that is not retriable,
// ctx is done, or backoff is exhausted. The last error fn returned is
// returned; ctx's error only when fn never failed. Cancellation interrupts a
// pending backoff.
func OnError(ctx context.Context, backoff wait.Backoff, fn func(context.Context) error) error {
	var last error
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		err := fn(ctx)
		switch {
		case err == nil:
			return true, nil
		case ctx.Err() == nil && Retriable(err):
			last = err
			return false, nil
		default:
			return false, err
		}
	})
	if err != nil && last != nil && (wait.Interrupted(err) || errors.Is(err, ctx.Err())) {
		return last
	}
	return err
}
