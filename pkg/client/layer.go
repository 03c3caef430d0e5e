//go:build !kube_noclient

package client

import (
	"errors"
	"net/http"

	"k8s.io/client-go/util/flowcontrol"
)

// Handler processes a request. The innermost handler sends it.
type Handler func(*http.Request) (*http.Response, error)

// Layer wraps a Handler. An error a layer returns that is not already an
// *errx.Error is reported as ServiceFailure.
type Layer func(next Handler) Handler

// ErrRateLimited is returned by RateLimit when the limiter cannot admit a request.
var ErrRateLimited = errors.New("rate limiter rejected request")

// UserAgent sets the User-Agent header.
func UserAgent(agent string) Layer {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set("User-Agent", agent)
			return next(req)
		}
	}
}

// Header sets a fixed header on every request.
func Header(key, value string) Layer {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set(key, value)
			return next(req)
		}
	}
}

// RateLimit blocks each request until limiter admits it.
func RateLimit(limiter flowcontrol.RateLimiter) Layer {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, errors.Join(ErrRateLimited, err)
			}
			return next(req)
		}
	}
}

// QPS returns a RateLimit layer backed by a token bucket.
func QPS(qps float32, burst int) Layer {
	return RateLimit(flowcontrol.NewTokenBucketRateLimiter(qps, burst))
}
