//go:build !kube_noclient

package errx

import (
	"fmt"
	"net/http"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/features"
)

// Kinds produced by the HTTP client. Present unless built with kube_noclient.
const (
	KindTransport Kind = "TransportFailure"
	KindService   Kind = "ServiceFailure"
	KindAuth      Kind = "AuthFailure"
)

const (
	CodeTransport = "80002"
	CodeService   = "80003"
	CodeAuth      = "80018"

	DescTransport = "Transport error"
	DescService   = "Request middleware error"
	DescAuth      = "Authentication error"
)

func init() {
	registerGatedKind(KindTransport, CodeTransport, DescTransport, features.Client, func(e *Error) string {
		return fmt.Sprintf("TransportError: %v", e.cause)
	})
	registerGatedKind(KindService, CodeService, DescService, features.Client, func(e *Error) string {
		return fmt.Sprintf("ServiceError: %v", e.cause)
	})
	registerGatedKind(KindAuth, CodeAuth, DescAuth, features.Client, func(e *Error) string {
		return fmt.Sprintf("auth error: %v", e.cause)
	})
	registerGatedStatus(KindTransport, metav1.StatusReasonServiceUnavailable, http.StatusServiceUnavailable)
	registerGatedStatus(KindService, metav1.StatusReasonInternalError, http.StatusInternalServerError)
	registerGatedStatus(KindAuth, metav1.StatusReasonUnauthorized, http.StatusUnauthorized)
}

// Transport reports a low-level connection failure.
func Transport(cause error) *Error { return newError(KindTransport, cause) }

// Service reports a failure of a composed request-processing layer.
func Service(cause error) *Error { return newError(KindService, cause) }

// Auth reports a failure to acquire or refresh credentials.
func Auth(cause error) *Error { return newError(KindAuth, cause) }
