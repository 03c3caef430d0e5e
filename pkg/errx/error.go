package errx

import (
	"errors"
	"fmt"
	"net/url"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/features"
)

// Error is the error returned by every fallible client operation. Kind tags the
// variant; the payload accessors that do not match the kind return zero values.
// An Error is immutable once constructed.
type Error struct {
	kind     Kind
	cause    error
	proxyURL *url.URL
	feature  features.Capability
	detail   string
	context  map[string]any
}

func newError(kind Kind, cause error) *Error {
	return &Error{kind: kind, cause: cause}
}

// API wraps a structured error response returned by the API server.
func API(status metav1.Status) *Error {
	return newError(KindAPI, &apierrors.StatusError{ErrStatus: status})
}

// FromStatusError wraps a client-go status error without copying it.
func FromStatusError(statusErr *apierrors.StatusError) *Error {
	if statusErr == nil {
		return newError(KindAPI, nil)
	}
	return newError(KindAPI, statusErr)
}

// ProxyProtocolUnsupported reports a proxy whose scheme is not recognised.
func ProxyProtocolUnsupported(proxyURL *url.URL) *Error {
	return &Error{kind: KindProxyProtocolUnsupported, proxyURL: cloneURL(proxyURL)}
}

// ProxyProtocolDisabled reports a proxy whose scheme is recognised but needs a
// capability this client was built or configured without.
func ProxyProtocolDisabled(proxyURL *url.URL, feature features.Capability) *Error {
	return &Error{kind: KindProxyProtocolDisabled, proxyURL: cloneURL(proxyURL), feature: feature}
}

// FromUTF8 reports bytes that are not valid UTF-8 where text was required.
func FromUTF8(cause error) *Error { return newError(KindFromUTF8, cause) }

// LinesCodecMaxLineLengthExceeded reports a line with no terminator within the
// decoder's maximum length.
func LinesCodecMaxLineLengthExceeded() *Error {
	return newError(KindLinesCodecMaxLineLengthExceeded, nil)
}

// ReadEvents reports an I/O failure while reading a watch event stream.
func ReadEvents(cause error) *Error { return newError(KindReadEvents, cause) }

// HTTP reports a malformed request or response at the HTTP layer.
func HTTP(cause error) *Error { return newError(KindHTTP, cause) }

// Serde reports a response body that failed to decode into the expected type.
func Serde(cause error) *Error { return newError(KindSerde, cause) }

// BuildRequest reports a request that could not be assembled from a resource descriptor.
func BuildRequest(cause error) *Error { return newError(KindBuildRequest, cause) }

// InferConfig reports a failure to infer client configuration.
func InferConfig(cause error) *Error { return newError(KindInferConfig, cause) }

// Discovery wraps a discovery failure.
func Discovery(cause *DiscoveryError) *Error {
	if cause == nil {
		return newError(KindDiscovery, nil)
	}
	return newError(KindDiscovery, cause)
}

// TLSRequired reports an endpoint that needs TLS when no TLS stack is available.
func TLSRequired() *Error { return newError(KindTLSRequired, nil) }

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch e.kind {
	case KindAPI:
		if st, ok := e.ServerStatus(); ok {
			return fmt.Sprintf("ApiError: %s (status=%q, reason=%q, code=%d)", st.Message, st.Status, st.Reason, st.Code)
		}
		return fmt.Sprintf("ApiError: %v", e.cause)
	case KindProxyProtocolUnsupported:
		return fmt.Sprintf("configured proxy %q uses an unsupported protocol", urlString(e.proxyURL))
	case KindProxyProtocolDisabled:
		return fmt.Sprintf("configured proxy %q requires the disabled feature %q", urlString(e.proxyURL), e.feature)
	case KindFromUTF8:
		return fmt.Sprintf("UTF-8 Error: %v", e.cause)
	case KindLinesCodecMaxLineLengthExceeded:
		return "Error finding newline character"
	case KindReadEvents:
		return fmt.Sprintf("Error reading events stream: %v", e.cause)
	case KindHTTP:
		return fmt.Sprintf("HttpError: %v", e.cause)
	case KindSerde:
		return fmt.Sprintf("Error deserializing response: %v", e.cause)
	case KindBuildRequest:
		return fmt.Sprintf("Failed to build request: %v", e.cause)
	case KindInferConfig:
		return fmt.Sprintf("Failed to infer configuration: %v", e.cause)
	case KindDiscovery:
		return fmt.Sprintf("Error from discovery: %v", e.cause)
	case KindTLSRequired:
		return "TLS required but no TLS stack selected"
	}
	if msg, ok := gatedMessage(e); ok {
		return msg
	}
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

// Unwrap returns the immediate source, so errors.Is and errors.As walk the chain.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error of the same kind and equal payload, so a bare
// variant such as TLSRequired() can be used as a comparison target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if e.kind != t.kind || t.cause != nil {
		return false
	}
	if t.proxyURL != nil && urlString(t.proxyURL) != urlString(e.proxyURL) {
		return false
	}
	if t.feature != "" && t.feature != e.feature {
		return false
	}
	return t.detail == "" || t.detail == e.detail
}

// Kind returns the variant tag.
func (e *Error) Kind() Kind {
	if e == nil {
		return ""
	}
	return e.kind
}

// Code returns the stable code of the variant.
func (e *Error) Code() string {
	if e == nil {
		return ""
	}
	return e.kind.Code()
}

// Description returns the category description of the variant.
func (e *Error) Description() string {
	if e == nil {
		return ""
	}
	return e.kind.Description()
}

// Cause returns the wrapped source, if any.
func (e *Error) Cause() error {
	return e.Unwrap()
}

// ProxyURL returns a copy of the proxy URL of a proxy variant.
func (e *Error) ProxyURL() *url.URL {
	if e == nil {
		return nil
	}
	return cloneURL(e.proxyURL)
}

// Feature returns the disabled capability of ProxyProtocolDisabled.
func (e *Error) Feature() features.Capability {
	if e == nil {
		return ""
	}
	return e.feature
}

// Detail returns the description carried by RefResolve.
func (e *Error) Detail() string {
	if e == nil {
		return ""
	}
	return e.detail
}

// DiscoveryError returns the discovery failure wrapped by the Discovery variant.
func (e *Error) DiscoveryError() (*DiscoveryError, bool) {
	if e == nil || e.kind != KindDiscovery {
		return nil, false
	}
	d, ok := e.cause.(*DiscoveryError)
	return d, ok
}

// Context returns a copy of the structured diagnostic context.
func (e *Error) Context() map[string]any {
	if e == nil || len(e.context) == 0 {
		return nil
	}
	return cloneContext(e.context)
}

// WithContext returns a copy of the error with key set in its diagnostic context.
// Context never appears in Error(), only in DebugString and structured logs.
func (e *Error) WithContext(key string, value any) *Error {
	return e.WithContextMap(map[string]any{key: value})
}

// WithContextMap returns a copy of the error with ctx merged into its context.
// It always returns a clone, even if ctx is empty.
func (e *Error) WithContextMap(ctx map[string]any) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.context = cloneContext(e.context)
	for key, value := range ctx {
		clone.context[key] = value
	}
	return &clone
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.kind, true
}

// IsKind reports whether the outermost *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// gatedFormats renders capability-gated kinds. Entries are added by the init
// functions of the build-constrained files that declare those kinds.
var gatedFormats = map[Kind]func(*Error) string{}

func registerGatedKind(kind Kind, code, description string, capability features.Capability, format func(*Error) string) {
	registerKind(kind, code, description, capability)
	gatedFormats[kind] = format
}

type gatedStatusEntry struct {
	reason metav1.StatusReason
	code   int32
}

// gatedStatuses maps gated kinds onto Kubernetes status reasons for ToStatus.
var gatedStatuses = map[Kind]gatedStatusEntry{}

func registerGatedStatus(kind Kind, reason metav1.StatusReason, code int32) {
	gatedStatuses[kind] = gatedStatusEntry{reason: reason, code: code}
}

func gatedStatus(kind Kind) (metav1.StatusReason, int32, bool) {
	entry, ok := gatedStatuses[kind]
	return entry.reason, entry.code, ok
}

func gatedMessage(e *Error) (string, bool) {
	format, ok := gatedFormats[e.kind]
	if !ok {
		return "", false
	}
	return format(e), true
}

func cloneContext(ctx map[string]any) map[string]any {
	clone := make(map[string]any, len(ctx))
	for key, value := range ctx {
		clone[key] = value
	}
	return clone
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
