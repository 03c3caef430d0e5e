package errx

import (
	"errors"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ServerStatus returns the server's error response carried by the Api variant.
func (e *Error) ServerStatus() (metav1.Status, bool) {
	if e == nil || e.kind != KindAPI {
		return metav1.Status{}, false
	}
	var status apierrors.APIStatus
	if !errors.As(e.cause, &status) {
		return metav1.Status{}, false
	}
	return status.Status(), true
}

// apiStatus finds the Api variant in err's chain.
func apiStatus(err error) (metav1.Status, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok && e.kind == KindAPI {
			return e.ServerStatus()
		}
		err = errors.Unwrap(err)
	}
	return metav1.Status{}, false
}

// StatusCode returns the HTTP status code of an Api error in err's chain, or 0.
func StatusCode(err error) int32 {
	st, _ := apiStatus(err)
	return st.Code
}

// StatusReason returns the reason of an Api error in err's chain.
func StatusReason(err error) metav1.StatusReason {
	st, _ := apiStatus(err)
	return st.Reason
}

// IsGone reports an Api error with reason Gone or code 410, the server's signal
// that a watch or list resourceVersion is too old.
func IsGone(err error) bool {
	st, ok := apiStatus(err)
	if !ok {
		return false
	}
	return st.Reason == metav1.StatusReasonGone || st.Code == http.StatusGone
}

// IsResourceExpired reports an Api error with reason Expired.
func IsResourceExpired(err error) bool {
	st, ok := apiStatus(err)
	return ok && st.Reason == metav1.StatusReasonExpired
}

// IsStaleResourceVersion reports whether the caller should re-list before
// watching again.
func IsStaleResourceVersion(err error) bool {
	return IsGone(err) || IsResourceExpired(err)
}

// ToStatus converts err into a Kubernetes Status. Api errors return the server's
// own status; other kinds map to a failure status whose reason follows the kind.
func ToStatus(err error) metav1.Status {
	if err == nil {
		return metav1.Status{Status: metav1.StatusSuccess, Code: http.StatusOK}
	}
	if st, ok := apiStatus(err); ok {
		return st
	}
	status := metav1.Status{
		Status:  metav1.StatusFailure,
		Message: err.Error(),
		Reason:  metav1.StatusReasonUnknown,
		Code:    http.StatusInternalServerError,
	}
	e, ok := As(err)
	if !ok {
		return status
	}
	switch e.kind {
	case KindBuildRequest, KindProxyProtocolUnsupported, KindProxyProtocolDisabled, KindInferConfig, KindTLSRequired:
		status.Reason = metav1.StatusReasonBadRequest
		status.Code = http.StatusBadRequest
	case KindDiscovery:
		status.Reason = metav1.StatusReasonNotFound
		status.Code = http.StatusNotFound
	case KindSerde, KindFromUTF8, KindHTTP, KindLinesCodecMaxLineLengthExceeded, KindReadEvents:
		status.Reason = metav1.StatusReasonInternalError
	default:
		if reason, code, ok := gatedStatus(e.kind); ok {
			status.Reason = reason
			status.Code = code
		}
	}
	status.Details = &metav1.StatusDetails{
		Causes: []metav1.StatusCause{{Type: metav1.CauseType(e.kind), Message: e.Error()}},
	}
	return status
}
