//go:build !kube_notls

package errx

import (
	"fmt"
	"net/http"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/features"
)

// KindTLSNative is TLS setup failure under the crypto/tls stack. The kind name
// keeps the identifier used by other client implementations for their pure
// (non-C) TLS stack.
const KindTLSNative Kind = "TlsRustlsFailure"

const (
	CodeTLSNative = "80015"
	DescTLSNative = "Native TLS error"
)

func init() {
	registerGatedKind(KindTLSNative, CodeTLSNative, DescTLSNative, features.NativeTLS, func(e *Error) string {
		return fmt.Sprintf("native tls error: %v", e.cause)
	})
	registerGatedStatus(KindTLSNative, metav1.StatusReasonServiceUnavailable, http.StatusServiceUnavailable)
}

// NativeTLS reports a TLS setup failure under the crypto/tls stack.
func NativeTLS(cause error) *Error { return newError(KindTLSNative, cause) }
