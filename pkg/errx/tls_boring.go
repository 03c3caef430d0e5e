//go:build boringcrypto

package errx

import (
	"fmt"
	"net/http"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/features"
)

// KindTLSBoring is TLS setup failure under the BoringSSL-backed stack, the
// OpenSSL-equivalent selected with GOEXPERIMENT=boringcrypto.
const KindTLSBoring Kind = "TlsOpensslFailure"

const (
	CodeTLSBoring = "80014"
	DescTLSBoring = "BoringCrypto TLS error"
)

func init() {
	registerGatedKind(KindTLSBoring, CodeTLSBoring, DescTLSBoring, features.BoringTLS, func(e *Error) string {
		return fmt.Sprintf("boringcrypto tls error: %v", e.cause)
	})
	registerGatedStatus(KindTLSBoring, metav1.StatusReasonServiceUnavailable, http.StatusServiceUnavailable)
}

// BoringTLS reports a TLS setup failure under the BoringCrypto stack.
func BoringTLS(cause error) *Error { return newError(KindTLSBoring, cause) }
