//go:build kube_unstable

package errx

import (
	"fmt"
	"net/http"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/features"
)

// KindRefResolve is a symbolic resource reference that could not be resolved.
const KindRefResolve Kind = "RefResolve"

const (
	CodeRefResolve = "80019"
	DescRefResolve = "Reference resolution error"
)

func init() {
	registerGatedKind(KindRefResolve, CodeRefResolve, DescRefResolve, features.UnstableClient, func(e *Error) string {
		return fmt.Sprintf("Reference resolve error: %s", e.detail)
	})
	registerGatedStatus(KindRefResolve, metav1.StatusReasonNotFound, http.StatusNotFound)
}

// RefResolve reports a reference that could not resolve to a concrete identifier.
func RefResolve(detail string) *Error {
	return &Error{kind: KindRefResolve, detail: detail}
}
