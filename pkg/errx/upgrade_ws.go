//go:build kube_ws

package errx

import (
	"fmt"
	"net/http"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/features"
)

// KindUpgradeConnection is a failed protocol upgrade to a bidirectional stream.
const KindUpgradeConnection Kind = "UpgradeConnectionFailure"

const (
	CodeUpgradeConnection = "80017"
	DescUpgradeConnection = "Connection upgrade error"
)

func init() {
	registerGatedKind(KindUpgradeConnection, CodeUpgradeConnection, DescUpgradeConnection, features.WebSocket, func(e *Error) string {
		return fmt.Sprintf("failed to upgrade to a WebSocket connection: %v", e.cause)
	})
	registerGatedStatus(KindUpgradeConnection, metav1.StatusReasonBadRequest, http.StatusBadRequest)
}

// UpgradeConnection reports a failed connection upgrade.
func UpgradeConnection(cause error) *Error { return newError(KindUpgradeConnection, cause) }
