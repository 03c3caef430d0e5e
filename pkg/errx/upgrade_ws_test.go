//go:build kube_ws

package errx

import (
	"errors"
	"testing"
)

func TestUpgradeConnection(t *testing.T) {
	cause := errors.New("missing Upgrade header")
	err := UpgradeConnection(cause)

	if err.Kind() != KindUpgradeConnection {
		t.Errorf("Kind() = %q, want %q", err.Kind(), KindUpgradeConnection)
	}
	if err.Error() != "failed to upgrade to a WebSocket connection: missing Upgrade header" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}
