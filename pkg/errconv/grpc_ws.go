//go:build kube_ws

package errconv

import (
	"google.golang.org/grpc/codes"

	"kubeclient/pkg/errx"
)

func init() { byKind[errx.KindUpgradeConnection] = codes.Unavailable }
