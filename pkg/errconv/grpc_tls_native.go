//go:build !kube_notls

package errconv

import (
	"google.golang.org/grpc/codes"

	"kubeclient/pkg/errx"
)

func init() { byKind[errx.KindTLSNative] = codes.Unavailable }
