//go:build !kube_noclient

package errconv

import (
	"google.golang.org/grpc/codes"

	"kubeclient/pkg/errx"
)

func init() {
	byKind[errx.KindTransport] = codes.Unavailable
	byKind[errx.KindService] = codes.Unavailable
	byKind[errx.KindAuth] = codes.Unauthenticated
}
