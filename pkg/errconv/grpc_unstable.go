//go:build kube_unstable

package errconv

import (
	"google.golang.org/grpc/codes"

	"kubeclient/pkg/errx"
)

func init() { byKind[errx.KindRefResolve] = codes.NotFound }
