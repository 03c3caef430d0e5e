//go:build boringcrypto

package errconv

import (
	"google.golang.org/grpc/codes"

	"kubeclient/pkg/errx"
)

func init() { byKind[errx.KindTLSBoring] = codes.Unavailable }
