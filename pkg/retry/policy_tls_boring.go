//go:build boringcrypto

package retry

import "kubeclient/pkg/errx"

func init() { byKind[errx.KindTLSBoring] = ActionFailFast }
