//go:build !kube_noclient

package retry

import "kubeclient/pkg/errx"

func init() {
	byKind[errx.KindTransport] = ActionRetry
	byKind[errx.KindService] = ActionRetry
	byKind[errx.KindAuth] = ActionFailFast
}
