//go:build !kube_notls

package retry

import "kubeclient/pkg/errx"

func init() { byKind[errx.KindTLSNative] = ActionFailFast }
