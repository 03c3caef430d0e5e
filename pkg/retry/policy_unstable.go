//go:build kube_unstable

package retry

import "kubeclient/pkg/errx"

func init() { byKind[errx.KindRefResolve] = ActionFailFast }
