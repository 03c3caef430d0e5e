//go:build kube_ws

package retry

import "kubeclient/pkg/errx"

func init() { byKind[errx.KindUpgradeConnection] = ActionRetry }
