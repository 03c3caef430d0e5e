//go:build !kube_notls

package features

func init() { compile(NativeTLS) }
