//go:build kube_unstable

package features

func init() { compile(UnstableClient) }
