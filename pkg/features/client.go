//go:build !kube_noclient

package features

func init() { compile(Client) }
