//go:build !kube_nosocks5

package features

func init() { compile(SOCKS5) }
