//go:build !kube_noclient && kube_nosocks5

package client

import (
	"net"
	"net/url"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

func socksDialer(proxyURL *url.URL, _ features.Set, _ *net.Dialer) (dialFunc, error) {
	return nil, errx.ProxyProtocolDisabled(proxyURL, features.SOCKS5)
}
