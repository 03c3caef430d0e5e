//go:build !kube_noclient && !kube_nosocks5

package client

import (
	"context"
	"net"
	"net/url"

	"golang.org/x/net/proxy"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

func socksDialer(proxyURL *url.URL, caps features.Set, forward *net.Dialer) (dialFunc, error) {
	if !caps.Has(features.SOCKS5) {
		return nil, errx.ProxyProtocolDisabled(proxyURL, features.SOCKS5)
	}
	d, err := proxy.FromURL(proxyURL, forward)
	if err != nil {
		return nil, errx.ProxyProtocolUnsupported(proxyURL).WithContext("proxy.error", err.Error())
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}
