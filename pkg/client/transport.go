//go:build !kube_noclient

package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"k8s.io/client-go/rest"

	"kubeclient/pkg/config"
	"kubeclient/pkg/errx"
)

func newTransport(cfg *config.Config) (*http.Transport, error) {
	// Credentials are applied by authRoundTripper; only TLS settings are used here.
	tlsOnly := rest.CopyConfig(cfg.Rest)
	tlsOnly.ExecProvider = nil
	tlsOnly.AuthProvider = nil
	tlsConfig, err := rest.TLSConfigFor(tlsOnly)
	if err != nil {
		return nil, tlsSetupFailure(cfg, err)
	}

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	t := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 25,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	if cfg.Proxy != nil {
		switch strings.ToLower(cfg.Proxy.Scheme) {
		case "http", "https":
			t.Proxy = http.ProxyURL(cfg.Proxy)
		case "socks5", "socks5h":
			dial, err := socksDialer(cfg.Proxy, cfg.Capabilities, dialer)
			if err != nil {
				return nil, err
			}
			t.DialContext = dial
		default:
			return nil, errx.ProxyProtocolUnsupported(cfg.Proxy)
		}
	}
	return t, nil
}

// classifyTransportError converts an error from http.Client.Do. Errors raised
// by the client's own round trippers are already *errx.Error; they keep their
// kind and the request the *url.Error named is added to their context.
func classifyTransportError(err error) *errx.Error {
	if e, ok := errx.As(err); ok {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return e.WithContextMap(map[string]any{"op": urlErr.Op, "url": urlErr.URL})
		}
		return e
	}
	if isTLSError(err) {
		return tlsFailure(err)
	}
	return errx.Transport(err)
}

func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &recordErr),
		errors.As(err, &alertErr),
		errors.As(err, &authorityErr),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidErr):
		return true
	}
	return false
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)
