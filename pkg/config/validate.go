package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"k8s.io/client-go/rest"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

// ResolveProxy parses a proxy URL and checks that its scheme is supported by
// caps. An empty raw value means no proxy.
func ResolveProxy(raw string, caps features.Set) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errx.InferConfig(&InferConfigError{
			Source: SourceProxy,
			Err:    fmt.Errorf("%w: %v", ErrInvalidProxyURL, err),
		})
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, nil
	case "socks5", "socks5h":
		if !caps.Has(features.SOCKS5) {
			return nil, errx.ProxyProtocolDisabled(u, features.SOCKS5)
		}
		return u, nil
	default:
		return nil, errx.ProxyProtocolUnsupported(u)
	}
}

// Validate checks the configuration against its capability set. An https
// server needs a TLS stack, and so does an https proxy.
func (c *Config) Validate() error {
	if c == nil || c.Rest == nil {
		return errx.InferConfig(&InferConfigError{Source: SourceAny, Err: errors.New("no rest config")})
	}
	if !c.Capabilities.HasTLS() {
		if RequiresTLS(c.Rest) {
			return errx.TLSRequired().WithContext("host", c.Rest.Host)
		}
		if c.Proxy != nil && strings.EqualFold(c.Proxy.Scheme, "https") {
			return errx.TLSRequired().WithContext("proxy", c.Proxy.String())
		}
	}
	return nil
}

// RequiresTLS reports whether the server of cfg must be reached over TLS. A
// host without a scheme uses https only when CA, client certificate or
// insecure settings are present, as in client-go.
func RequiresTLS(cfg *rest.Config) bool {
	if cfg == nil || cfg.Host == "" {
		return false
	}
	lower := strings.ToLower(cfg.Host)
	if strings.HasPrefix(lower, "http://") {
		return false
	}
	if strings.HasPrefix(lower, "https://") {
		return true
	}
	tls := cfg.TLSClientConfig
	hasCA := len(tls.CAFile) != 0 || len(tls.CAData) != 0
	hasCert := len(tls.CertFile) != 0 || len(tls.CertData) != 0
	return hasCA || hasCert || tls.Insecure
}
