//go:build !kube_noclient && boringcrypto

package client

import (
	"kubeclient/pkg/config"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

// tlsStack is the TLS implementation requests use in this build. With
// boringcrypto, crypto/tls is backed by BoringSSL.
const tlsStack = features.BoringTLS

func tlsFailure(err error) *errx.Error { return errx.BoringTLS(err) }

func tlsSetupFailure(_ *config.Config, err error) *errx.Error { return tlsFailure(err) }
