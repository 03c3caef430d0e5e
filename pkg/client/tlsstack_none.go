//go:build !kube_noclient && kube_notls && !boringcrypto

package client

import (
	"kubeclient/pkg/config"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

// tlsStack is empty: this build has no TLS implementation.
const tlsStack features.Capability = ""

func tlsFailure(err error) *errx.Error {
	return errx.TLSRequired().WithContext("tls.error", err.Error())
}

// tlsSetupFailure reports TLS settings that cannot be loaded. Without a TLS
// stack they can only be a configuration defect.
func tlsSetupFailure(cfg *config.Config, err error) *errx.Error {
	return errx.InferConfig(&config.InferConfigError{Source: cfg.Source, Err: err})
}
