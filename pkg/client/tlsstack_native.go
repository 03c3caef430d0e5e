//go:build !kube_noclient && !kube_notls && !boringcrypto

package client

import (
	"kubeclient/pkg/config"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

// tlsStack is the TLS implementation requests use in this build.
const tlsStack = features.NativeTLS

func tlsFailure(err error) *errx.Error { return errx.NativeTLS(err) }

func tlsSetupFailure(_ *config.Config, err error) *errx.Error { return tlsFailure(err) }
