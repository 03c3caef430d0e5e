//go:build !kube_noclient && !kube_notls && !boringcrypto

package client

import (
	"context"
	"crypto/tls"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
	"kubeclient/pkg/request"
)

func TestClient_NativeTLSUntrusted(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	_, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindTLSNative), "got %v", err)
	assert.Contains(t, err.Error(), "native tls error")

	var verifyErr *tls.CertificateVerificationError
	assert.True(t, errors.As(err, &verifyErr))
}

func TestClient_NativeTLSTrusted(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"apiVersion":"v1","kind":"Pod","metadata":{"name":"x"}}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Rest.TLSClientConfig.CAData = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	c := newTestClient(t, cfg)
	assert.Equal(t, features.NativeTLS, c.TLSStack())

	obj, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", obj.GetName())
}

func TestNew_TLSConfigFailure(t *testing.T) {
	cfg := testConfig("https://127.0.0.1:1")
	cfg.Rest.TLSClientConfig.CAFile = filepath.Join(t.TempDir(), "missing-ca.pem")
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindTLSNative))
}
