//go:build !kube_noclient

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	apiwatch "k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/rest"

	"kubeclient/pkg/config"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
	"kubeclient/pkg/request"
)

var pods = request.Resource{Version: "v1", Resource: "pods", Namespaced: true}

func testConfig(host string) *config.Config {
	return &config.Config{
		Rest:         &rest.Config{Host: host},
		Capabilities: features.Compiled(),
		Options:      *config.DefaultOptions(),
	}
}

func newTestClient(t *testing.T, cfg *config.Config, opts ...Option) *Client {
	t.Helper()
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func TestNew_ValidatesConfig(t *testing.T) {
	t.Run("client capability disabled", func(t *testing.T) {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Capabilities = cfg.Capabilities.Without(features.Client)
		_, err := New(cfg)
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindInferConfig))
	})

	t.Run("https without tls capability", func(t *testing.T) {
		cfg := testConfig("https://127.0.0.1:1")
		cfg.Capabilities = features.NewSet(features.Client)
		_, err := New(cfg)
		assert.ErrorIs(t, err, errx.TLSRequired())
	})

	t.Run("unsupported proxy scheme", func(t *testing.T) {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Proxy = &url.URL{Scheme: "ftp", Host: "proxy:21"}
		_, err := New(cfg)
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindProxyProtocolUnsupported))
	})

	t.Run("socks5 disabled at runtime", func(t *testing.T) {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Proxy = &url.URL{Scheme: "socks5", Host: "h:1080"}
		cfg.Capabilities = cfg.Capabilities.Without(features.SOCKS5)
		_, err := New(cfg)
		require.Error(t, err)
		assert.Equal(t, `configured proxy "socks5://h:1080" requires the disabled feature "socks5"`, err.Error())
	})

	t.Run("bad host", func(t *testing.T) {
		cfg := testConfig("127.0.0.1:1")
		cfg.Rest.Insecure = true
		_, err := New(cfg)
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindBuildRequest))
	})
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/namespaces/default/pods/web-0", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"apiVersion":"v1","kind":"Pod","metadata":{"name":"web-0","namespace":"default"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	obj, err := c.Get(context.Background(), request.Target{Resource: pods, Namespace: "default", Name: "web-0"})
	require.NoError(t, err)
	assert.Equal(t, "web-0", obj.GetName())
	assert.Equal(t, "Pod", obj.GetKind())
}

func TestClient_StatusResponses(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		wantCode int32
		check    func(error) bool
	}{
		{
			name:     "status body",
			code:     http.StatusNotFound,
			body:     `{"kind":"Status","apiVersion":"v1","status":"Failure","message":"pods \"web-0\" not found","reason":"NotFound","code":404}`,
			wantCode: 404,
			check:    apierrors.IsNotFound,
		},
		{
			name:     "gone",
			code:     http.StatusGone,
			body:     `{"kind":"Status","apiVersion":"v1","status":"Failure","message":"too old","reason":"Expired","code":410}`,
			wantCode: 410,
			check:    errx.IsGone,
		},
		{
			name:     "plain text body",
			code:     http.StatusInternalServerError,
			body:     "upstream exploded",
			wantCode: 500,
			check:    apierrors.IsInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.code, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, testConfig(srv.URL))
			_, err := c.Get(context.Background(), request.Target{Resource: pods, Namespace: "default", Name: "web-0"})
			require.Error(t, err)
			assert.True(t, errx.IsKind(err, errx.KindAPI))
			assert.Equal(t, tt.wantCode, errx.StatusCode(err))
			assert.True(t, tt.check(err))
		})
	}
}

func TestClient_SerdeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"kind":`)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	_, err := c.List(context.Background(), request.Target{Resource: pods}, request.ListParams{})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindSerde))
	assert.Contains(t, err.Error(), "Error deserializing response")
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	c := newTestClient(t, testConfig(host))
	_, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindTransport))

	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr), "source chain keeps the *url.Error")
}

func TestClient_ServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	t.Run("layer error", func(t *testing.T) {
		boom := errors.New("circuit open")
		failing := func(next Handler) Handler {
			return func(*http.Request) (*http.Response, error) { return nil, boom }
		}
		c := newTestClient(t, testConfig(srv.URL), WithLayers(failing))
		_, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindService))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "ServiceError: circuit open", err.Error())
	})

	t.Run("rate limit cancelled", func(t *testing.T) {
		c := newTestClient(t, testConfig(srv.URL), WithLayers(QPS(1, 1)))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Get(ctx, request.Target{Resource: pods, Name: "x"})
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindService))
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("client errors from layers pass through", func(t *testing.T) {
		inner := errx.HTTP(errors.New("bad header"))
		layer := func(next Handler) Handler {
			return func(*http.Request) (*http.Response, error) { return nil, inner }
		}
		c := newTestClient(t, testConfig(srv.URL), WithLayers(layer))
		_, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		assert.Same(t, inner, err)
	})

	t.Run("wrapped client errors keep the layer annotation", func(t *testing.T) {
		inner := errx.Transport(errors.New("conn reset"))
		layer := func(next Handler) Handler {
			return func(*http.Request) (*http.Response, error) {
				return nil, fmt.Errorf("tenant quota layer: %w", inner)
			}
		}
		c := newTestClient(t, testConfig(srv.URL), WithLayers(layer))
		_, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindService))
		assert.Equal(t, "ServiceError: tenant quota layer: TransportError: conn reset", err.Error())

		var got *errx.Error
		require.ErrorAs(t, errors.Unwrap(errors.Unwrap(err)), &got)
		assert.Same(t, inner, got)
		assert.ErrorIs(t, err, inner)
	})
}

func TestClient_Layers(t *testing.T) {
	var gotAgent, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Trace")
		writeJSON(w, http.StatusOK, `{"apiVersion":"v1","kind":"Pod","metadata":{"name":"x"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL), WithLayers(UserAgent("kubeclient/test"), Header("X-Trace", "abc")))
	_, err := c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "kubeclient/test", gotAgent)
	assert.Equal(t, "abc", gotHeader)
}

func TestClient_Watch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("watch"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, `{"type":"ADDED","object":{"apiVersion":"v1","kind":"Pod","metadata":{"name":"a"}}}`)
		_, _ = fmt.Fprintln(w, `{"type":"ERROR","object":{"kind":"Status","apiVersion":"v1","status":"Failure","reason":"Expired","code":410}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	results, err := c.Watch(context.Background(), request.Target{Resource: pods}, request.ListParams{ResourceVersion: "1"})
	require.NoError(t, err)

	var types []apiwatch.EventType
	var errs []error
	for r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		types = append(types, r.Event.Type)
	}
	assert.Equal(t, []apiwatch.EventType{apiwatch.Added}, types)
	require.Len(t, errs, 1)
	assert.True(t, errx.IsGone(errs[0]))
}

func TestClient_WatchLineLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, `{"type":"ADDED","object":{"apiVersion":"v1","kind":"Pod","metadata":{"name":"`+strings.Repeat("a", 200)+`"}}}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Options.Watch.MaxLineLength = 64
	c := newTestClient(t, cfg)
	results, err := c.Watch(context.Background(), request.Target{Resource: pods}, request.ListParams{})
	require.NoError(t, err)

	r := <-results
	assert.ErrorIs(t, r.Err, errx.LinesCodecMaxLineLengthExceeded())
}

func TestClient_HTTPProxy(t *testing.T) {
	var proxied string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.Host
		writeJSON(w, http.StatusOK, `{"apiVersion":"v1","kind":"Pod","metadata":{"name":"x"}}`)
	}))
	defer proxy.Close()

	cfg := testConfig("http://api.cluster.invalid:8080")
	proxyURL, err := url.Parse(proxy.URL)
	require.NoError(t, err)
	cfg.Proxy = proxyURL

	c := newTestClient(t, cfg)
	_, err = c.Get(context.Background(), request.Target{Resource: pods, Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "api.cluster.invalid:8080", proxied)
}

func TestClient_BearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"apiVersion":"v1","kind":"Pod","metadata":{"name":"x"}}`)
	}))
	defer srv.Close()

	t.Run("static", func(t *testing.T) {
		cfg := testConfig(srv.URL)
		cfg.Rest.BearerToken = "static-token"
		_, err := newTestClient(t, cfg).Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer static-token", got)
	})

	t.Run("token file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0o600))
		cfg := testConfig(srv.URL)
		cfg.Rest.BearerTokenFile = path
		_, err := newTestClient(t, cfg).Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer file-token", got)
	})

	t.Run("missing token file", func(t *testing.T) {
		cfg := testConfig(srv.URL)
		cfg.Rest.BearerTokenFile = filepath.Join(t.TempDir(), "absent")
		_, err := newTestClient(t, cfg).Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		require.Error(t, err)
		assert.True(t, errx.IsKind(err, errx.KindAuth))

		var authErr *AuthError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, "token-file", authErr.Provider)
		assert.ErrorIs(t, err, os.ErrNotExist)

		e, ok := errx.As(err)
		require.True(t, ok)
		assert.Equal(t, "Get", e.Context()["op"])
		assert.Contains(t, e.Context()["url"], srv.URL)
	})

	t.Run("basic", func(t *testing.T) {
		cfg := testConfig(srv.URL)
		cfg.Rest.Username, cfg.Rest.Password = "admin", "secret"
		_, err := newTestClient(t, cfg).Get(context.Background(), request.Target{Resource: pods, Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, "Basic YWRtaW46c2VjcmV0", got)
	})
}

func TestClient_Resolver(t *testing.T) {
	c := newTestClient(t, testConfig("http://127.0.0.1:1"))
	r, err := c.Resolver()
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestClient_CapabilitiesAndStack(t *testing.T) {
	c := newTestClient(t, testConfig("http://127.0.0.1:1"))
	assert.Equal(t, features.Compiled().String(), c.Capabilities().String())
	if stack := c.TLSStack(); stack != "" {
		assert.True(t, features.Enabled(stack))
	}
	assert.NotNil(t, c.Builder())
}
