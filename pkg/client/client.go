//go:build !kube_noclient

// Package client sends requests to a Kubernetes-style API server and reports
// every failure as an *errx.Error.
//
// Requests pass through a stack of Layers before reaching the transport. A
// layer that fails on its own is reported as ServiceFailure; transport
// failures are TransportFailure or, for TLS problems, the kind of the TLS
// stack in this build; credential failures are AuthFailure; error responses
// from the server are Api.
//
// The package exists only when the client capability is compiled in.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	kubediscovery "k8s.io/client-go/discovery"

	"kubeclient/pkg/config"
	"kubeclient/pkg/discovery"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
	"kubeclient/pkg/request"
	"kubeclient/pkg/watch"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// Client is an API client built from an inferred Config.
type Client struct {
	cfg        *config.Config
	builder    *request.Builder
	httpClient *http.Client
	transport  *http.Transport
	auth       authenticator
	handler    Handler
	layers     []Layer
	executor   Executor
	logger     logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLayers appends request-processing layers. The first layer is outermost.
func WithLayers(layers ...Layer) Option {
	return func(c *Client) { c.layers = append(c.layers, layers...) }
}

// WithExecutor replaces the executor used by exec credential plugins.
func WithExecutor(e Executor) Option {
	return func(c *Client) { c.executor = e }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logr.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client. The configuration is validated against its capability
// set first, so a build or configuration without a needed capability fails
// here with ProxyProtocolDisabled or TlsRequired.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Capabilities.Has(features.Client) {
		return nil, errx.InferConfig(fmt.Errorf("capability %q is disabled", features.Client))
	}

	c := &Client{
		cfg:      cfg,
		executor: osExecutor{},
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	builder, err := request.NewBuilder(cfg.Rest.Host)
	if err != nil {
		return nil, err
	}
	c.builder = builder

	base, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	auth, err := newAuthenticator(cfg.Rest, c.executor)
	if err != nil {
		return nil, err
	}
	c.transport = base
	c.auth = auth
	c.httpClient = &http.Client{
		Transport: &authRoundTripper{auth: auth, next: base},
		Timeout:   cfg.Rest.Timeout,
	}

	c.handler = c.send
	for i := len(c.layers) - 1; i >= 0; i-- {
		c.handler = c.layers[i](c.handler)
	}
	return c, nil
}

// Builder returns the request builder for the configured server.
func (c *Client) Builder() *request.Builder { return c.builder }

// TLSStack returns the TLS implementation compiled into this build, or ""
// when there is none.
func (c *Client) TLSStack() features.Capability { return tlsStack }

// Capabilities returns the capability set the client was constructed with.
func (c *Client) Capabilities() features.Set { return c.cfg.Capabilities }

// Do sends req through the layer stack. Responses with a status of 400 or
// above are returned as Api errors and their body is consumed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.handler(req.WithContext(ctx))
	if err != nil {
		return nil, layerFailure(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(req, resp)
	}
	return resp, nil
}

// layerFailure reports an error returned by the layer stack. An *errx.Error is
// returned as is; anything else, including a layer's wrapping of an
// *errx.Error, becomes ServiceFailure with the whole chain as its source.
func layerFailure(err error) error {
	if e, ok := err.(*errx.Error); ok {
		return e
	}
	return errx.Service(err)
}

// send is the innermost handler.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransportError(err)
		c.logger.V(1).Info("request failed", "method", req.Method, "url", req.URL.String(), "error", classified.Error())
		return nil, classified
	}
	c.logger.V(2).Info("request", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// Request sends req and decodes a JSON response body into into.
func (c *Client) Request(ctx context.Context, req *http.Request, into any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errx.HTTP(err).WithContext("url", req.URL.String())
	}
	if into == nil {
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return errx.Serde(err).WithContext("url", req.URL.String())
	}
	return nil
}

// Get fetches a single object.
func (c *Client) Get(ctx context.Context, t request.Target) (*unstructured.Unstructured, error) {
	req, err := c.builder.Get(ctx, t)
	if err != nil {
		return nil, err
	}
	obj := &unstructured.Unstructured{}
	if err := c.Request(ctx, req, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// List fetches a collection.
func (c *Client) List(ctx context.Context, t request.Target, p request.ListParams) (*unstructured.UnstructuredList, error) {
	req, err := c.builder.List(ctx, t, p)
	if err != nil {
		return nil, err
	}
	list := &unstructured.UnstructuredList{}
	if err := c.Request(ctx, req, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Watch starts a watch and streams its events until ctx is done or the
// stream ends.
func (c *Client) Watch(ctx context.Context, t request.Target, p request.ListParams) (<-chan watch.Result, error) {
	req, err := c.builder.Watch(ctx, t, p)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return watch.Stream(ctx, resp.Body, c.cfg.Options.Watch.MaxLineLength), nil
}

// Resolver returns a discovery resolver that shares the client's transport
// and credentials.
func (c *Client) Resolver() (*discovery.Resolver, error) {
	dc, err := kubediscovery.NewDiscoveryClientForConfigAndClient(c.cfg.Rest, c.httpClient)
	if err != nil {
		return nil, errx.InferConfig(&config.InferConfigError{Source: config.SourceAny, Err: err})
	}
	return discovery.NewResolver(dc), nil
}

// statusError converts an error response into an Api error. Bodies that are
// not a Status are wrapped in a generic status for the response code.
func statusError(req *http.Request, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errx.HTTP(err).WithContext("url", req.URL.String())
	}

	var status struct {
		Kind string `json:"kind"`
	}
	if json.Unmarshal(data, &status) == nil && status.Kind == "Status" {
		statusErr := &apierrors.StatusError{}
		if err := json.Unmarshal(data, &statusErr.ErrStatus); err == nil {
			return errx.FromStatusError(statusErr)
		}
	}

	generic := apierrors.NewGenericServerResponse(resp.StatusCode, req.Method, schema.GroupResource{}, "", string(data), 0, false)
	return errx.FromStatusError(generic)
}
