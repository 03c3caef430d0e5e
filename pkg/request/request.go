// Package request assembles HTTP requests for Kubernetes-style resource
// endpoints from a resource descriptor.
//
// Descriptor and parameter problems are reported as errx.BuildRequest with a
// *request.Error source; a failure of net/http itself is errx.HTTP.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	pathvalidation "k8s.io/apimachinery/pkg/api/validation/path"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/validation"

	"kubeclient/pkg/errx"
)

// Resource describes an API resource endpoint.
type Resource struct {
	Group      string
	Version    string
	Resource   string
	Namespaced bool
}

// Target is a Resource narrowed to a namespace and, optionally, an object.
type Target struct {
	Resource
	Namespace   string
	Name        string
	Subresource string
}

// ListParams are the query parameters shared by list and watch.
type ListParams struct {
	LabelSelector   string
	FieldSelector   string
	ResourceVersion string
	Limit           int64
	Continue        string
	TimeoutSeconds  int64
}

// Builder creates requests against a base URL.
type Builder struct {
	base *url.URL
}

// NewBuilder returns a Builder for the API server at base.
func NewBuilder(base string) (*Builder, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, errx.BuildRequest(&Error{Op: "base", Err: err})
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errx.BuildRequest(&Error{Op: "base", Err: fmt.Errorf("base url %q needs a scheme and host", base)})
	}
	return &Builder{base: u}, nil
}

// Path returns the URL path of t, validating each segment.
func Path(t Target) (string, error) {
	if t.Version == "" {
		return "", ErrMissingVersion
	}
	if t.Resource.Resource == "" {
		return "", ErrMissingResource
	}
	segments := []string{"apis", t.Group, t.Version}
	if t.Group == "" {
		segments = []string{"api", t.Version}
	}
	if t.Namespace != "" {
		if !t.Namespaced {
			return "", fmt.Errorf("%w: %s cannot take namespace %q", ErrClusterScoped, t.Resource.Resource, t.Namespace)
		}
		if errs := validation.IsDNS1123Label(t.Namespace); len(errs) > 0 {
			return "", fmt.Errorf("%w: namespace %q: %s", ErrInvalidName, t.Namespace, strings.Join(errs, "; "))
		}
		segments = append(segments, "namespaces", t.Namespace)
	}
	segments = append(segments, t.Resource.Resource)
	if t.Name != "" {
		if errs := pathvalidation.IsValidPathSegmentName(t.Name); len(errs) > 0 {
			return "", fmt.Errorf("%w: %q: %s", ErrInvalidName, t.Name, strings.Join(errs, "; "))
		}
		segments = append(segments, t.Name)
	}
	if t.Subresource != "" {
		if t.Name == "" {
			return "", fmt.Errorf("%w: subresource %q needs an object", ErrMissingName, t.Subresource)
		}
		segments = append(segments, t.Subresource)
	}
	return "/" + path.Join(segments...), nil
}

// List builds a GET collection request.
func (b *Builder) List(ctx context.Context, t Target, p ListParams) (*http.Request, error) {
	t.Name, t.Subresource = "", ""
	query, err := p.query("list", false)
	if err != nil {
		return nil, err
	}
	return b.build(ctx, "list", http.MethodGet, t, query, nil)
}

// Watch builds a streaming watch request over a collection.
func (b *Builder) Watch(ctx context.Context, t Target, p ListParams) (*http.Request, error) {
	t.Name, t.Subresource = "", ""
	query, err := p.query("watch", true)
	if err != nil {
		return nil, err
	}
	return b.build(ctx, "watch", http.MethodGet, t, query, nil)
}

// Get builds a request for a single object.
func (b *Builder) Get(ctx context.Context, t Target) (*http.Request, error) {
	if t.Name == "" {
		return nil, errx.BuildRequest(&Error{Op: "get", Err: ErrMissingName})
	}
	return b.build(ctx, "get", http.MethodGet, t, nil, nil)
}

// Create builds a POST request with obj encoded as JSON.
func (b *Builder) Create(ctx context.Context, t Target, obj any) (*http.Request, error) {
	t.Name = ""
	return b.build(ctx, "create", http.MethodPost, t, nil, obj)
}

// Replace builds a PUT request for a named object.
func (b *Builder) Replace(ctx context.Context, t Target, obj any) (*http.Request, error) {
	if t.Name == "" {
		return nil, errx.BuildRequest(&Error{Op: "replace", Err: ErrMissingName})
	}
	return b.build(ctx, "replace", http.MethodPut, t, nil, obj)
}

// Delete builds a DELETE request for a named object.
func (b *Builder) Delete(ctx context.Context, t Target) (*http.Request, error) {
	if t.Name == "" {
		return nil, errx.BuildRequest(&Error{Op: "delete", Err: ErrMissingName})
	}
	return b.build(ctx, "delete", http.MethodDelete, t, nil, nil)
}

func (b *Builder) build(ctx context.Context, op, method string, t Target, query url.Values, obj any) (*http.Request, error) {
	p, err := Path(t)
	if err != nil {
		return nil, errx.BuildRequest(&Error{Op: op, Err: err})
	}

	var body []byte
	if obj != nil {
		body, err = json.Marshal(obj)
		if err != nil {
			return nil, errx.BuildRequest(&Error{Op: op, Path: p, Err: fmt.Errorf("%w: %v", ErrInvalidBody, err)})
		}
	}

	u := *b.base
	u.Path = strings.TrimSuffix(b.base.Path, "/") + p
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, errx.HTTP(err).WithContext("url", u.String())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (p ListParams) query(op string, watch bool) (url.Values, error) {
	q := url.Values{}
	if p.LabelSelector != "" {
		if _, err := labels.Parse(p.LabelSelector); err != nil {
			return nil, errx.BuildRequest(&Error{Op: op, Err: fmt.Errorf("%w: label selector: %v", ErrInvalidSelector, err)})
		}
		q.Set("labelSelector", p.LabelSelector)
	}
	if p.FieldSelector != "" {
		if _, err := fields.ParseSelector(p.FieldSelector); err != nil {
			return nil, errx.BuildRequest(&Error{Op: op, Err: fmt.Errorf("%w: field selector: %v", ErrInvalidSelector, err)})
		}
		q.Set("fieldSelector", p.FieldSelector)
	}
	if p.ResourceVersion != "" {
		q.Set("resourceVersion", p.ResourceVersion)
	}
	if p.TimeoutSeconds > 0 {
		q.Set("timeoutSeconds", strconv.FormatInt(p.TimeoutSeconds, 10))
	}
	if watch {
		q.Set("watch", "true")
		q.Set("allowWatchBookmarks", "true")
		return q, nil
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.FormatInt(p.Limit, 10))
	}
	if p.Continue != "" {
		q.Set("continue", p.Continue)
	}
	return q, nil
}
