package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubeclient/pkg/errx"
)

var (
	pods        = Resource{Version: "v1", Resource: "pods", Namespaced: true}
	nodes       = Resource{Version: "v1", Resource: "nodes"}
	deployments = Resource{Group: "apps", Version: "v1", Resource: "deployments", Namespaced: true}
)

func TestPath(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		want    string
		wantErr error
	}{
		{name: "core collection", target: Target{Resource: pods}, want: "/api/v1/pods"},
		{name: "core namespaced", target: Target{Resource: pods, Namespace: "default"}, want: "/api/v1/namespaces/default/pods"},
		{name: "group object", target: Target{Resource: deployments, Namespace: "web", Name: "api"}, want: "/apis/apps/v1/namespaces/web/deployments/api"},
		{name: "subresource", target: Target{Resource: pods, Namespace: "default", Name: "web-0", Subresource: "log"}, want: "/api/v1/namespaces/default/pods/web-0/log"},
		{name: "cluster scoped", target: Target{Resource: nodes, Name: "n1"}, want: "/api/v1/nodes/n1"},
		{name: "missing version", target: Target{Resource: Resource{Resource: "pods"}}, wantErr: ErrMissingVersion},
		{name: "missing resource", target: Target{Resource: Resource{Version: "v1"}}, wantErr: ErrMissingResource},
		{name: "namespace on cluster scoped", target: Target{Resource: nodes, Namespace: "default"}, wantErr: ErrClusterScoped},
		{name: "invalid namespace", target: Target{Resource: pods, Namespace: "Not_Valid"}, wantErr: ErrInvalidName},
		{name: "invalid name", target: Target{Resource: pods, Name: "a/b"}, wantErr: ErrInvalidName},
		{name: "subresource without name", target: Target{Resource: pods, Subresource: "status"}, wantErr: ErrMissingName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Path(tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("https://cluster.example:6443/")
	require.NoError(t, err)
	return b
}

func TestNewBuilder(t *testing.T) {
	for _, base := range []string{"not a url", "http://[::1", "/relative"} {
		t.Run(base, func(t *testing.T) {
			_, err := NewBuilder(base)
			require.Error(t, err)
			assert.True(t, errx.IsKind(err, errx.KindBuildRequest))
		})
	}
}

func TestBuilder_List(t *testing.T) {
	b := newBuilder(t)
	req, err := b.List(context.Background(), Target{Resource: pods, Namespace: "default", Name: "ignored"}, ListParams{
		LabelSelector: "app=web",
		FieldSelector: "status.phase=Running",
		Limit:         50,
		Continue:      "tok",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/namespaces/default/pods", req.URL.Path)
	want := map[string][]string{
		"labelSelector": {"app=web"},
		"fieldSelector": {"status.phase=Running"},
		"limit":         {"50"},
		"continue":      {"tok"},
	}
	if diff := cmp.Diff(want, map[string][]string(req.URL.Query())); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestBuilder_Watch(t *testing.T) {
	b := newBuilder(t)
	req, err := b.Watch(context.Background(), Target{Resource: pods}, ListParams{ResourceVersion: "42", TimeoutSeconds: 290, Limit: 10})
	require.NoError(t, err)

	q := req.URL.Query()
	assert.Equal(t, "true", q.Get("watch"))
	assert.Equal(t, "42", q.Get("resourceVersion"))
	assert.Equal(t, "290", q.Get("timeoutSeconds"))
	assert.Empty(t, q.Get("limit"))
}

func TestBuilder_InvalidSelector(t *testing.T) {
	b := newBuilder(t)

	_, err := b.List(context.Background(), Target{Resource: pods}, ListParams{LabelSelector: "app in (web"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindBuildRequest))
	assert.ErrorIs(t, err, ErrInvalidSelector)

	_, err = b.Watch(context.Background(), Target{Resource: pods}, ListParams{FieldSelector: "status.phase"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestBuilder_Create(t *testing.T) {
	b := newBuilder(t)
	req, err := b.Create(context.Background(), Target{Resource: pods, Namespace: "default"}, map[string]string{"kind": "Pod"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Pod"}`, string(body))
}

func TestBuilder_CreateUnencodableBody(t *testing.T) {
	b := newBuilder(t)
	_, err := b.Create(context.Background(), Target{Resource: pods, Namespace: "default"}, make(chan int))
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindBuildRequest))
	assert.ErrorIs(t, err, ErrInvalidBody)

	var reqErr *Error
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "create", reqErr.Op)
	assert.Equal(t, "/api/v1/namespaces/default/pods", reqErr.Path)
}

func TestBuilder_NamedVerbsNeedName(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	target := Target{Resource: pods, Namespace: "default"}

	_, err := b.Get(ctx, target)
	assert.ErrorIs(t, err, ErrMissingName)
	_, err = b.Replace(ctx, target, struct{}{})
	assert.ErrorIs(t, err, ErrMissingName)
	_, err = b.Delete(ctx, target)
	assert.ErrorIs(t, err, ErrMissingName)

	target.Name = "web-0"
	req, err := b.Delete(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/v1/namespaces/default/pods/web-0", req.URL.Path)
}

func TestBuilder_HTTPLayerFailure(t *testing.T) {
	b := newBuilder(t)
	//nolint:staticcheck // nil context forces net/http to fail
	_, err := b.Get(nil, Target{Resource: pods, Name: "web-0"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindHTTP))
	assert.Contains(t, err.Error(), "HttpError")
}

func TestError_Format(t *testing.T) {
	err := &Error{Op: "get", Path: "/api/v1/pods/x", Err: ErrMissingName}
	assert.Equal(t, "get /api/v1/pods/x: name is required", err.Error())
	assert.Equal(t, "get: name is required", (&Error{Op: "get", Err: ErrMissingName}).Error())
}
