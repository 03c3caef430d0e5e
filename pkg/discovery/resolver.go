// Package discovery resolves group, version, kind and resource names to
// request.Resource descriptors using the API server's discovery endpoints.
//
// A name that cannot be resolved is reported as errx.Discovery wrapping the
// matching *errx.DiscoveryError. Server status responses are errx.Api, and any
// other failure to talk to the discovery endpoint is errx.HttpError.
package discovery

import (
	"errors"
	"slices"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/request"
)

// Resolver resolves resource names against a discovery client.
type Resolver struct {
	client discovery.DiscoveryInterface
}

// NewResolver returns a Resolver backed by client.
func NewResolver(client discovery.DiscoveryInterface) *Resolver {
	return &Resolver{client: client}
}

// Group returns the API group named name. The core group is "".
func (r *Resolver) Group(name string) (metav1.APIGroup, error) {
	groups, err := r.client.ServerGroups()
	if err != nil {
		return metav1.APIGroup{}, convert(err)
	}
	for _, g := range groups.Groups {
		if g.Name != name {
			continue
		}
		if len(g.Versions) == 0 {
			return metav1.APIGroup{}, errx.Discovery(errx.EmptyAPIGroup(displayGroup(name)))
		}
		return g, nil
	}
	return metav1.APIGroup{}, errx.Discovery(errx.MissingAPIGroup(displayGroup(name)))
}

// PreferredVersion returns the server's preferred group version for group.
func (r *Resolver) PreferredVersion(group string) (schema.GroupVersion, error) {
	g, err := r.Group(group)
	if err != nil {
		return schema.GroupVersion{}, err
	}
	preferred := g.PreferredVersion.GroupVersion
	if preferred == "" {
		preferred = g.Versions[0].GroupVersion
	}
	return parseGroupVersion(preferred)
}

// ResolveKind resolves a kind in apiVersion ("v1", "apps/v1") to its resource.
// An apiVersion without a version part ("apps/") resolves against the
// preferred version of the group.
func (r *Resolver) ResolveKind(apiVersion, kind string) (request.Resource, error) {
	gv, err := r.groupVersion(apiVersion)
	if err != nil {
		return request.Resource{}, err
	}
	resources, err := r.resources(gv)
	if err != nil {
		return request.Resource{}, err
	}
	for _, res := range resources {
		if res.Kind == kind && !isSubresource(res.Name) {
			return toResource(gv, res), nil
		}
	}
	return request.Resource{}, errx.Discovery(errx.MissingKind(gv.WithKind(kind).String()))
}

// ResolveResource resolves a plural resource name, a singular name or a short
// name in apiVersion to its resource.
func (r *Resolver) ResolveResource(apiVersion, name string) (request.Resource, error) {
	gv, err := r.groupVersion(apiVersion)
	if err != nil {
		return request.Resource{}, err
	}
	resources, err := r.resources(gv)
	if err != nil {
		return request.Resource{}, err
	}
	lower := strings.ToLower(name)
	for _, res := range resources {
		if isSubresource(res.Name) {
			continue
		}
		if res.Name == lower || res.SingularName == lower || slices.Contains(res.ShortNames, lower) {
			return toResource(gv, res), nil
		}
	}
	return request.Resource{}, errx.Discovery(errx.MissingResource(gv.WithResource(name).String()))
}

func (r *Resolver) groupVersion(apiVersion string) (schema.GroupVersion, error) {
	if group, ok := strings.CutSuffix(apiVersion, "/"); ok && group != "" && !strings.Contains(group, "/") {
		return r.PreferredVersion(group)
	}
	return parseGroupVersion(apiVersion)
}

func (r *Resolver) resources(gv schema.GroupVersion) ([]metav1.APIResource, error) {
	list, err := r.client.ServerResourcesForGroupVersion(gv.String())
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, errx.Discovery(errx.MissingAPIGroup(gv.String()))
		}
		return nil, convert(err)
	}
	return list.APIResources, nil
}

func parseGroupVersion(apiVersion string) (schema.GroupVersion, error) {
	if apiVersion == "" {
		return schema.GroupVersion{}, errx.Discovery(errx.InvalidGroupVersion(`""`))
	}
	gv, err := schema.ParseGroupVersion(apiVersion)
	if err != nil || gv.Version == "" {
		return schema.GroupVersion{}, errx.Discovery(errx.InvalidGroupVersion(apiVersion))
	}
	return gv, nil
}

// convert maps a discovery client failure onto a ClientError.
func convert(err error) error {
	if e, ok := err.(*errx.Error); ok {
		return e
	}
	if e, ok := errx.As(err); ok {
		return e.WithContext("discovery.error", err.Error())
	}
	var statusErr *apierrors.StatusError
	if errors.As(err, &statusErr) {
		return errx.FromStatusError(statusErr)
	}
	return errx.HTTP(err)
}

func toResource(gv schema.GroupVersion, res metav1.APIResource) request.Resource {
	return request.Resource{
		Group:      gv.Group,
		Version:    gv.Version,
		Resource:   res.Name,
		Namespaced: res.Namespaced,
	}
}

func isSubresource(name string) bool {
	return strings.Contains(name, "/")
}

func displayGroup(name string) string {
	if name == "" {
		return "core"
	}
	return name
}
