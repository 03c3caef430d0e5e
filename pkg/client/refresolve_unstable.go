//go:build !kube_noclient && kube_unstable

package client

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"kubeclient/pkg/discovery"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/request"
)

// ResolveReference fetches the object ref points at. A reference that names no
// object, or names one that does not exist or has a different UID, is a
// RefResolve error. Discovery and transport failures keep their own kinds.
func (c *Client) ResolveReference(ctx context.Context, resolver *discovery.Resolver, ref corev1.ObjectReference) (*unstructured.Unstructured, error) {
	if ref.Kind == "" || ref.APIVersion == "" {
		return nil, errx.RefResolve(fmt.Sprintf("reference %q has no apiVersion or kind", ref.Name))
	}
	if ref.Name == "" {
		return nil, errx.RefResolve(fmt.Sprintf("reference to %s %s has no name", ref.APIVersion, ref.Kind))
	}

	res, err := resolver.ResolveKind(ref.APIVersion, ref.Kind)
	if err != nil {
		return nil, err
	}
	target := request.Target{Resource: res, Name: ref.Name}
	if res.Namespaced {
		if ref.Namespace == "" {
			return nil, errx.RefResolve(fmt.Sprintf("%s %q is namespaced but the reference has no namespace", ref.Kind, ref.Name))
		}
		target.Namespace = ref.Namespace
	}

	obj, err := c.Get(ctx, target)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, errx.RefResolve(fmt.Sprintf("%s %s not found", ref.Kind, refName(ref))).WithContext("cause", err.Error())
		}
		return nil, err
	}
	if ref.UID != "" && obj.GetUID() != ref.UID {
		return nil, errx.RefResolve(fmt.Sprintf("%s %s has uid %s, reference expects %s", ref.Kind, refName(ref), obj.GetUID(), ref.UID))
	}
	return obj, nil
}

func refName(ref corev1.ObjectReference) string {
	if ref.Namespace == "" {
		return ref.Name
	}
	return ref.Namespace + "/" + ref.Name
}
