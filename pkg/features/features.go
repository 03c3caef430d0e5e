// Package features describes the optional capabilities compiled into this build
// and the capability set a client is constructed with.
//
// Capabilities are selected with build tags:
//
//	client           on, disabled by kube_noclient
//	native-tls       on, disabled by kube_notls
//	boring-tls       off, enabled by boringcrypto (GOEXPERIMENT=boringcrypto)
//	ws               off, enabled by kube_ws
//	unstable-client  off, enabled by kube_unstable
//	socks5           on, disabled by kube_nosocks5
//
// Error kinds and construction sites that depend on a capability are compiled
// under the same constraint, so using them in a build without it fails to compile.
// Only the runtime-observable outcomes (a disabled proxy protocol, a missing TLS
// stack) are reported through a Set at configuration time.
package features

import (
	"sort"
	"strings"
)

// Capability names an optional, build-time selectable feature.
type Capability string

const (
	Client         Capability = "client"
	NativeTLS      Capability = "native-tls"
	BoringTLS      Capability = "boring-tls"
	WebSocket      Capability = "ws"
	UnstableClient Capability = "unstable-client"
	SOCKS5         Capability = "socks5"
)

var known = []Capability{Client, NativeTLS, BoringTLS, WebSocket, UnstableClient, SOCKS5}

// compiled is filled by the init functions of the build-constrained files.
var compiled = map[Capability]struct{}{}

func compile(c Capability) { compiled[c] = struct{}{} }

// Known returns every capability this module knows about, compiled in or not.
func Known() []Capability {
	out := make([]Capability, len(known))
	copy(out, known)
	return out
}

// Parse resolves a capability name, ignoring case and surrounding space.
func Parse(name string) (Capability, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range known {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Compiled returns the set of capabilities compiled into this build.
func Compiled() Set {
	caps := make([]Capability, 0, len(compiled))
	for c := range compiled {
		caps = append(caps, c)
	}
	return NewSet(caps...)
}

// Enabled reports whether c is compiled into this build.
func Enabled(c Capability) bool {
	_, ok := compiled[c]
	return ok
}

// Set is an immutable set of capabilities. The zero value is empty.
type Set struct {
	caps map[Capability]struct{}
}

// NewSet returns a set holding caps.
func NewSet(caps ...Capability) Set {
	s := Set{caps: make(map[Capability]struct{}, len(caps))}
	for _, c := range caps {
		s.caps[c] = struct{}{}
	}
	return s
}

// Has reports whether c is in the set.
func (s Set) Has(c Capability) bool {
	_, ok := s.caps[c]
	return ok
}

// HasTLS reports whether any TLS stack is in the set.
func (s Set) HasTLS() bool {
	return s.Has(NativeTLS) || s.Has(BoringTLS)
}

// Len returns the number of capabilities in the set.
func (s Set) Len() int { return len(s.caps) }

// List returns the capabilities in sorted order.
func (s Set) List() []Capability {
	out := make([]Capability, 0, len(s.caps))
	for c := range s.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Without returns a copy of the set with caps removed.
func (s Set) Without(caps ...Capability) Set {
	out := NewSet(s.List()...)
	for _, c := range caps {
		delete(out.caps, c)
	}
	return out
}

// Restrict returns the capabilities present in both sets. A client set is
// always restricted to Compiled so configuration can narrow, never widen, a build.
func (s Set) Restrict(to Set) Set {
	out := NewSet()
	for c := range s.caps {
		if to.Has(c) {
			out.caps[c] = struct{}{}
		}
	}
	return out
}

func (s Set) String() string {
	list := s.List()
	parts := make([]string, len(list))
	for i, c := range list {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
