package errx

import (
	"sort"
	"sync"

	"kubeclient/pkg/features"
)

// Kind tags the variant of an Error. Its value is the variant's semantic name.
type Kind string

// Core kinds are present in every build. Capability-gated kinds are declared in
// files carrying the capability's build constraint.
const (
	KindAPI                             Kind = "Api"
	KindProxyProtocolUnsupported        Kind = "ProxyProtocolUnsupported"
	KindProxyProtocolDisabled           Kind = "ProxyProtocolDisabled"
	KindFromUTF8                        Kind = "FromUtf8"
	KindLinesCodecMaxLineLengthExceeded Kind = "LinesCodecMaxLineLengthExceeded"
	KindReadEvents                      Kind = "ReadEvents"
	KindHTTP                            Kind = "HttpError"
	KindSerde                           Kind = "SerdeError"
	KindBuildRequest                    Kind = "BuildRequest"
	KindInferConfig                     Kind = "InferConfig"
	KindDiscovery                       Kind = "Discovery"
	KindTLSRequired                     Kind = "TlsRequired"
)

// Codes follow a stable 5-digit scheme: the first two digits are the domain
// (80 for client errors, 81 for discovery reasons), the last three the variant.
// Codes of gated kinds are reserved even when the kind is compiled out:
// 80002 transport, 80003 service, 80014 boring TLS, 80015 native TLS,
// 80017 upgrade, 80018 auth, 80019 reference resolution.
const (
	CodeAPI                             = "80001"
	CodeProxyProtocolUnsupported        = "80004"
	CodeProxyProtocolDisabled           = "80005"
	CodeFromUTF8                        = "80006"
	CodeLinesCodecMaxLineLengthExceeded = "80007"
	CodeReadEvents                      = "80008"
	CodeHTTP                            = "80009"
	CodeSerde                           = "80010"
	CodeBuildRequest                    = "80011"
	CodeInferConfig                     = "80012"
	CodeDiscovery                       = "80013"
	CodeTLSRequired                     = "80016"
)

const (
	DescAPI                             = "API server error response"
	DescProxyProtocolUnsupported        = "Unsupported proxy protocol"
	DescProxyProtocolDisabled           = "Proxy protocol disabled in this build"
	DescFromUTF8                        = "Invalid UTF-8"
	DescLinesCodecMaxLineLengthExceeded = "Line length limit exceeded"
	DescReadEvents                      = "Event stream read error"
	DescHTTP                            = "HTTP protocol error"
	DescSerde                           = "Response decoding error"
	DescBuildRequest                    = "Request construction error"
	DescInferConfig                     = "Configuration inference error"
	DescDiscovery                       = "API discovery error"
	DescTLSRequired                     = "TLS required"
)

// RegistryEntry describes a registered kind.
type RegistryEntry struct {
	Kind        Kind
	Code        string
	Description string
	// Capability names the optional capability the kind depends on; empty for core kinds.
	Capability features.Capability
}

var (
	registryMu sync.RWMutex
	registry   = map[Kind]RegistryEntry{}
	byCode     = map[string]Kind{}
)

func init() {
	registerKind(KindAPI, CodeAPI, DescAPI, "")
	registerKind(KindProxyProtocolUnsupported, CodeProxyProtocolUnsupported, DescProxyProtocolUnsupported, "")
	registerKind(KindProxyProtocolDisabled, CodeProxyProtocolDisabled, DescProxyProtocolDisabled, "")
	registerKind(KindFromUTF8, CodeFromUTF8, DescFromUTF8, "")
	registerKind(KindLinesCodecMaxLineLengthExceeded, CodeLinesCodecMaxLineLengthExceeded, DescLinesCodecMaxLineLengthExceeded, "")
	registerKind(KindReadEvents, CodeReadEvents, DescReadEvents, "")
	registerKind(KindHTTP, CodeHTTP, DescHTTP, "")
	registerKind(KindSerde, CodeSerde, DescSerde, "")
	registerKind(KindBuildRequest, CodeBuildRequest, DescBuildRequest, "")
	registerKind(KindInferConfig, CodeInferConfig, DescInferConfig, "")
	registerKind(KindDiscovery, CodeDiscovery, DescDiscovery, "")
	registerKind(KindTLSRequired, CodeTLSRequired, DescTLSRequired, "")
}

// registerKind is called from package init only. A duplicate kind or code is a
// programming error and panics.
func registerKind(kind Kind, code, description string, capability features.Capability) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic("errx: duplicate kind " + string(kind))
	}
	if _, dup := byCode[code]; dup {
		panic("errx: duplicate code " + code)
	}
	registry[kind] = RegistryEntry{Kind: kind, Code: code, Description: description, Capability: capability}
	byCode[code] = kind
}

// KindRegistry returns every kind compiled into this build, ordered by code.
func KindRegistry() []RegistryEntry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	entries := make([]RegistryEntry, 0, len(registry))
	for _, entry := range registry {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// Lookup returns the registry entry for a kind.
func Lookup(kind Kind) (RegistryEntry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	entry, ok := registry[kind]
	return entry, ok
}

// KindForCode returns the kind registered under code.
func KindForCode(code string) (Kind, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kind, ok := byCode[code]
	return kind, ok
}

// DescriptionFor returns the registry description for a code.
func DescriptionFor(code string) (string, bool) {
	kind, ok := KindForCode(code)
	if !ok {
		return "", false
	}
	entry, _ := Lookup(kind)
	return entry.Description, true
}

// IsValidCode checks if the given code is registered in this build.
func IsValidCode(code string) bool {
	_, ok := KindForCode(code)
	return ok
}

// Code returns the stable code of the kind, or "" when the kind is not compiled in.
func (k Kind) Code() string {
	entry, _ := Lookup(k)
	return entry.Code
}

// Description returns the category description of the kind.
func (k Kind) Description() string {
	entry, _ := Lookup(k)
	return entry.Description
}

func (k Kind) String() string { return string(k) }
