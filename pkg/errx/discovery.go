package errx

import "fmt"

// DiscoveryReason tags the variant of a DiscoveryError.
type DiscoveryReason string

const (
	ReasonInvalidGroupVersion DiscoveryReason = "InvalidGroupVersion"
	ReasonMissingKind         DiscoveryReason = "MissingKind"
	ReasonMissingAPIGroup     DiscoveryReason = "MissingApiGroup"
	ReasonMissingResource     DiscoveryReason = "MissingResource"
	ReasonEmptyAPIGroup       DiscoveryReason = "EmptyApiGroup"
)

// Discovery reason codes share the 81xxx domain.
const (
	CodeInvalidGroupVersion = "81001"
	CodeMissingKind         = "81002"
	CodeMissingAPIGroup     = "81003"
	CodeMissingResource     = "81004"
	CodeEmptyAPIGroup       = "81005"
)

var discoveryReasons = []struct {
	reason DiscoveryReason
	code   string
	label  string
}{
	{ReasonInvalidGroupVersion, CodeInvalidGroupVersion, "Invalid GroupVersion"},
	{ReasonMissingKind, CodeMissingKind, "Missing Kind"},
	{ReasonMissingAPIGroup, CodeMissingAPIGroup, "Missing Api Group"},
	{ReasonMissingResource, CodeMissingResource, "Missing Resource"},
	{ReasonEmptyAPIGroup, CodeEmptyAPIGroup, "Empty Api Group"},
}

// DiscoveryReasons returns every discovery reason in code order.
func DiscoveryReasons() []DiscoveryReason {
	out := make([]DiscoveryReason, len(discoveryReasons))
	for i, r := range discoveryReasons {
		out[i] = r.reason
	}
	return out
}

// Code returns the stable code of the reason.
func (r DiscoveryReason) Code() string {
	for _, entry := range discoveryReasons {
		if entry.reason == r {
			return entry.code
		}
	}
	return ""
}

// Label returns the human-readable name used in messages.
func (r DiscoveryReason) Label() string {
	for _, entry := range discoveryReasons {
		if entry.reason == r {
			return entry.label
		}
	}
	return string(r)
}

// DiscoveryError is exactly one reason a discovery step failed. It is a leaf:
// it never wraps a further error.
type DiscoveryError struct {
	reason DiscoveryReason
	detail string
}

// InvalidGroupVersion reports a group/version string that does not parse.
func InvalidGroupVersion(gv string) *DiscoveryError {
	return &DiscoveryError{reason: ReasonInvalidGroupVersion, detail: gv}
}

// MissingKind reports a kind the server does not serve.
func MissingKind(kind string) *DiscoveryError {
	return &DiscoveryError{reason: ReasonMissingKind, detail: kind}
}

// MissingAPIGroup reports a group the server does not serve.
func MissingAPIGroup(group string) *DiscoveryError {
	return &DiscoveryError{reason: ReasonMissingAPIGroup, detail: group}
}

// MissingResource reports a resource the server does not serve.
func MissingResource(resource string) *DiscoveryError {
	return &DiscoveryError{reason: ReasonMissingResource, detail: resource}
}

// EmptyAPIGroup reports a group that advertises no versions.
func EmptyAPIGroup(group string) *DiscoveryError {
	return &DiscoveryError{reason: ReasonEmptyAPIGroup, detail: group}
}

func (e *DiscoveryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.reason.Label(), e.detail)
}

// Reason returns the variant tag.
func (e *DiscoveryError) Reason() DiscoveryReason {
	if e == nil {
		return ""
	}
	return e.reason
}

// Detail returns the offending group, version, kind or resource.
func (e *DiscoveryError) Detail() string {
	if e == nil {
		return ""
	}
	return e.detail
}

// Is matches another DiscoveryError with the same reason, and the same detail
// when the target has one.
func (e *DiscoveryError) Is(target error) bool {
	t, ok := target.(*DiscoveryError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.reason == t.reason && (t.detail == "" || t.detail == e.detail)
}
