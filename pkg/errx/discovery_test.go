package errx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryError_Messages(t *testing.T) {
	tests := []struct {
		err    *DiscoveryError
		reason DiscoveryReason
		code   string
		want   string
	}{
		{InvalidGroupVersion("apps/v1/extra"), ReasonInvalidGroupVersion, CodeInvalidGroupVersion, "Invalid GroupVersion: apps/v1/extra"},
		{MissingKind("Widget"), ReasonMissingKind, CodeMissingKind, "Missing Kind: Widget"},
		{MissingAPIGroup("example.com"), ReasonMissingAPIGroup, CodeMissingAPIGroup, "Missing Api Group: example.com"},
		{MissingResource("pods"), ReasonMissingResource, CodeMissingResource, "Missing Resource: pods"},
		{EmptyAPIGroup("example.com"), ReasonEmptyAPIGroup, CodeEmptyAPIGroup, "Empty Api Group: example.com"},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.reason, tt.err.Reason())
			assert.Equal(t, tt.code, tt.reason.Code())
		})
	}
}

func TestDiscoveryError_IsLeaf(t *testing.T) {
	var err error = MissingKind("Widget")
	if errors.Unwrap(err) != nil {
		t.Errorf("errors.Unwrap(DiscoveryError) = %v, want nil", errors.Unwrap(err))
	}
	_, multi := err.(interface{ Unwrap() []error })
	assert.False(t, multi)
}

func TestDiscoveryError_Is(t *testing.T) {
	err := Discovery(MissingResource("pods"))
	assert.ErrorIs(t, err, MissingResource(""))
	assert.ErrorIs(t, err, MissingResource("pods"))
	assert.NotErrorIs(t, err, MissingResource("services"))
	assert.NotErrorIs(t, err, MissingKind(""))
}

func TestDiscoveryReasons(t *testing.T) {
	assert.Equal(t, []DiscoveryReason{
		ReasonInvalidGroupVersion,
		ReasonMissingKind,
		ReasonMissingAPIGroup,
		ReasonMissingResource,
		ReasonEmptyAPIGroup,
	}, DiscoveryReasons())
	assert.Equal(t, "Unknown", DiscoveryReason("Unknown").Label())
	assert.Equal(t, "", DiscoveryReason("Unknown").Code())
}
