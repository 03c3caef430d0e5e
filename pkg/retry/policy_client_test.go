//go:build !kube_noclient

package retry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"kubeclient/pkg/errx"
)

func TestClassify_ClientKinds(t *testing.T) {
	assert.Equal(t, ActionRetry, Classify(errx.Transport(errors.New("connection refused"))))
	assert.Equal(t, ActionRetry, Classify(errx.Service(errors.New("circuit open"))))
	assert.Equal(t, ActionFailFast, Classify(errx.Auth(errors.New("token expired"))))
}
