package config

import (
	"errors"
	"fmt"
)

// Source names where configuration inference looked.
type Source string

const (
	SourceKubeconfig Source = "kubeconfig"
	SourceInCluster  Source = "in-cluster"
	SourceOptions    Source = "options file"
	SourceProxy      Source = "proxy"
	SourceAny        Source = "kubeconfig or in-cluster"
)

// Sentinel errors for configuration inference.
var (
	ErrNoKubeconfig      = errors.New("no kubeconfig found")
	ErrNoCurrentContext  = errors.New("kubeconfig has no current context")
	ErrUnknownContext    = errors.New("context not found in kubeconfig")
	ErrUnknownCapability = errors.New("unknown capability")
	ErrInvalidProxyURL   = errors.New("invalid proxy url")
)

// InferConfigError is the source of every InferConfig error. It records where
// inference looked and the underlying failure.
type InferConfigError struct {
	Source Source
	Path   string
	Err    error
}

func (e *InferConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Source, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *InferConfigError) Unwrap() error {
	return e.Err
}
