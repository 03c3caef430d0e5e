// Package config infers client configuration from a kubeconfig file or the
// in-cluster service account, and validates the proxy and TLS settings against
// the capabilities a client is constructed with.
//
// Every failure is returned as an *errx.Error: InferConfig for inference
// problems, ProxyProtocolUnsupported and ProxyProtocolDisabled for proxies, and
// TLSRequired for an https endpoint without a TLS stack.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

// Config is the inferred configuration a client is constructed from.
type Config struct {
	Rest         *rest.Config
	Context      string
	Namespace    string
	Proxy        *url.URL
	Capabilities features.Set
	Source       Source
	Options      Options
}

// inClusterConfig is replaced in tests.
var inClusterConfig = rest.InClusterConfig

// Infer builds a Config from opts. An explicit or default kubeconfig is tried
// first, then the in-cluster service account. When both fail, the returned
// InferConfig error joins both causes.
func Infer(opts Options) (*Config, error) {
	caps, err := opts.Capabilities()
	if err != nil {
		return nil, err
	}

	cfg, kubeErr := fromKubeconfig(opts)
	if kubeErr != nil {
		// An explicitly named kubeconfig never falls back.
		if opts.Kubeconfig != "" || !errors.Is(kubeErr, ErrNoKubeconfig) {
			return nil, errx.InferConfig(kubeErr)
		}
		clusterCfg, clusterErr := fromCluster()
		if clusterErr != nil {
			return nil, errx.InferConfig(errors.Join(kubeErr, clusterErr))
		}
		cfg = clusterCfg
	}

	cfg.Options = opts
	cfg.Capabilities = caps
	if opts.Timeout > 0 {
		cfg.Rest.Timeout = opts.Timeout
	}

	rawProxy := opts.Proxy
	if rawProxy == "" && cfg.Proxy != nil {
		rawProxy = cfg.Proxy.String()
	}
	proxyURL, err := ResolveProxy(rawProxy, caps)
	if err != nil {
		return nil, err
	}
	cfg.Proxy = proxyURL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KubeconfigPath returns the kubeconfig Infer would read for opts.
func KubeconfigPath(opts Options) string {
	if opts.Kubeconfig != "" {
		return opts.Kubeconfig
	}
	if env := os.Getenv(clientcmd.RecommendedConfigPathEnvVar); env != "" {
		return env
	}
	return clientcmd.RecommendedHomeFile
}

func fromKubeconfig(opts Options) (*Config, *InferConfigError) {
	path := KubeconfigPath(opts)
	fail := func(err error) *InferConfigError {
		return &InferConfigError{Source: SourceKubeconfig, Path: path, Err: err}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fail(fmt.Errorf("%w: %v", ErrNoKubeconfig, err))
		}
		return nil, fail(err)
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)

	raw, err := kubeConfig.RawConfig()
	if err != nil {
		return nil, fail(err)
	}

	contextName := raw.CurrentContext
	if opts.Context != "" {
		contextName = opts.Context
	}
	if contextName == "" {
		return nil, fail(ErrNoCurrentContext)
	}
	kubeContext, ok := raw.Contexts[contextName]
	if !ok {
		return nil, fail(fmt.Errorf("%w: %q", ErrUnknownContext, contextName))
	}

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fail(err)
	}

	namespace, _, err := kubeConfig.Namespace()
	if err != nil || namespace == "" {
		namespace = "default"
	}

	cfg := &Config{
		Rest:      restConfig,
		Context:   contextName,
		Namespace: namespace,
		Source:    SourceKubeconfig,
	}
	if cluster, ok := raw.Clusters[kubeContext.Cluster]; ok && cluster.ProxyURL != "" {
		proxyURL, err := url.Parse(cluster.ProxyURL)
		if err != nil {
			return nil, fail(fmt.Errorf("%w: %v", ErrInvalidProxyURL, err))
		}
		cfg.Proxy = proxyURL
	}
	return cfg, nil
}

func fromCluster() (*Config, *InferConfigError) {
	restConfig, err := inClusterConfig()
	if err != nil {
		return nil, &InferConfigError{Source: SourceInCluster, Err: err}
	}
	namespace := "default"
	// #nosec G304 -- fixed service account path.
	if data, err := os.ReadFile(serviceAccountNamespace); err == nil && len(data) > 0 {
		namespace = string(data)
	}
	return &Config{Rest: restConfig, Namespace: namespace, Source: SourceInCluster}, nil
}

const serviceAccountNamespace = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
