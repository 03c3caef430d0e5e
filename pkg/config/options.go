package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kubeclient/pkg/errx"
	"kubeclient/pkg/features"
)

// Environment variables that override the options file.
const (
	EnvKubeconfig = "KUBECLIENT_KUBECONFIG"
	EnvContext    = "KUBECLIENT_CONTEXT"
	EnvProxy      = "KUBECLIENT_PROXY"
	EnvDisable    = "KUBECLIENT_DISABLE"
)

// Options holds module configuration loaded from
// ~/.config/kubeclient/config.yaml, the environment and flags.
type Options struct {
	Kubeconfig string        `yaml:"kubeconfig"`
	Context    string        `yaml:"context"`
	Proxy      string        `yaml:"proxy"`
	Disable    []string      `yaml:"disable"`
	Timeout    time.Duration `yaml:"timeout"`
	Watch      WatchOptions  `yaml:"watch"`
	Retry      RetryOptions  `yaml:"retry"`
}

// WatchOptions configures the watch event decoder.
type WatchOptions struct {
	// MaxLineLength bounds a single event line. Zero means no practical limit.
	MaxLineLength int `yaml:"max_line_length"`
}

// RetryOptions configures the backoff used for retriable failures.
type RetryOptions struct {
	Steps    int           `yaml:"steps"`
	Duration time.Duration `yaml:"duration"`
	Factor   float64       `yaml:"factor"`
	Jitter   float64       `yaml:"jitter"`
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout: 30 * time.Second,
		Watch: WatchOptions{
			MaxLineLength: math.MaxInt,
		},
		Retry: RetryOptions{
			Steps:    5,
			Duration: 200 * time.Millisecond,
			Factor:   2.0,
			Jitter:   0.1,
		},
	}
}

// DefaultOptionsPath returns ~/.config/kubeclient/config.yaml.
func DefaultOptionsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kubeclient", "config.yaml"), nil
}

// LoadOptions loads options from the default path.
func LoadOptions() (*Options, error) {
	path, err := DefaultOptionsPath()
	if err != nil {
		return DefaultOptions(), nil
	}
	return LoadOptionsFrom(path)
}

// LoadOptionsFrom loads options from a specific file path.
// Returns defaults if the file does not exist.
func LoadOptionsFrom(path string) (*Options, error) {
	opts := DefaultOptions()

	// #nosec G304 -- path is the user's own configuration file.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opts, nil
		}
		return nil, errx.InferConfig(&InferConfigError{Source: SourceOptions, Path: path, Err: err})
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, errx.InferConfig(&InferConfigError{Source: SourceOptions, Path: path, Err: err})
	}
	opts.applyDefaults()
	return opts, nil
}

func (o *Options) applyDefaults() {
	defaults := DefaultOptions()
	if o.Timeout == 0 {
		o.Timeout = defaults.Timeout
	}
	if o.Watch.MaxLineLength <= 0 {
		o.Watch.MaxLineLength = defaults.Watch.MaxLineLength
	}
	if o.Retry.Steps == 0 {
		o.Retry.Steps = defaults.Retry.Steps
	}
	if o.Retry.Duration == 0 {
		o.Retry.Duration = defaults.Retry.Duration
	}
	if o.Retry.Factor == 0 {
		o.Retry.Factor = defaults.Retry.Factor
	}
}

// Merge returns the options with precedence flags > environment > o.
func (o Options) Merge(flags Options) Options {
	out := o
	if v := os.Getenv(EnvKubeconfig); v != "" {
		out.Kubeconfig = v
	}
	if v := os.Getenv(EnvContext); v != "" {
		out.Context = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		out.Proxy = v
	}
	if v := os.Getenv(EnvDisable); v != "" {
		out.Disable = splitList(v)
	}
	if flags.Kubeconfig != "" {
		out.Kubeconfig = flags.Kubeconfig
	}
	if flags.Context != "" {
		out.Context = flags.Context
	}
	if flags.Proxy != "" {
		out.Proxy = flags.Proxy
	}
	if len(flags.Disable) > 0 {
		out.Disable = flags.Disable
	}
	if flags.Timeout != 0 {
		out.Timeout = flags.Timeout
	}
	return out
}

// Capabilities returns the compiled capabilities minus the disabled ones.
func (o Options) Capabilities() (features.Set, error) {
	disabled := make([]features.Capability, 0, len(o.Disable))
	for _, name := range o.Disable {
		c, ok := features.Parse(name)
		if !ok {
			return features.Set{}, errx.InferConfig(&InferConfigError{
				Source: SourceOptions,
				Err:    fmt.Errorf("%w: %q", ErrUnknownCapability, name),
			})
		}
		disabled = append(disabled, c)
	}
	return features.Compiled().Without(disabled...), nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
