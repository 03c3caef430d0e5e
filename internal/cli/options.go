package cli

import (
	"time"

	"github.com/spf13/cobra"

	"kubeclient/pkg/config"
)

// configFlags are the connection flags shared by commands that infer a
// client configuration.
type configFlags struct {
	file       string
	kubeconfig string
	context    string
	proxy      string
	disable    []string
	timeout    time.Duration
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "config", "", "Path to the kubeclient options file (default ~/.config/kubeclient/config.yaml)")
	cmd.Flags().StringVar(&f.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	cmd.Flags().StringVar(&f.context, "context", "", "Kubeconfig context to use")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "Proxy URL (http, https, socks5)")
	cmd.Flags().StringSliceVar(&f.disable, "disable", nil, "Capabilities to disable at runtime")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Request timeout")
}

// options loads the options file and applies the environment and flags.
func (f *configFlags) options() (config.Options, error) {
	var (
		opts *config.Options
		err  error
	)
	if f.file != "" {
		opts, err = config.LoadOptionsFrom(f.file)
	} else {
		opts, err = config.LoadOptions()
	}
	if err != nil {
		return config.Options{}, err
	}
	return opts.Merge(config.Options{
		Kubeconfig: f.kubeconfig,
		Context:    f.context,
		Proxy:      f.proxy,
		Disable:    f.disable,
		Timeout:    f.timeout,
	}), nil
}
