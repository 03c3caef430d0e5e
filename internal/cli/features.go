package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kubeclient/pkg/features"
)

// FeatureInfo reports whether a capability is compiled in and enabled.
type FeatureInfo struct {
	Capability string `json:"capability"`
	Compiled   bool   `json:"compiled"`
	Enabled    bool   `json:"enabled"`
}

// Features lists every known capability against the enabled set.
func Features(enabled features.Set) []FeatureInfo {
	var out []FeatureInfo
	for _, c := range features.Known() {
		out = append(out, FeatureInfo{
			Capability: string(c),
			Compiled:   features.Enabled(c),
			Enabled:    enabled.Has(c),
		})
	}
	return out
}

func featuresTable(infos []FeatureInfo) [][]string {
	rows := [][]string{{"CAPABILITY", "COMPILED", "ENABLED"}}
	for _, info := range infos {
		rows = append(rows, []string{info.Capability, yesNo(info.Compiled), yesNo(info.Enabled)})
	}
	return rows
}

func yesNo(v bool) string {
	if v {
		return Green("yes")
	}
	return Yellow("no")
}

// NewFeaturesCmd returns the features subcommand.
func NewFeaturesCmd(logger *zap.Logger) *cobra.Command {
	var (
		output string
		flags  configFlags
	)
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Show compiled and enabled capabilities",
		Long: `Show every optional capability, whether it is compiled into this build and
whether it stays enabled after the options file, KUBECLIENT_DISABLE and --disable
are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				logStructuredError(logger, err, "load options failed")
				return err
			}
			caps, err := opts.Capabilities()
			if err != nil {
				logStructuredError(logger, err, "resolve capabilities failed")
				return err
			}
			infos := Features(caps)
			return render(cmd.OutOrStdout(), output, infos, func() [][]string { return featuresTable(infos) })
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, yaml or json")
	cmd.Flags().StringVar(&flags.file, "config", "", "Path to the kubeclient options file")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "Capabilities to disable at runtime")
	return cmd
}
