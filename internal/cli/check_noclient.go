//go:build kube_noclient

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kubeclient/pkg/features"
)

// NewCheckCmd returns a check subcommand that reports the missing client capability.
func NewCheckCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the cluster (unavailable in this build)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Debug("check requested without client capability")
			return fmt.Errorf("%w: built without the %q capability", ErrCheckFailed, features.Client)
		},
	}
}
