package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kubeclient/pkg/errconv"
	"kubeclient/pkg/errx"
	"kubeclient/pkg/retry"
)

// KindInfo describes an error kind or discovery reason compiled into this build.
type KindInfo struct {
	Code        string `json:"code"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Capability  string `json:"capability,omitempty"`
	Action      string `json:"action,omitempty"`
	GRPCCode    string `json:"grpcCode,omitempty"`
}

// Kinds returns every kind followed by every discovery reason, in code order.
func Kinds() []KindInfo {
	var out []KindInfo
	for _, entry := range errx.KindRegistry() {
		out = append(out, kindInfo(entry))
	}
	for _, reason := range errx.DiscoveryReasons() {
		out = append(out, reasonInfo(reason))
	}
	return out
}

// Explain returns the kind or discovery reason named by a code or kind name.
func Explain(query string) (KindInfo, error) {
	query = strings.TrimSpace(query)
	if kind, ok := errx.KindForCode(query); ok {
		entry, _ := errx.Lookup(kind)
		return kindInfo(entry), nil
	}
	for _, entry := range errx.KindRegistry() {
		if strings.EqualFold(string(entry.Kind), query) {
			return kindInfo(entry), nil
		}
	}
	for _, reason := range errx.DiscoveryReasons() {
		if reason.Code() == query || strings.EqualFold(string(reason), query) {
			return reasonInfo(reason), nil
		}
	}
	return KindInfo{}, fmt.Errorf("%w: %q", ErrUnknownCode, query)
}

func kindInfo(entry errx.RegistryEntry) KindInfo {
	info := KindInfo{
		Code:        entry.Code,
		Kind:        string(entry.Kind),
		Description: entry.Description,
		Capability:  string(entry.Capability),
		Action:      retry.ActionFor(entry.Kind).String(),
	}
	if entry.Kind == errx.KindAPI {
		info.Action = "by status"
		info.GRPCCode = "by status"
		return info
	}
	info.GRPCCode = errconv.CodeForKind(entry.Kind).String()
	return info
}

func reasonInfo(reason errx.DiscoveryReason) KindInfo {
	return KindInfo{
		Code:        reason.Code(),
		Kind:        string(errx.KindDiscovery) + "/" + string(reason),
		Description: reason.Label(),
		Action:      retry.ActionFor(errx.KindDiscovery).String(),
		GRPCCode:    errconv.CodeForReason(reason).String(),
	}
}

func kindsTable(infos []KindInfo) [][]string {
	rows := [][]string{{"CODE", "KIND", "CAPABILITY", "ACTION", "GRPC", "DESCRIPTION"}}
	for _, info := range infos {
		capability := info.Capability
		if capability == "" {
			capability = "-"
		}
		rows = append(rows, []string{info.Code, info.Kind, capability, info.Action, info.GRPCCode, info.Description})
	}
	return rows
}

// NewKindsCmd returns the kinds subcommand listing every error kind in this build.
func NewKindsCmd(logger *zap.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the error kinds compiled into this build",
		Long: `List every client error kind and discovery reason compiled into this build,
with its stable code, the capability it depends on, the recovery action and the
gRPC code it converts to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			infos := Kinds()
			logger.Debug("listing kinds", zap.Int("count", len(infos)))
			return render(cmd.OutOrStdout(), output, infos, func() [][]string { return kindsTable(infos) })
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, yaml or json")
	return cmd
}

// NewExplainCmd returns the explain subcommand describing one code or kind.
func NewExplainCmd(logger *zap.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "explain <code|kind>",
		Short: "Describe an error code or kind",
		Example: `  kubeclient explain 80008
  kubeclient explain ReadEvents
  kubeclient explain 81004 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			info, err := Explain(args[0])
			if err != nil {
				logger.Debug("unknown code", zap.String("query", args[0]))
				return err
			}
			return render(cmd.OutOrStdout(), output, info, func() [][]string { return kindsTable([]KindInfo{info}) })
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, yaml or json")
	return cmd
}
