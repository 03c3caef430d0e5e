package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kubeclient/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	debug   = false
)

func main() {
	// Flags are parsed by Execute, so look for --debug up front to pick the log level.
	logger, err := newConsoleLogger(debugRequested(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	initCommands(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kubeclient",
	Short: "Kubernetes API client diagnostics",
	Long: `kubeclient inspects the error reporting of the Kubernetes API client:
- Error kinds and codes compiled into this build
- Optional capabilities (TLS stacks, SOCKS5, WebSocket upgrade)
- Connectivity checks against a cluster`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set debug mode globally so logStructuredError can check it
		cli.SetDebugMode(debug)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode with structured error logging")
}

func initCommands(logger *zap.Logger) {
	rootCmd.AddCommand(cli.NewKindsCmd(logger))
	rootCmd.AddCommand(cli.NewExplainCmd(logger))
	rootCmd.AddCommand(cli.NewFeaturesCmd(logger))
	rootCmd.AddCommand(cli.NewCheckCmd(logger))
}

func debugRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--debug" || arg == "--debug=true" {
			return true
		}
	}
	return false
}

// newConsoleLogger returns a human-friendly console logger with timestamps.
// If debug is true, sets log level to Debug to enable all debug logs.
// Otherwise, sets to ErrorLevel so structured error logs (when debug flag is enabled) will show.
func newConsoleLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	level := zap.ErrorLevel
	if debug {
		level = zap.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return cfg.Build()
}
