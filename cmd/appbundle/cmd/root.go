package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/appbundle/internal/config"
	"github.com/oshokin/appbundle/internal/logger"
	"github.com/oshokin/appbundle/internal/service/bundler"
	"github.com/oshokin/appbundle/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel is the minimum level of emitted log records.
	logLevel string
	// verbose forces debug logging and enables signing diagnostics.
	verbose bool

	// rootCmd represents the base command for building an application bundle.
	rootCmd = &cobra.Command{
		Use:   "appbundle",
		Short: "Package a Java application as a macOS application bundle",
		Long: `Builds <name>.app from a resolved set of artifacts: lays out the bundle,
installs the launcher stub, copies the dependencies into a repository layout,
renders Info.plist and archives the result.

On macOS the bundle is also flagged with SetFile, optionally signed with
codesign and wrapped in a disk image with hdiutil. Elsewhere only the bundle
tree and the zip archive are produced.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &bundler.Options{
				ConfigPath: configPath,
				Verbose:    verbose,
			}

			return bundler.Run(ctx, options)
		},
	}
)

// Execute runs the appbundle CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	attachInitCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger applies --log-level and --verbose to the global logger.
func setupLogger(_ *cobra.Command, _ []string) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	if verbose {
		level = zapcore.DebugLevel
	}

	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging and signing diagnostics")
}
