package bundler

import (
	"context"
	"fmt"

	"github.com/oshokin/appbundle/internal/config"
	"github.com/oshokin/appbundle/internal/logger"
)

// Options contains inputs for the bundler entry point.
type Options struct {
	// ConfigPath is the path to appbundle.yaml.
	ConfigPath string
	// Verbose enables signing diagnostics.
	Verbose bool
}

// Run loads the configuration and builds the bundle.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "appbundle")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	result, err := New(cfg, WithVerbose(opts.Verbose)).Run(ctx)
	if err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	logger.InfoKV(ctx, "Application bundle created",
		"bundle", result.Layout.BundleDir,
		"dependencies", len(result.Dependencies),
		"attachments", len(result.Attachments))

	return nil
}
