package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/appbundle/internal/config"
)

// errConfigExists is returned when init would overwrite an existing file.
var errConfigExists = errors.New("configuration file already exists, use --force to overwrite it")

// attachInitCommand attaches an `init` subcommand writing a starter configuration.
func attachInitCommand(root *cobra.Command) {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s: %w", configPath, errConfigExists)
			}

			if err := config.Save(configPath, config.Example()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configPath)

			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	root.AddCommand(initCmd)
}
