package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soundslate/bundle-pipeline/internal/config"
	"github.com/soundslate/bundle-pipeline/internal/service/assembler"
	"github.com/soundslate/bundle-pipeline/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// templatePath overrides the template bundle location from the configuration.
	templatePath string

	// smokeTest launches the embedded interpreter after pruning.
	smokeTest bool

	// rootCmd represents the base command for building a distributable bundle.
	rootCmd = &cobra.Command{
		Use:   "bundle-pipeline",
		Short: "Build a branded, signed, redistributable application bundle",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &assembler.Options{
				ConfigPath:   configPath,
				TemplatePath: templatePath,
				SmokeTest:    smokeTest,
			}

			return assembler.Run(ctx, options)
		},
	}
)

// Execute runs the bundle-pipeline CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&templatePath, "template", "t", "", "path to the template bundle (overrides configuration)")
	rootCmd.Flags().BoolVar(&smokeTest, "smoke-test", false, "launch the embedded runtime after pruning")
}
