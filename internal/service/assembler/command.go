package assembler

import (
	"context"
	"fmt"

	"github.com/soundslate/bundle-pipeline/internal/config"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// Options contains inputs for the bundle-pipeline entry point.
type Options struct {
	// ConfigPath is an optional path to the pipeline settings YAML.
	ConfigPath string
	// TemplatePath overrides the template location from the settings file.
	TemplatePath string
	// SmokeTest launches the embedded interpreter after pruning to catch
	// removal of a runtime-required file.
	SmokeTest bool
	// Runner overrides how external tools are invoked. Nil means real
	// process execution; tests substitute a recording implementation.
	Runner Runner
}

// Run executes the full assembly pipeline.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bundle-pipeline")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.TemplatePath != "" {
		cfg.TemplatePath = opts.TemplatePath
	}

	runner := opts.Runner
	if runner == nil {
		runner = execRunner{}
	}

	asm, err := newAssembler(ctx, cfg, runner, opts.SmokeTest)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	defer asm.cleanup(ctx)

	if err = asm.Run(ctx); err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	logger.InfoKV(ctx, "Pipeline completed successfully", "artifact", asm.artifact)

	return nil
}
