package assembler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes external tools on behalf of pipeline stages. Stages never
// shell out directly, so tests can substitute a recording implementation.
type Runner interface {
	// Run blocks until the tool exits and returns an error on non-zero exit.
	Run(ctx context.Context, name string, args ...string) error
}

// execRunner invokes real processes, forwarding their output streams so a
// failing tool surfaces its own diagnostics on the pipeline's stderr.
type execRunner struct{}

// Run implements Runner using os/exec.
func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}
