package assembler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundslate/bundle-pipeline/internal/bundle"
	"github.com/soundslate/bundle-pipeline/internal/config"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// assembler carries the pipeline context threaded through every stage: the
// working-tree layout, the tool runner, the signing configuration and the
// version facts once resolved. It is unexported; callers use Run, which
// encapsulates setup and the single-writer guard.
type assembler struct {
	// cfg holds the validated pipeline settings.
	cfg *config.Config
	// layout resolves well-known paths inside the working bundle.
	layout *bundle.Layout
	// runner executes external tools (package manager, signing tool).
	runner Runner
	// smokeTest launches the interpreter after pruning when set.
	smokeTest bool

	// version is the installed application version, resolved by the
	// stamp-version stage and authoritative from that moment on.
	version string
	// artifact is the canonical release artifact identifier derived from
	// the version and the hardware architecture.
	artifact string
}

const (
	// RunMarkerFilename marks that a pipeline run owns the working tree,
	// preventing a second concurrent run from corrupting it.
	RunMarkerFilename = "bundle-pipeline-run-marker.bin"

	// defaultDirMode is used for directories the pipeline creates.
	defaultDirMode os.FileMode = 0o755

	// executableMode is applied to launchers, shims and operator scripts.
	executableMode os.FileMode = 0o755
)

// errPipelineRunning indicates another pipeline process owns the working tree.
var errPipelineRunning = errors.New("another pipeline run is already in progress")

// newAssembler resolves the working-tree layout and takes ownership of the
// working directory by writing the run marker.
func newAssembler(ctx context.Context, cfg *config.Config, runner Runner, smokeTest bool) (*assembler, error) {
	buildDir, err := filepath.Abs(cfg.BuildDir)
	if err != nil {
		return nil, fmt.Errorf("resolve build directory: %w", err)
	}

	a := &assembler{
		cfg: cfg,
		layout: &bundle.Layout{
			Root:           filepath.Join(buildDir, cfg.AppName+".app"),
			RuntimeVersion: cfg.RuntimeVersion,
			PackageName:    cfg.PackageName,
		},
		runner:    runner,
		smokeTest: smokeTest,
	}

	if err = os.MkdirAll(buildDir, defaultDirMode); err != nil {
		return nil, fmt.Errorf("create build directory: %w", err)
	}

	// The working tree has exactly one writer at a time.
	if isPipelineRunning(ctx, a.markerPath()) {
		return nil, errPipelineRunning
	}

	if err = os.WriteFile(a.markerPath(), nil, config.DefaultFilePermissions); err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	return a, nil
}

// markerPath returns the run marker location next to the working bundle.
func (a *assembler) markerPath() string {
	return filepath.Join(filepath.Dir(a.layout.Root), RunMarkerFilename)
}

// stage couples a loggable name with the function implementing it.
type stage struct {
	name string
	run  func(context.Context) error
}

// stages returns the pipeline in its mandatory execution order. The order
// is load-bearing: installation must precede purging and relocation, and
// nested signing must precede outer signing.
func (a *assembler) stages() []stage {
	return []stage{
		{"clone-template", a.cloneTemplate},
		{"patch-launcher", a.patchLauncher},
		{"install-packages", a.installPackages},
		{"purge-self-references", a.purgeSelfReferences},
		{"prune-footprint", a.pruneFootprint},
		{"relocate-binary", a.relocateBinary},
		{"install-marker", a.installMarker},
		{"patch-identity", a.patchIdentity},
		{"stamp-version", a.stampVersion},
		{"sign-bundle", a.signBundle},
		{"assemble-distribution", a.assembleDistribution},
	}
}

// Run executes every stage in order, stopping at the first failure.
func (a *assembler) Run(ctx context.Context) error {
	for _, st := range a.stages() {
		logger.InfoKV(ctx, "Running stage", "stage", st.name)

		if err := st.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}

	return nil
}

// cleanup releases ownership of the working tree. Best effort.
func (a *assembler) cleanup(ctx context.Context) {
	if err := os.Remove(a.markerPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Could not remove run marker", "error", err)
	}
}
