package assembler

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/soundslate/bundle-pipeline/internal/logger"
	"github.com/soundslate/bundle-pipeline/internal/manifest"
)

// trustRootPackage provides the CA bundle the isolated runtime needs for
// TLS, since it cannot see the host's certificate store.
const trustRootPackage = "certifi"

// errVersionFileMissing indicates the application package did not install
// the version file the rest of the pipeline depends on.
var errVersionFileMissing = errors.New("version file missing after install")

// installPackages installs the pinned dependency set, the trust-root
// certificate package and the application itself into the embedded runtime.
// The package manager runs in isolated mode so host-level configuration
// cannot leak into the bundle. Any non-zero exit is fatal; there is no
// partial-install recovery.
func (a *assembler) installPackages(ctx context.Context) error {
	m, err := manifest.Load(a.cfg.RequirementsPath, a.cfg.SourceBuildsPath)
	if err != nil {
		return err
	}

	requirementArgs := []string{"-r", a.cfg.RequirementsPath}
	for _, name := range m.SourceOnly {
		// A source build guarantees ABI compatibility with the embedded
		// interpreter, which prebuilt wheels cannot.
		requirementArgs = append(requirementArgs, "--no-binary", name)
	}

	logger.InfoKV(ctx, "Installing pinned requirements",
		"count", len(m.Requirements), "source_builds", m.SourceOnly)

	if err = a.pipInstall(ctx, requirementArgs...); err != nil {
		return fmt.Errorf("install requirements: %w", err)
	}

	logger.InfoKV(ctx, "Installing trust-root certificates", "package", trustRootPackage)

	if err = a.pipInstall(ctx, trustRootPackage); err != nil {
		return fmt.Errorf("install trust roots: %w", err)
	}

	// The application ships from the pre-release channel by policy.
	logger.InfoKV(ctx, "Installing application package", "package", a.cfg.PackageName)

	if err = a.pipInstall(ctx, "--pre", a.cfg.PackageName); err != nil {
		return fmt.Errorf("install application: %w", err)
	}

	return a.verifyInstall(ctx)
}

// pipInstall invokes the embedded runtime's package manager, isolated from
// any host-level package configuration.
func (a *assembler) pipInstall(ctx context.Context, args ...string) error {
	pipArgs := append([]string{"-m", "pip", "install", "--isolated", "--no-cache-dir"}, args...)

	return a.runner.Run(ctx, a.layout.InterpreterPath(), pipArgs...)
}

// verifyInstall asserts the application package actually landed by checking
// its version file, so a silent install failure cannot resurface later as a
// confusing stamping error.
func (a *assembler) verifyInstall(ctx context.Context) error {
	path := a.layout.VersionFilePath()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, errVersionFileMissing)
		}

		return fmt.Errorf("stat version file: %w", err)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, errVersionFileMissing)
	}

	logger.Info(ctx, "Verified application package installation")

	return nil
}
