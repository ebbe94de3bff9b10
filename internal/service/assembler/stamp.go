package assembler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/soundslate/bundle-pipeline/internal/bundle"
	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// VersionPlaceholder is the literal token in the template's top-level
// descriptor that stamping replaces with the installed version.
const VersionPlaceholder = "%BUNDLE_VERSION%"

var (
	// errInvalidVersion is returned when the version file does not hold a
	// parseable semantic version.
	errInvalidVersion = errors.New("invalid version string")
	// errPlaceholderMissing signals template drift: the descriptor no
	// longer carries the substitution token.
	errPlaceholderMissing = errors.New("descriptor does not contain the version placeholder")
)

// stampVersion reads the installed application's version, derives the
// canonical artifact name and substitutes the placeholder token in the
// bundle's top-level descriptor. The version is a derived fact, read from
// the file the installed package wrote, never from configuration; it is
// authoritative from this point on.
func (a *assembler) stampVersion(ctx context.Context) error {
	raw, err := os.ReadFile(a.layout.VersionFilePath())
	if err != nil {
		return fmt.Errorf("read version file: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	if _, err = semver.NewVersion(text); err != nil {
		return fmt.Errorf("%q: %w", text, errInvalidVersion)
	}

	a.version = text
	a.artifact = bundle.ArtifactName(a.cfg.AppName, a.version, bundle.HostArchitecture())

	descriptorPath := a.layout.DescriptorPath()

	descriptor, err := os.ReadFile(descriptorPath)
	if err != nil {
		return fmt.Errorf("read descriptor: %w", err)
	}

	if !bytes.Contains(descriptor, []byte(VersionPlaceholder)) {
		return fmt.Errorf("%s: %w", descriptorPath, errPlaceholderMissing)
	}

	stamped := bytes.ReplaceAll(descriptor, []byte(VersionPlaceholder), []byte(a.version))

	info, err := os.Stat(descriptorPath)
	if err != nil {
		return fmt.Errorf("stat descriptor: %w", err)
	}

	// Rename-based substitution: a crash mid-stamp can never leave a
	// stranded backup or a half-written descriptor behind.
	if err = fsutil.ReplaceFile(descriptorPath, stamped, info.Mode().Perm()); err != nil {
		return fmt.Errorf("stamp descriptor: %w", err)
	}

	logger.InfoKV(ctx, "Stamped bundle version", "version", a.version, "artifact", a.artifact)

	return nil
}
