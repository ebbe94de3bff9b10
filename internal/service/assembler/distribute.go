package assembler

import (
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"

	// Ensure SHA512 is linked in for manifest checksums.
	_ "crypto/sha512"
)

const (
	// DistributionManifestFilename records checksums of the shipped
	// operator scripts inside the distribution folder.
	DistributionManifestFilename = "distribution.yaml"

	// SitePackagesLinkName is the convenience symlink created inside the
	// distribution folder, pointing into the relocated bundle.
	SitePackagesLinkName = "site-packages"

	// checksumFunction is used to hash the distributed operator scripts.
	checksumFunction crypto.Hash = crypto.SHA512
)

// errHashUnavailable indicates the checksum function is not linked in.
var errHashUnavailable = errors.New("hash function unavailable")

// assembleDistribution builds the final distribution folder: the auxiliary
// operator scripts, the signed bundle moved inside it, a checksum manifest,
// and one convenience symlink whose target is expressed relative to the
// link's own location so it survives the folder being moved anywhere.
func (a *assembler) assembleDistribution(ctx context.Context) error {
	distRoot := filepath.Join(a.cfg.DistDir, a.artifact)

	if err := os.RemoveAll(distRoot); err != nil {
		return fmt.Errorf("discard previous distribution: %w", err)
	}

	if err := os.MkdirAll(distRoot, defaultDirMode); err != nil {
		return fmt.Errorf("create distribution directory: %w", err)
	}

	for _, script := range operatorScripts {
		dst := filepath.Join(distRoot, script)
		if err := fsutil.CopyFile(a.assetPath(scriptsAssetDirname, script), dst, executableMode); err != nil {
			return fmt.Errorf("copy operator script %s: %w", script, err)
		}
	}

	bundleName := filepath.Base(a.layout.Root)
	if err := os.Rename(a.layout.Root, filepath.Join(distRoot, bundleName)); err != nil {
		return fmt.Errorf("relocate signed bundle: %w", err)
	}

	inBundle, err := filepath.Rel(a.layout.Root, a.layout.SitePackages())
	if err != nil {
		return fmt.Errorf("derive package directory path: %w", err)
	}

	linkTarget := filepath.Join(bundleName, inBundle)
	if err = os.Symlink(linkTarget, filepath.Join(distRoot, SitePackagesLinkName)); err != nil {
		return fmt.Errorf("create convenience symlink: %w", err)
	}

	if err = a.writeDistributionManifest(distRoot); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Distribution assembled", "path", distRoot)

	return nil
}

// distributionManifest describes what a distribution folder ships.
type distributionManifest struct {
	// Artifact is the canonical release artifact identifier.
	Artifact string `yaml:"artifact"`
	// Version is the application version the bundle was stamped with.
	Version string `yaml:"version"`
	// Files maps operator script names to their base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// writeDistributionManifest records checksums over the operator scripts so
// the content-update script has something to verify shipped files against.
func (a *assembler) writeDistributionManifest(distRoot string) error {
	m := &distributionManifest{
		Artifact: a.artifact,
		Version:  a.version,
		Files:    make(map[string]string, len(operatorScripts)),
	}

	for _, script := range operatorScripts {
		sum, err := fileChecksum(filepath.Join(distRoot, script))
		if err != nil {
			return fmt.Errorf("checksum %s: %w", script, err)
		}

		m.Files[script] = base64.StdEncoding.EncodeToString(sum)
	}

	contents, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal distribution manifest: %w", err)
	}

	path := filepath.Join(distRoot, DistributionManifestFilename)
	if err = os.WriteFile(path, contents, 0o644); err != nil {
		return fmt.Errorf("write distribution manifest: %w", err)
	}

	return nil
}

// fileChecksum returns checksum bytes for a file using checksumFunction.
func fileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !checksumFunction.Available() {
		return nil, errHashUnavailable
	}

	hasher := checksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
