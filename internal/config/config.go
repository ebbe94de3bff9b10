package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Signing describes the credential used for every codesign invocation.
// The same identity, keychain and entitlement set must be applied to each
// signed component, otherwise the nested trust chain is inconsistent.
type Signing struct {
	// Identity is the name of the signing certificate, e.g. "Developer ID Application: ...".
	Identity string `yaml:"identity"`
	// Keychain is an optional path to the keychain holding the identity.
	Keychain string `yaml:"keychain"`
	// Entitlements is the path to the entitlements plist applied to every component.
	Entitlements string `yaml:"entitlements"`
	// HardenedRuntime enables the hardened-runtime option on signing calls.
	HardenedRuntime bool `yaml:"hardened_runtime"`
}

// Config holds the inputs of a single pipeline run.
type Config struct {
	// TemplatePath is the prebuilt application-shell template the working
	// bundle is cloned from. Defaults to a fixed location under the
	// operator's home directory.
	TemplatePath string `yaml:"template_path"`
	// BuildDir is where the mutable working bundle is assembled.
	BuildDir string `yaml:"build_dir"`
	// DistDir is where the final distribution folder is created.
	DistDir string `yaml:"dist_dir"`
	// AppName is the branded application name, e.g. "Soundslate".
	AppName string `yaml:"app_name"`
	// PackageName is the application's package name as known to the
	// embedded runtime's package manager.
	PackageName string `yaml:"package_name"`
	// RuntimeVersion is the embedded framework version, e.g. "3.12".
	RuntimeVersion string `yaml:"runtime_version"`
	// RequirementsPath is the pinned requirement manifest, one specifier per line.
	RequirementsPath string `yaml:"requirements"`
	// SourceBuildsPath lists requirements that must be built from source
	// instead of installed from precompiled artifacts.
	SourceBuildsPath string `yaml:"source_builds"`
	// AssetsDir holds repository-controlled files copied into the bundle:
	// launcher, package-manager shim, marker, descriptors and operator scripts.
	AssetsDir string `yaml:"assets_dir"`
	// Signing is the credential applied to every signed component.
	Signing Signing `yaml:"signing"`
}

const (
	// DefaultConfigFilename is the default filename for pipeline settings.
	DefaultConfigFilename = "bundle-pipeline.yaml"

	// DefaultAppName is the branded application name stamped on the bundle.
	DefaultAppName = "Soundslate"

	// DefaultRuntimeVersion is the embedded framework version shipped
	// inside the current template.
	DefaultRuntimeVersion = "3.12"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// defaultTemplateDirname is the directory under the operator's home
	// where the prebuilt template lives by default.
	defaultTemplateDirname = "bundle-template"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSigningIdentityRequired is returned when no signing identity is configured.
	errSigningIdentityRequired = errors.New("signing identity must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults for optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Signing.Identity == "" {
		return errSigningIdentityRequired
	}

	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}

	if cfg.PackageName == "" {
		cfg.PackageName = strings.ToLower(cfg.AppName)
	}

	if cfg.RuntimeVersion == "" {
		cfg.RuntimeVersion = DefaultRuntimeVersion
	}

	if cfg.TemplatePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}

		cfg.TemplatePath = filepath.Join(home, defaultTemplateDirname, cfg.AppName+".app")
	}

	if cfg.BuildDir == "" {
		cfg.BuildDir = "build"
	}

	if cfg.DistDir == "" {
		cfg.DistDir = "dist"
	}

	if cfg.RequirementsPath == "" {
		cfg.RequirementsPath = "requirements.txt"
	}

	if cfg.SourceBuildsPath == "" {
		cfg.SourceBuildsPath = "source-builds.txt"
	}

	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "assets"
	}

	return nil
}
