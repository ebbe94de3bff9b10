package bundle

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Layout resolves well-known paths inside a working application bundle.
// All methods return paths rooted at Root; nothing here touches the disk.
type Layout struct {
	// Root is the path of the .app directory being assembled.
	Root string
	// RuntimeVersion is the embedded framework version, e.g. "3.12".
	RuntimeVersion string
	// PackageName is the installed application's package name.
	PackageName string
}

// Contents returns the bundle's Contents directory.
func (l *Layout) Contents() string {
	return filepath.Join(l.Root, "Contents")
}

// DescriptorPath returns the bundle's top-level Info.plist.
func (l *Layout) DescriptorPath() string {
	return filepath.Join(l.Contents(), "Info.plist")
}

// LauncherPath returns the platform entry-point script for the given executable name.
func (l *Layout) LauncherPath(name string) string {
	return filepath.Join(l.Contents(), "MacOS", name)
}

// FrameworkPath returns the embedded runtime framework directory.
func (l *Layout) FrameworkPath() string {
	return filepath.Join(l.Contents(), "Frameworks", "Python.framework")
}

// RuntimeRoot returns the version-qualified root of the embedded runtime.
func (l *Layout) RuntimeRoot() string {
	return filepath.Join(l.FrameworkPath(), "Versions", l.RuntimeVersion)
}

// BinDir returns the runtime's executable directory.
func (l *Layout) BinDir() string {
	return filepath.Join(l.RuntimeRoot(), "bin")
}

// InterpreterName returns the version-qualified interpreter file name.
func (l *Layout) InterpreterName() string {
	return "python" + l.RuntimeVersion
}

// InterpreterPath returns the raw interpreter binary inside the executable directory.
func (l *Layout) InterpreterPath() string {
	return filepath.Join(l.BinDir(), l.InterpreterName())
}

// PipShimName returns the version-qualified package-manager shim file name.
func (l *Layout) PipShimName() string {
	return "pip" + l.RuntimeVersion
}

// SitePackages returns the runtime's package directory.
func (l *Layout) SitePackages() string {
	return filepath.Join(l.RuntimeRoot(), "lib", "python"+l.RuntimeVersion, "site-packages")
}

// PackageDir returns the installed application package directory.
func (l *Layout) PackageDir() string {
	return filepath.Join(l.SitePackages(), l.PackageName)
}

// VersionFilePath returns the single-line version file written by the
// installed application package. It only exists after installation.
func (l *Layout) VersionFilePath() string {
	return filepath.Join(l.PackageDir(), "_version.txt")
}

// SubAppDescriptorPath returns the Info.plist of the sub-application nested
// inside the runtime framework, whose display name is rebranded.
func (l *Layout) SubAppDescriptorPath() string {
	return filepath.Join(l.FrameworkPath(), "Resources", "Python.app", "Contents", "Info.plist")
}

// MarkerPath returns the identity token file that lets the application
// detect it is running inside its own bundled runtime.
func (l *Layout) MarkerPath() string {
	return filepath.Join(l.BinDir(), "."+l.PackageName+"-bundled")
}

// ArtifactName derives the canonical release artifact identifier.
func ArtifactName(appName, version, arch string) string {
	return fmt.Sprintf("%s-%s-%s", appName, version, arch)
}

// HostArchitecture reports the hardware architecture using the platform's
// naming convention rather than Go's.
func HostArchitecture() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	default:
		return runtime.GOARCH
	}
}
