package assembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundslate/bundle-pipeline/internal/config"
)

// recordingRunner captures tool invocations instead of executing them and
// can simulate filesystem side effects through onRun.
type recordingRunner struct {
	calls [][]string
	onRun func(name string, args []string) error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))

	if r.onRun != nil {
		return r.onRun(name, args)
	}

	return nil
}

// writeTestFile creates a file with parent directories.
func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// makeTemplate builds a miniature application-shell template with the
// directory shape the pipeline expects, including prunable content and
// wrappers poisoned with build-machine absolute paths.
func makeTemplate(t *testing.T, root string) {
	t.Helper()

	contents := filepath.Join(root, "Contents")
	runtime := filepath.Join(contents, "Frameworks", "Python.framework", "Versions", "3.12")
	lib := filepath.Join(runtime, "lib", "python3.12")

	writeTestFile(t, filepath.Join(contents, "Info.plist"),
		"<plist><dict><key>CFBundleShortVersionString</key><string>"+VersionPlaceholder+"</string></dict></plist>\n")
	writeTestFile(t, filepath.Join(contents, "MacOS", "Soundslate"), "#!/bin/sh\n# template launcher\n")

	// Runtime executable directory: raw interpreter plus poisoned wrappers.
	writeTestFile(t, filepath.Join(runtime, "bin", "python3.12"), "raw interpreter binary")
	writeTestFile(t, filepath.Join(runtime, "bin", "pip3.12"), "#!"+root+"/poisoned/python3.12\n")
	writeTestFile(t, filepath.Join(runtime, "bin", "idle3.12"), "#!"+root+"/poisoned/python3.12\n")

	// Runtime-required library content that pruning must retain.
	writeTestFile(t, filepath.Join(lib, "encodings", "__init__.py"), "")
	writeTestFile(t, filepath.Join(lib, "os.py"), "")
	require.NoError(t, os.MkdirAll(filepath.Join(lib, "site-packages"), 0o755))

	// Prunable content.
	writeTestFile(t, filepath.Join(lib, "idlelib", "idle.py"), "")
	writeTestFile(t, filepath.Join(lib, "turtledemo", "clock.py"), "")
	writeTestFile(t, filepath.Join(lib, "test", "test_os.py"), "")
	writeTestFile(t, filepath.Join(lib, "encodings", "__pycache__", "x.pyc"), "")
	writeTestFile(t, filepath.Join(runtime, "Resources", "English.lproj", "Documentation", "index.html"), "")
	writeTestFile(t, filepath.Join(runtime, "Frameworks", "Tcl.framework", "Versions", "8.6", "Tcl_debug"), "")

	// Nested sub-application descriptor that identity patching replaces.
	writeTestFile(t,
		filepath.Join(contents, "Frameworks", "Python.framework", "Resources", "Python.app", "Contents", "Info.plist"),
		"<plist><dict><key>CFBundleName</key><string>Python</string></dict></plist>\n")

	// Relative framework symlink that cloning must preserve.
	require.NoError(t, os.Symlink("3.12",
		filepath.Join(contents, "Frameworks", "Python.framework", "Versions", "Current")))
}

// makeAssets populates the repository-controlled assets directory.
func makeAssets(t *testing.T, dir string) {
	t.Helper()

	writeTestFile(t, filepath.Join(dir, launcherAssetName), "#!/bin/sh\n# current launcher\n")
	writeTestFile(t, filepath.Join(dir, pipShimAssetName),
		"#!/bin/sh\nexec \"$(dirname \"$0\")/python3\" -m pip \"$@\"\n")
	writeTestFile(t, filepath.Join(dir, markerAssetName), "bundled runtime marker\n")
	writeTestFile(t, filepath.Join(dir, subAppDescriptorAssetName),
		"<plist><dict><key>CFBundleName</key><string>Soundslate</string></dict></plist>\n")
	writeTestFile(t, filepath.Join(dir, "entitlements.plist"), "<plist><dict/></plist>\n")

	for _, script := range operatorScripts {
		writeTestFile(t, filepath.Join(dir, scriptsAssetDirname, script), "#!/bin/sh\n# "+script+"\n")
	}
}

// newTestAssembler builds an assembler over a synthetic template, assets
// directory and requirement manifests rooted in a temp dir.
func newTestAssembler(t *testing.T, runner Runner) *assembler {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		TemplatePath:     filepath.Join(dir, "template", "Soundslate.app"),
		BuildDir:         filepath.Join(dir, "build"),
		DistDir:          filepath.Join(dir, "dist"),
		AssetsDir:        filepath.Join(dir, "assets"),
		RequirementsPath: filepath.Join(dir, "requirements.txt"),
		SourceBuildsPath: filepath.Join(dir, "source-builds.txt"),
		Signing: config.Signing{
			Identity:        "Developer ID Application: Test",
			Entitlements:    filepath.Join(dir, "assets", "entitlements.plist"),
			HardenedRuntime: true,
		},
	}
	require.NoError(t, config.Validate(cfg))

	makeTemplate(t, cfg.TemplatePath)
	makeAssets(t, cfg.AssetsDir)
	writeTestFile(t, cfg.RequirementsPath, "mido==1.3.2\npython-rtmidi==1.5.8\n")
	writeTestFile(t, cfg.SourceBuildsPath, "python-rtmidi\n")

	asm, err := newAssembler(context.Background(), cfg, runner, false)
	require.NoError(t, err)

	t.Cleanup(func() {
		asm.cleanup(context.Background())
	})

	return asm
}

// installFakeApp simulates the observable effect of the application
// install: the package directory with its version file, plus the generated
// console script whose shebang embeds an absolute path.
func installFakeApp(t *testing.T, a *assembler, version string) {
	t.Helper()

	writeTestFile(t, a.layout.VersionFilePath(), version+"\n")
	writeTestFile(t, filepath.Join(a.layout.BinDir(), a.cfg.PackageName),
		"#!"+a.layout.InterpreterPath()+"\n")
}
