package assembler

import "path/filepath"

// Repository-controlled files copied into the bundle or the distribution
// folder. All of them live in the configured assets directory and are
// treated as fixed external inputs by the pipeline.
const (
	// launcherAssetName is the platform entry-point launcher script.
	launcherAssetName = "launcher"
	// pipShimAssetName is the hand-written, path-relative shim for the
	// package manager's command-line entry point.
	pipShimAssetName = "pip-shim"
	// markerAssetName is the identity token marking a bundled runtime.
	markerAssetName = "bundled-marker"
	// subAppDescriptorAssetName is the rebranded descriptor for the
	// sub-application nested inside the runtime framework.
	subAppDescriptorAssetName = "python-app-Info.plist"
	// scriptsAssetDirname holds the auxiliary operator scripts.
	scriptsAssetDirname = "scripts"
)

// operatorScripts are copied verbatim into every distribution folder.
var operatorScripts = []string{
	"first-run-setup.command",
	"update-content.command",
	"remove-quarantine.command",
}

// assetPath resolves a path inside the configured assets directory.
func (a *assembler) assetPath(parts ...string) string {
	return filepath.Join(append([]string{a.cfg.AssetsDir}, parts...)...)
}
