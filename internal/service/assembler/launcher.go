package assembler

import (
	"context"
	"fmt"

	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// patchLauncher unconditionally overwrites the bundle's entry-point script
// with the repository-controlled copy. The launcher changes independently
// of the cached template and must always reflect the current control logic.
func (a *assembler) patchLauncher(ctx context.Context) error {
	dst := a.layout.LauncherPath(a.cfg.AppName)

	logger.InfoKV(ctx, "Overwriting entry-point launcher", "path", dst)

	if err := fsutil.CopyFile(a.assetPath(launcherAssetName), dst, executableMode); err != nil {
		return fmt.Errorf("patch launcher: %w", err)
	}

	return nil
}
