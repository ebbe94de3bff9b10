package assembler

import (
	"context"
	"fmt"

	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// installMarker drops the identity token that lets the running application
// distinguish "inside my own private bundled runtime" from "against a
// system-wide runtime". Only the file's existence matters.
func (a *assembler) installMarker(ctx context.Context) error {
	dst := a.layout.MarkerPath()

	if err := fsutil.CopyFile(a.assetPath(markerAssetName), dst, 0o644); err != nil {
		return fmt.Errorf("install runtime marker: %w", err)
	}

	logger.InfoKV(ctx, "Installed bundled-runtime marker", "path", dst)

	return nil
}
