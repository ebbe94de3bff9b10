package assembler

import (
	"context"
	"fmt"

	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// patchIdentity overwrites the nested sub-application's descriptor so the
// operating system surfaces the rebranded display name instead of the
// runtime's generic one. The replacement descriptor is repository-controlled
// and differs only in the human-visible name.
func (a *assembler) patchIdentity(ctx context.Context) error {
	dst := a.layout.SubAppDescriptorPath()

	if err := fsutil.CopyFile(a.assetPath(subAppDescriptorAssetName), dst, 0o644); err != nil {
		return fmt.Errorf("patch sub-application descriptor: %w", err)
	}

	logger.InfoKV(ctx, "Rebranded embedded sub-application", "path", dst)

	return nil
}
