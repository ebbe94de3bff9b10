package assembler

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// errTemplateMissing aborts the pipeline before any other stage runs.
var errTemplateMissing = errors.New("bundle template not found")

// cloneTemplate produces a fresh working copy of the immutable template.
// Any previous working bundle is discarded first: every run is a full
// rebuild, never a merge.
func (a *assembler) cloneTemplate(ctx context.Context) error {
	if _, err := os.Stat(a.cfg.TemplatePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", a.cfg.TemplatePath, errTemplateMissing)
		}

		return fmt.Errorf("stat template: %w", err)
	}

	if err := os.RemoveAll(a.layout.Root); err != nil {
		return fmt.Errorf("discard previous working bundle: %w", err)
	}

	logger.InfoKV(ctx, "Cloning template",
		"template", a.cfg.TemplatePath, "destination", a.layout.Root)

	if err := fsutil.CopyTree(a.cfg.TemplatePath, a.layout.Root); err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	return nil
}
