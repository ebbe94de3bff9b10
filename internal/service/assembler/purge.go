package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// purgeSelfReferences deletes the console script the package manager
// generated for the newly installed application. Its shebang embeds the
// absolute interpreter path on the build machine, a path that does not
// exist on end-user machines. Nothing else is touched here: the remaining
// poisoned wrappers in the executable directory are handled wholesale by
// binary relocation.
func (a *assembler) purgeSelfReferences(ctx context.Context) error {
	script := filepath.Join(a.layout.BinDir(), a.cfg.PackageName)

	logger.InfoKV(ctx, "Removing generated entry script", "path", script)

	if err := os.Remove(script); err != nil {
		return fmt.Errorf("remove generated entry script: %w", err)
	}

	return nil
}
