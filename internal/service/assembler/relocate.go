package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundslate/bundle-pipeline/internal/fsutil"
	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// relocateBinary rebuilds the runtime's executable directory from scratch.
//
// After installation the directory is full of generated wrappers whose
// shebangs point at the build machine. The only file worth keeping is the
// raw interpreter binary, so it is moved aside, the directory is emptied,
// the binary is restored, and the hand-written relative-path shim plus the
// unqualified aliases are put in place. The step order is mandatory:
// clearing the directory while the binary is still inside it destroys the
// only working interpreter.
func (a *assembler) relocateBinary(ctx context.Context) error {
	binDir := a.layout.BinDir()
	interpreter := a.layout.InterpreterPath()

	// The holding location sits next to the working bundle: outside the
	// tree, but on the same filesystem so the moves stay plain renames.
	holding, err := os.MkdirTemp(filepath.Dir(a.layout.Root), "relocate-")
	if err != nil {
		return fmt.Errorf("create holding directory: %w", err)
	}

	defer func() {
		_ = os.RemoveAll(holding)
	}()

	held := filepath.Join(holding, a.layout.InterpreterName())
	if err = os.Rename(interpreter, held); err != nil {
		return fmt.Errorf("move interpreter to holding location: %w", err)
	}

	if err = clearDirectory(binDir); err != nil {
		return fmt.Errorf("clear executable directory: %w", err)
	}

	if err = os.Rename(held, interpreter); err != nil {
		return fmt.Errorf("restore interpreter: %w", err)
	}

	shim := filepath.Join(binDir, a.layout.PipShimName())
	if err = fsutil.CopyFile(a.assetPath(pipShimAssetName), shim, executableMode); err != nil {
		return fmt.Errorf("install package-manager shim: %w", err)
	}

	// Unqualified aliases point at their version-qualified siblings.
	aliases := map[string]string{
		"python3": a.layout.InterpreterName(),
		"pip3":    a.layout.PipShimName(),
	}
	for alias, target := range aliases {
		if err = os.Symlink(target, filepath.Join(binDir, alias)); err != nil {
			return fmt.Errorf("create %s alias: %w", alias, err)
		}
	}

	logger.InfoKV(ctx, "Rebuilt executable directory", "path", binDir)

	return nil
}

// clearDirectory removes every entry in dir, leaving dir itself in place.
func clearDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err = os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}
