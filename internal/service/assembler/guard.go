package assembler

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"

	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// isPipelineRunning reports whether another pipeline process owns the
// working tree. A marker file alone is not trusted: when no other
// bundle-pipeline process is alive, the marker is considered stale (for
// example after a crash), removed, and the run proceeds.
func isPipelineRunning(ctx context.Context, markerPath string) bool {
	if _, err := os.Stat(markerPath); errors.Is(err, os.ErrNotExist) {
		return false
	}

	if hasSiblingProcess(ctx) {
		return true
	}

	logger.WarnKV(ctx, "Removing stale run marker", "path", markerPath)

	if err := os.Remove(markerPath); err != nil {
		logger.ErrorKV(ctx, "Could not remove stale run marker", "error", err)
		return true
	}

	return false
}

// hasSiblingProcess scans the process table for another live process with
// the same executable name as the current one.
func hasSiblingProcess(ctx context.Context) bool {
	processes, err := ps.Processes()
	if err != nil {
		// Refusing to run is safer than corrupting the tree.
		logger.WarnKV(ctx, "Could not list processes, assuming a sibling run", "error", err)
		return true
	}

	executable := filepath.Base(os.Args[0])
	thisProcessID := os.Getpid()

	for _, process := range processes {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return true
		}
	}

	return false
}
