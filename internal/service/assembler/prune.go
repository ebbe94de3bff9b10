package assembler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// pruneRule selects one removable category of files. Rules are commutative:
// no rule's selection depends on another rule having run first.
type pruneRule struct {
	// name labels the category in logs.
	name string
	// globs are patterns relative to the runtime root, expanded against
	// the actual tree contents with filepath.Glob.
	globs []string
	// match, when set, selects entries anywhere under the runtime root.
	// It receives the entry's path relative to the runtime root. Matched
	// directories are removed whole and not descended into.
	match func(rel string, entry fs.DirEntry) bool
}

// pruneRules describes everything removed to shrink the bundle: debug
// variants of the GUI toolkit frameworks, demo and documentation resources,
// bytecode caches, platform-foreign executables shipped inside wheels, and
// bundled test suites. The selection must stay a strict subset of
// non-runtime-required files; the smoke launch exists to catch violations.
func (a *assembler) pruneRules() []pruneRule {
	lib := filepath.Join("lib", "python"+a.cfg.RuntimeVersion)
	sitePackages := filepath.Join(lib, "site-packages") + string(filepath.Separator)

	return []pruneRule{
		{
			name: "gui-debug-frameworks",
			globs: []string{
				filepath.Join("Frameworks", "Tcl.framework", "Versions", "*", "Tcl_debug"),
				filepath.Join("Frameworks", "Tk.framework", "Versions", "*", "Tk_debug"),
			},
		},
		{
			name: "demo-and-documentation",
			globs: []string{
				filepath.Join(lib, "idlelib"),
				filepath.Join(lib, "turtledemo"),
				filepath.Join("Resources", "English.lproj", "Documentation"),
				filepath.Join("share", "doc"),
			},
		},
		{
			name: "bytecode-caches",
			match: func(_ string, entry fs.DirEntry) bool {
				return entry.IsDir() && entry.Name() == "__pycache__"
			},
		},
		{
			name: "foreign-executables",
			match: func(_ string, entry fs.DirEntry) bool {
				return !entry.IsDir() && strings.HasSuffix(entry.Name(), ".exe")
			},
		},
		{
			name:  "bundled-test-suites",
			globs: []string{filepath.Join(lib, "test")},
			match: func(rel string, entry fs.DirEntry) bool {
				if !entry.IsDir() {
					return false
				}

				if entry.Name() != "test" && entry.Name() != "tests" {
					return false
				}

				return strings.HasPrefix(rel, sitePackages)
			},
		},
	}
}

// pruneFootprint applies the declarative deletion rules to the runtime tree.
func (a *assembler) pruneFootprint(ctx context.Context) error {
	root := a.layout.RuntimeRoot()

	for _, rule := range a.pruneRules() {
		selected, err := rule.selectPaths(root)
		if err != nil {
			return fmt.Errorf("evaluate rule %s: %w", rule.name, err)
		}

		for _, path := range selected {
			if err = os.RemoveAll(path); err != nil {
				return fmt.Errorf("prune %s: %w", rule.name, err)
			}
		}

		logger.InfoKV(ctx, "Pruned category", "category", rule.name, "entries", len(selected))
	}

	if a.smokeTest {
		return a.smokeLaunch(ctx)
	}

	return nil
}

// selectPaths resolves a rule against the actual tree contents and returns
// absolute paths to remove.
func (r pruneRule) selectPaths(root string) ([]string, error) {
	var selected []string

	for _, pattern := range r.globs {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, err
		}

		selected = append(selected, matches...)
	}

	if r.match == nil {
		return selected, nil
	}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if !r.match(rel, entry) {
			return nil
		}

		selected = append(selected, path)

		if entry.IsDir() {
			return fs.SkipDir
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return selected, nil
}

// smokeLaunch starts the embedded interpreter once to prove pruning did not
// remove a runtime-required file.
func (a *assembler) smokeLaunch(ctx context.Context) error {
	logger.Info(ctx, "Smoke-launching the pruned runtime")

	if err := a.runner.Run(ctx, a.layout.InterpreterPath(), "-c", "import encodings"); err != nil {
		return fmt.Errorf("post-prune smoke launch: %w", err)
	}

	return nil
}
