package assembler

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRelocateBinary rebuilds the executable directory: only the raw
// interpreter survives, the shim is installed, and the unqualified aliases
// resolve to their version-qualified siblings.
func TestRelocateBinary(t *testing.T) {
	t.Parallel()

	asm := newTestAssembler(t, &recordingRunner{})
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.relocateBinary(ctx))

	binDir := asm.layout.BinDir()

	entries, err := os.ReadDir(binDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	require.Equal(t, []string{"pip3", "pip3.12", "python3", "python3.12"}, names)

	// The raw interpreter round-tripped through the holding location intact.
	contents, err := os.ReadFile(asm.layout.InterpreterPath())
	require.NoError(t, err)
	require.Equal(t, "raw interpreter binary", string(contents))

	// Aliases resolve to the version-qualified files installed in this step.
	resolved, err := filepath.EvalSymlinks(filepath.Join(binDir, "python3"))
	require.NoError(t, err)

	wantInterpreter, err := filepath.EvalSymlinks(asm.layout.InterpreterPath())
	require.NoError(t, err)
	require.Equal(t, wantInterpreter, resolved)

	resolved, err = filepath.EvalSymlinks(filepath.Join(binDir, "pip3"))
	require.NoError(t, err)

	wantShim, err := filepath.EvalSymlinks(filepath.Join(binDir, asm.layout.PipShimName()))
	require.NoError(t, err)
	require.Equal(t, wantShim, resolved)

	// The holding directory is gone.
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(asm.layout.Root), "relocate-*"))
	require.NoError(t, err)
	require.Empty(t, matches)
}

// TestRelocateBinary_ShimIsRelative ensures the installed shim carries no
// absolute path reference.
func TestRelocateBinary_ShimIsRelative(t *testing.T) {
	t.Parallel()

	asm := newTestAssembler(t, &recordingRunner{})
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.relocateBinary(ctx))

	shim, err := os.ReadFile(filepath.Join(asm.layout.BinDir(), asm.layout.PipShimName()))
	require.NoError(t, err)
	require.NotContains(t, string(shim), asm.layout.Root)
	require.Contains(t, string(shim), "dirname")
}

// TestRelocateBinary_MissingInterpreter fails before the directory is cleared.
func TestRelocateBinary_MissingInterpreter(t *testing.T) {
	t.Parallel()

	asm := newTestAssembler(t, &recordingRunner{})
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, os.Remove(asm.layout.InterpreterPath()))

	require.Error(t, asm.relocateBinary(ctx))

	// The poisoned wrappers are untouched: the failure happened before the
	// destructive clear step.
	require.FileExists(t, filepath.Join(asm.layout.BinDir(), "pip3.12"))
}

// TestInstallMarker drops the identity token into the executable directory.
func TestInstallMarker(t *testing.T) {
	t.Parallel()

	asm := newTestAssembler(t, &recordingRunner{})
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.relocateBinary(ctx))
	require.NoError(t, asm.installMarker(ctx))

	require.FileExists(t, asm.layout.MarkerPath())
}

// TestPatchIdentity rebrands the nested sub-application descriptor.
func TestPatchIdentity(t *testing.T) {
	t.Parallel()

	asm := newTestAssembler(t, &recordingRunner{})
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.patchIdentity(ctx))

	contents, err := os.ReadFile(asm.layout.SubAppDescriptorPath())
	require.NoError(t, err)
	require.Contains(t, string(contents), "Soundslate")
	require.NotContains(t, string(contents), ">Python<")
}
