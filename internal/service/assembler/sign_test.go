package assembler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSignBundle signs the nested framework strictly before the outer
// bundle, with identical credentials on both calls.
func TestSignBundle(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	asm := newTestAssembler(t, runner)
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.signBundle(ctx))

	require.Len(t, runner.calls, 2)

	inner := runner.calls[0]
	outer := runner.calls[1]

	// Inner-before-outer ordering is the trust chain.
	require.Equal(t, asm.layout.FrameworkPath(), inner[len(inner)-1])
	require.Equal(t, asm.layout.Root, outer[len(outer)-1])

	// Identical identity, entitlements and options on both calls.
	require.Equal(t, inner[:len(inner)-1], outer[:len(outer)-1])

	require.Equal(t, signTool, inner[0])
	require.Contains(t, inner, "--timestamp")
	require.Contains(t, inner, "--sign")
	require.Contains(t, inner, asm.cfg.Signing.Identity)
	require.Contains(t, inner, "--options")
	require.Contains(t, inner, "runtime")
	require.Contains(t, inner, "--entitlements")
	require.Contains(t, inner, asm.cfg.Signing.Entitlements)
}

// TestSignBundle_InnerFailureStopsOuter: a failed nested signature must not
// be followed by an outer signing call, which would otherwise produce a
// bundle with a broken trust chain.
func TestSignBundle_InnerFailureStopsOuter(t *testing.T) {
	t.Parallel()

	signFailure := errors.New("signing failed")
	runner := &recordingRunner{
		onRun: func(_ string, _ []string) error {
			return signFailure
		},
	}

	asm := newTestAssembler(t, runner)
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))

	err := asm.signBundle(ctx)
	require.ErrorIs(t, err, signFailure)
	require.Len(t, runner.calls, 1)
}

// TestSignBundle_ReversedOrderDetectable shows the recorded order is the
// regression surface: asserting outer-first against the pipeline's actual
// behavior fails, which is exactly what a reversed implementation would
// have to survive to ship.
func TestSignBundle_ReversedOrderDetectable(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	asm := newTestAssembler(t, runner)
	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.signBundle(ctx))

	first := runner.calls[0]
	require.NotEqual(t, asm.layout.Root, first[len(first)-1],
		"outer bundle must never be signed first")
}

// TestSignBundle_NoKeychainFlagWhenUnset keeps the invocation minimal.
func TestSignBundle_NoKeychainFlagWhenUnset(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	asm := newTestAssembler(t, runner)
	asm.cfg.Signing.Keychain = ""

	ctx := context.Background()
	require.NoError(t, asm.cloneTemplate(ctx))
	require.NoError(t, asm.signBundle(ctx))
	require.NotContains(t, runner.calls[0], "--keychain")
}
