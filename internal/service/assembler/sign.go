package assembler

import (
	"context"
	"fmt"

	"github.com/soundslate/bundle-pipeline/internal/logger"
)

// signTool is the platform's code-signing command.
const signTool = "codesign"

// signBundle signs the nested runtime framework first and the outer bundle
// second, with identical credentials on both calls. The order is the trust
// chain: the outer signature covers hashes of the already-signed nested
// components, so signing the outer bundle first produces an artifact the
// end-user's operating system refuses to launch.
func (a *assembler) signBundle(ctx context.Context) error {
	targets := []string{
		// Nested component first, outer bundle last. Reordering breaks
		// signature verification on every end-user machine.
		a.layout.FrameworkPath(),
		a.layout.Root,
	}

	for _, target := range targets {
		logger.InfoKV(ctx, "Signing", "target", target, "identity", a.cfg.Signing.Identity)

		if err := a.signTarget(ctx, target); err != nil {
			return fmt.Errorf("sign %s: %w", target, err)
		}
	}

	return nil
}

// signTarget runs one signing invocation with the fixed identity, timestamp
// authority and entitlement set shared by every component.
func (a *assembler) signTarget(ctx context.Context, target string) error {
	signing := a.cfg.Signing

	args := []string{"--force", "--timestamp", "--sign", signing.Identity}

	if signing.HardenedRuntime {
		args = append(args, "--options", "runtime")
	}

	if signing.Entitlements != "" {
		args = append(args, "--entitlements", signing.Entitlements)
	}

	if signing.Keychain != "" {
		args = append(args, "--keychain", signing.Keychain)
	}

	args = append(args, target)

	return a.runner.Run(ctx, signTool, args...)
}
