// Package assembler implements the bundle assembly pipeline: an ordered
// sequence of filesystem and tool-invocation stages that turn the generic
// application-shell template into a branded, pruned, relocatable, signed
// and distributable bundle.
//
// The stages run strictly in order against a single working tree, each one
// consuming the state its predecessor left behind. The first failure aborts
// the run and leaves the tree as-is; recovery is discarding the working
// tree and re-running from a clean state.
package assembler
