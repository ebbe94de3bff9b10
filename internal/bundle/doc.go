// Package bundle models the on-disk layout of the application bundle.
//
// Layout centralizes every well-known relative path inside the working tree
// so pipeline stages never hard-code path fragments, and provides the
// canonical artifact naming used for the distribution folder.
package bundle
