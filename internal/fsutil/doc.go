// Package fsutil provides the filesystem primitives shared by pipeline
// stages: symlink-preserving tree copies, mode-preserving file copies and
// atomic rename-based file replacement.
package fsutil
