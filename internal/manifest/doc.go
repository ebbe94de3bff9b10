// Package manifest parses the pinned requirement files fed to the installer:
// the requirement manifest (one specifier per line) and the sibling
// source-build list naming packages that must not come from prebuilt wheels.
package manifest
