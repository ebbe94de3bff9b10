// Package config loads, validates and persists the pipeline settings YAML.
//
// The configuration names the immutable inputs of a run: the template
// location, the requirement manifests, the repository-controlled assets
// directory and the signing credential. Optional fields are defaulted by
// Validate so a minimal settings file only has to carry the signing identity.
package config
