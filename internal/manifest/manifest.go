package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manifest is the pinned dependency set consumed once by the installer.
type Manifest struct {
	// Requirements are the requirement specifiers, in file order.
	Requirements []string
	// SourceOnly names requirements that must be built from source rather
	// than installed from precompiled artifacts.
	SourceOnly []string
}

var (
	// errNoRequirements is returned when the requirement file is empty.
	errNoRequirements = errors.New("requirement manifest is empty")
	// errUnknownSourceBuild is returned when a source-build entry does not
	// name any requirement from the manifest.
	errUnknownSourceBuild = errors.New("source-build entry not present in requirements")
)

// Load reads the requirement manifest and the sibling source-build list.
// The source-build file is optional; every entry in it must match a
// requirement by name or Load fails.
func Load(requirementsPath, sourceBuildsPath string) (*Manifest, error) {
	requirements, err := readLines(requirementsPath)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}

	if len(requirements) == 0 {
		return nil, fmt.Errorf("%s: %w", requirementsPath, errNoRequirements)
	}

	sourceOnly, err := readLines(sourceBuildsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read source-build list: %w", err)
		}

		sourceOnly = nil
	}

	m := &Manifest{
		Requirements: requirements,
		SourceOnly:   sourceOnly,
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// validate ensures every source-build entry refers to a known requirement.
func (m *Manifest) validate() error {
	names := make(map[string]struct{}, len(m.Requirements))
	for _, specifier := range m.Requirements {
		names[RequirementName(specifier)] = struct{}{}
	}

	for _, name := range m.SourceOnly {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("%s: %w", name, errUnknownSourceBuild)
		}
	}

	return nil
}

// RequirementName extracts the bare package name from a requirement
// specifier, stripping version constraints and extras.
func RequirementName(specifier string) string {
	name := strings.TrimSpace(specifier)
	if i := strings.IndexAny(name, "=<>!~[ ;"); i >= 0 {
		name = name[:i]
	}

	return name
}

// readLines reads non-empty, non-comment lines from a plain-text file.
func readLines(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	var lines []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
