// Package catalog maintains the pattern catalog: manifest parsing, the
// in-process registry, and change watching for live reload.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BaSui01/patternflow/types"
)

// ParseManifest decodes and validates a manifest document.
func ParseManifest(data []byte) (*types.Manifest, error) {
	var m types.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, types.NewError(types.ErrManifestInvalid, "manifest is not valid JSON").WithCause(err)
	}
	if err := ValidateManifest(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.ErrManifestInvalid,
			fmt.Sprintf("failed to read manifest %s", path)).WithCause(err)
	}
	return ParseManifest(data)
}

// ValidateManifest checks structural invariants: unique non-empty slugs,
// non-empty titles, and known maturity values.
func ValidateManifest(m *types.Manifest) error {
	seen := make(map[string]struct{}, len(m.Patterns))
	for i := range m.Patterns {
		p := &m.Patterns[i]
		if strings.TrimSpace(p.ID) == "" {
			return types.NewError(types.ErrManifestInvalid,
				fmt.Sprintf("pattern at index %d has empty id", i))
		}
		if !validSlug(p.ID) {
			return types.NewError(types.ErrManifestInvalid,
				fmt.Sprintf("pattern id %q is not a valid slug", p.ID))
		}
		if strings.TrimSpace(p.Title) == "" {
			return types.NewError(types.ErrManifestInvalid,
				fmt.Sprintf("pattern %q has empty title", p.ID))
		}
		if p.Maturity != "" && !types.ValidMaturity(p.Maturity) {
			return types.NewError(types.ErrManifestInvalid,
				fmt.Sprintf("pattern %q has unknown maturity %q", p.ID, p.Maturity))
		}
		if _, dup := seen[p.ID]; dup {
			return types.NewError(types.ErrDuplicatePattern,
				fmt.Sprintf("duplicate pattern id %q", p.ID))
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// validSlug accepts lowercase letters, digits, and single hyphens.
func validSlug(s string) bool {
	if s == "" || strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
