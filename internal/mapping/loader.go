package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML profile from the given path.
func LoadFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a ProfileFile and validates it.
func Parse(data []byte) (*ProfileFile, error) {
	var pf ProfileFile

	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	if pf.Version == "" {
		pf.Version = "1"
	}

	if err := pf.Validate(); err != nil {
		return nil, err
	}

	return &pf, nil
}

// Marshal serializes a ProfileFile to YAML.
func Marshal(pf *ProfileFile) ([]byte, error) {
	return yaml.Marshal(pf)
}
