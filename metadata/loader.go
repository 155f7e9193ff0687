package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML declaration table from the given path.
func LoadFile(path string) (*TableFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration table %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a TableFile.
func Parse(data []byte) (*TableFile, error) {
	var tf TableFile

	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse declaration table: %w", err)
	}

	applyDefaults(&tf)

	return &tf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(tf *TableFile) {
	if tf.Version == "" {
		tf.Version = "1"
	}
}

// Marshal serializes a TableFile to YAML.
func Marshal(tf *TableFile) ([]byte, error) {
	return yaml.Marshal(tf)
}
