package groundtruth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads YAML overrides from path and merges them onto Default.
//
//	container:
//	  div: 0.4
//	attributes:
//	  data-testid: 0.9
//	  data-*: 0.2
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("groundtruth: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML overrides and merges them onto Default.
func Parse(data []byte) (*Tables, error) {
	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("groundtruth: decode: %w", err)
	}
	if err := override.validate(); err != nil {
		return nil, err
	}
	return Default().Merge(&override), nil
}

func (t *Tables) validate() error {
	for tag, v := range t.Container {
		if v < 0 || v > 1 {
			return fmt.Errorf("groundtruth: container %q: score %v outside [0, 1]", tag, v)
		}
	}
	for name, v := range t.Attributes {
		if v < 0 || v > 1 {
			return fmt.Errorf("groundtruth: attribute %q: score %v outside [0, 1]", name, v)
		}
	}
	return nil
}
