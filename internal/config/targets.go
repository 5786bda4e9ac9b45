package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Target is one element of the layout and how far it moves at full tilt.
type Target struct {
	Element        string  `yaml:"element"`
	MaxTranslation float64 `yaml:"max_translation"`
}

type layout struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads the target layout from a YAML file.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}
	return ParseTargets(data)
}

// ParseTargets decodes a target layout. Elements must be named; the same
// element may appear more than once.
func ParseTargets(data []byte) ([]Target, error) {
	var l layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse targets: %w", err)
	}
	for i, t := range l.Targets {
		if t.Element == "" {
			return nil, fmt.Errorf("target %d: element is required", i)
		}
	}
	return l.Targets, nil
}
