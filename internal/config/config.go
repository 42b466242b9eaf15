// Package config loads this module's own tracker construction
// options and its on-disk LUT definitions, following the teacher's
// shape for both: a flat YAML struct for simple options
// (internal/sim/tuning), and jsonschema-validated JSON documents for
// data that must be checked before it drives registration
// (internal/protocol's schemas).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DebugConfig selects where BFM debugger lines and
// vertex-space/group-space warnings go.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Prefix  string `yaml:"prefix"`
}

// Tracker is the full set of construction options for one tracker
// instance: the group-space size bound, an optional global cap on
// one BFM run's vertex visits, and the debug sink selection.
type Tracker struct {
	GroupLimit  int         `yaml:"grouplimit"`
	VertexLimit int         `yaml:"vertex_limit"`
	Debug       DebugConfig `yaml:"debug"`
}

// Load reads and validates a tracker configuration from a YAML file.
func Load(path string) (Tracker, error) {
	var t Tracker
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("config: %s: %w", path, err)
	}
	if t.GroupLimit <= 0 {
		return t, fmt.Errorf("config: %s: grouplimit must be positive, got %d", path, t.GroupLimit)
	}
	return t, nil
}
