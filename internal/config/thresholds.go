package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samhitalabs/sync/internal/analysis"
)

// LoadThresholds reads insight threshold overrides from a YAML file.
// An empty path returns zero thresholds, which the analysis package
// fills with its defaults; fields absent from the file behave the same
// way.
func LoadThresholds(path string) (analysis.Thresholds, error) {
	var th analysis.Thresholds
	if path == "" {
		return th, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("reading thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return th, fmt.Errorf("parsing thresholds file %s: %w", path, err)
	}
	return th, nil
}
