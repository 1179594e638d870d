package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"visionlab/internal/optics"
)

//go:embed constants.yaml
var defaultConstantsYAML []byte

// LoadConstants reads the optical constants. The embedded defaults are
// applied first; keys present in the file at path override them. An empty
// path yields the defaults.
func LoadConstants(path string) (optics.Constants, error) {
	c := optics.DefaultConstants()
	if err := yaml.Unmarshal(defaultConstantsYAML, &c); err != nil {
		return optics.Constants{}, fmt.Errorf("embedded constants: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return optics.Constants{}, fmt.Errorf("read constants: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return optics.Constants{}, fmt.Errorf("parse constants %s: %w", path, err)
		}
	}
	if err := c.Validate(); err != nil {
		return optics.Constants{}, err
	}
	return c, nil
}

// ConstantsFromEnv loads the file named by VISIONLAB_CONSTANTS, or the
// defaults when it is unset.
func ConstantsFromEnv() (optics.Constants, error) {
	return LoadConstants(GetEnv(EnvConstants, ""))
}
