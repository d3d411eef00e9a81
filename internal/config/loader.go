package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadExperience loads the experience configuration on top of the defaults.
// Search order: customPath -> ~/.firewave/configs/experience.yaml -> ./configs/experience.yaml -> embedded default
func LoadExperience(customPath string) (Experience, error) {
	cfg := DefaultExperience()
	if err := load(customPath, "experience.yaml", defaultExperienceYAML, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLayout loads a fire layout.
// Search order: customPath -> ~/.firewave/configs/layout.yaml -> ./configs/layout.yaml -> embedded default
func LoadLayout(customPath string) (Layout, error) {
	var l Layout
	if err := load(customPath, "layout.yaml", defaultLayoutYAML, &l); err != nil {
		return l, err
	}
	if len(l.Nodes) == 0 && customPath == "" {
		return DefaultLayout(), nil // Fallback to hardcoded if embed is empty
	}
	return l, nil
}

// ParseExperience decodes experience YAML on top of the defaults.
func ParseExperience(data []byte) (Experience, error) {
	cfg := DefaultExperience()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: cannot parse experience: %w", err)
	}
	return cfg, nil
}

// ParseLayout decodes layout YAML.
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("config: cannot parse layout: %w", err)
	}
	return l, nil
}

// MarshalLayout encodes a layout as YAML.
func MarshalLayout(l Layout) ([]byte, error) {
	return yaml.Marshal(l)
}

func load(customPath, filename string, embedded []byte, out any) error {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if err := yaml.Unmarshal(data, out); err == nil {
			return nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(embedded, out); err != nil {
		return fmt.Errorf("failed to parse embedded %s: %w", filename, err)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".firewave", "configs", filename)
}
