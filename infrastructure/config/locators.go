package config

import (
	"fmt"
	"os"

	"auth_harness/domain/entities"

	"gopkg.in/yaml.v3"
)

type locatorFile struct {
	Locators []entities.Locator `yaml:"locators"`
}

// LoadLocatorOverrides reads a YAML file of locator overrides:
//
//	locators:
//	  - name: email input
//	    strategy: id
//	    pattern: email
//
// An empty path yields no overrides.
func LoadLocatorOverrides(path string) ([]entities.Locator, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locator file: %w", err)
	}

	var file locatorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse locator file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Locators))
	for i, loc := range file.Locators {
		strategy, err := entities.ParseStrategy(string(loc.Strategy))
		if err != nil {
			return nil, fmt.Errorf("locator file %s entry %d: %w", path, i, err)
		}
		loc.Strategy = strategy
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("locator file %s entry %d: %w", path, i, err)
		}
		if seen[loc.Name] {
			return nil, fmt.Errorf("locator file %s: duplicate name %q", path, loc.Name)
		}
		seen[loc.Name] = true
		file.Locators[i] = loc
	}

	return file.Locators, nil
}
