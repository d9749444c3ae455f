package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRunConfig loads and parses a collection run configuration file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config file: %w", err)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}

	if len(cfg.Services) == 0 {
		cfg.Services = append(cfg.Services, DependencyServices...)
	}

	slog.Debug("parsed run config",
		"regions", cfg.Regions, "services", cfg.Services, "tag_filters", len(cfg.Filters.Tags))

	if err := validateRunConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	return &cfg, nil
}

// validateRunConfig validates the run configuration.
func validateRunConfig(cfg *RunConfig) error {
	if len(cfg.Regions) == 0 {
		return fmt.Errorf("at least one region must be defined")
	}

	regions := make(map[string]bool)
	for i, region := range cfg.Regions {
		if region == "" {
			return fmt.Errorf("regions[%d]: region must not be empty", i)
		}
		if regions[region] {
			return fmt.Errorf("regions[%d]: duplicate region: %s", i, region)
		}
		regions[region] = true
	}

	services := make(map[string]bool)
	for i, service := range cfg.Services {
		if service == "" {
			return fmt.Errorf("services[%d]: service must not be empty", i)
		}
		if services[service] {
			return fmt.Errorf("services[%d]: duplicate service: %s", i, service)
		}
		services[service] = true
	}

	return nil
}
