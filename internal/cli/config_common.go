package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/roomstat/internal/config"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// loadProjectConfig loads .env and the project configuration.
// Without an explicit path a missing ./roomstat.yaml is not an error and
// yields a nil config.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	if path != "" {
		projectCfg, err := config.LoadFile(path)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w: %s does not exist", roomstat.ErrInvalidConfig, path)
			}
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return projectCfg, nil
	}

	projectCfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring roomstat.yaml if flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		return projectCfg.ParsedTimeout()
	}
	if flagTimeout < 0 {
		return 0, fmt.Errorf("%w: --timeout must not be negative", roomstat.ErrInvalidConfig)
	}
	return flagTimeout, nil
}

// resolveAsOf returns the reference date from --as-of, then roomstat.yaml.
// Zero means today.
func resolveAsOf(flagAsOf string, projectCfg *config.ProjectConfig) (roomstat.Date, error) {
	if flagAsOf != "" {
		d, err := roomstat.ParseDate(flagAsOf)
		if err != nil {
			return roomstat.Date{}, fmt.Errorf("%w: --as-of: %v", roomstat.ErrInvalidConfig, err)
		}
		return d, nil
	}
	if projectCfg != nil {
		return projectCfg.ParsedAsOf()
	}
	return roomstat.Date{}, nil
}

// resolveOutputDir prefers an explicit --output-dir over roomstat.yaml.
func resolveOutputDir(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagDir string) string {
	if projectCfg != nil && projectCfg.OutputDir != "" && !cmd.Flags().Changed("output-dir") {
		return projectCfg.OutputDir
	}
	return flagDir
}

// resolveIndexes prefers an explicit --indexes over roomstat.yaml.
func resolveIndexes(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagIndexes bool) bool {
	if projectCfg != nil && !cmd.Flags().Changed("indexes") {
		return projectCfg.Indexes || flagIndexes
	}
	return flagIndexes
}

// parseQueryArgs resolves query names or ordinals, keeping the given order.
func parseQueryArgs(values []string) ([]roomstat.QueryID, error) {
	ids := make([]roomstat.QueryID, 0, len(values))
	for _, v := range values {
		id, err := roomstat.ParseQueryID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
