package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file and environment variables.
func Load(configPath string) (*Config, *Secrets, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, LoadSecrets(), nil
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Generation.BatchSize == 0 {
		cfg.Generation.BatchSize = 5
	}
	if cfg.Generation.TopicMarker == "" {
		cfg.Generation.TopicMarker = "Core element"
	}

	if cfg.Source.Format == "" && cfg.Source.Path != "" {
		cfg.Source.Format = inferSourceFormat(cfg.Source.Path)
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}

	for name, model := range cfg.Models {
		if model.Temperature == 0 {
			model.Temperature = 0.2
		}
		if model.TopP == 0 {
			model.TopP = 1.0
		}
		if model.MaxOutputTokens == 0 {
			model.MaxOutputTokens = 4096
		}
		if model.ContextSize == 0 {
			model.ContextSize = 16384
		}
		if model.RateLimitPerMinute == 0 {
			model.RateLimitPerMinute = 60
		}
		// NOTE: in TOML an unset max_retries reads as 0, so 0 means the
		// default of 3 and -1 requests unlimited retries.
		if model.MaxRetries == 0 {
			model.MaxRetries = 3
		}
		if model.HTTPTimeoutSeconds == 0 {
			model.HTTPTimeoutSeconds = 120
		}
		cfg.Models[name] = model
	}

	if cfg.PromptTemplates.SubtopicExtraction == "" {
		cfg.PromptTemplates.SubtopicExtraction = DefaultSubtopicTemplate()
	}
	if cfg.PromptTemplates.QuestionPlanning == "" {
		cfg.PromptTemplates.QuestionPlanning = DefaultPlanningTemplate()
	}
	if cfg.PromptTemplates.QuestionGeneration == "" {
		cfg.PromptTemplates.QuestionGeneration = DefaultGenerationTemplate()
	}
}

func inferSourceFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return "workbook"
	default:
		return "text"
	}
}
