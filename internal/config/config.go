package config

import (
	"fmt"
	"os"
	"strings"
)

// Config represents the complete application configuration.
type Config struct {
	Generation      GenerationConfig       `toml:"generation"`
	Source          SourceConfig           `toml:"source"`
	Output          OutputConfig           `toml:"output"`
	Models          map[string]ModelConfig `toml:"models"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
}

// GenerationConfig holds workflow-level settings.
type GenerationConfig struct {
	Subject          string `toml:"subject"`
	BatchSize        int    `toml:"batch_size"`        // planned questions per generation call (default 5)
	TopicsNum        int    `toml:"topics_num"`        // cap on topics processed, 0 = all
	TopicMarker      string `toml:"topic_marker"`      // text marking the start of a topic (default "Core element")
	AcademicClass    string `toml:"academic_class"`    // e.g. "Form 1", stamped onto generated questions
	ExaminationLevel string `toml:"examination_level"` // e.g. "JCE", stamped onto generated questions
}

// SourceConfig describes the syllabus document to read topics from.
type SourceConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"` // "text" or "workbook"; inferred from extension when empty
}

// OutputConfig holds persistence settings.
type OutputConfig struct {
	Dir string `toml:"dir"` // root for session directories (default "output")
}

// ModelConfig represents configuration for a single model endpoint.
type ModelConfig struct {
	BaseURL            string  `toml:"base_url"`
	ModelName          string  `toml:"model_name"`
	Temperature        float64 `toml:"temperature"`
	TopP               float64 `toml:"top_p"`
	MaxOutputTokens    int     `toml:"max_output_tokens"`
	ContextSize        int     `toml:"context_size"`
	RateLimitPerMinute int     `toml:"rate_limit_per_minute"`
	MaxRetries         int     `toml:"max_retries"`           // default 3, -1 = unlimited
	HTTPTimeoutSeconds int     `toml:"http_timeout_seconds"`  // default 120
	UseJSONMode        bool    `toml:"use_json_mode"`         // request json_object response format
}

// PromptTemplates holds the customizable prompt templates for each stage.
type PromptTemplates struct {
	SubtopicExtraction string `toml:"subtopic_extraction"`
	QuestionPlanning   string `toml:"question_planning"`
	QuestionGeneration string `toml:"question_generation"`

	SubtopicSystemPrompt   string `toml:"subtopic_system_prompt"`
	PlanningSystemPrompt   string `toml:"planning_system_prompt"`
	GenerationSystemPrompt string `toml:"generation_system_prompt"`
}

// Secrets holds sensitive credentials loaded from environment variables.
type Secrets struct {
	APIKeys map[string]string
}

const (
	// MaxBatchSize bounds batch_size to something a single completion can
	// plausibly cover.
	MaxBatchSize = 100
	// MaxTopicsNum bounds topics_num.
	MaxTopicsNum = 10000
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Generation.Subject == "" {
		return fmt.Errorf("generation.subject is required")
	}
	// NOTE: in TOML an absent batch_size reads as 0, which applyDefaults has
	// already replaced with the default. Anything still below 1 here was set
	// explicitly and is invalid.
	if c.Generation.BatchSize < 1 {
		return fmt.Errorf("generation.batch_size must be at least 1 (got %d)", c.Generation.BatchSize)
	}
	if c.Generation.BatchSize > MaxBatchSize {
		return fmt.Errorf("generation.batch_size must not exceed %d (got %d)", MaxBatchSize, c.Generation.BatchSize)
	}
	if c.Generation.TopicsNum < 0 {
		return fmt.Errorf("generation.topics_num must not be negative (got %d)", c.Generation.TopicsNum)
	}
	if c.Generation.TopicsNum > MaxTopicsNum {
		return fmt.Errorf("generation.topics_num must not exceed %d (got %d)", MaxTopicsNum, c.Generation.TopicsNum)
	}

	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	switch c.Source.Format {
	case "", "text", "workbook":
	default:
		return fmt.Errorf("source.format must be \"text\" or \"workbook\" (got %q)", c.Source.Format)
	}

	mainModel, ok := c.Models["main"]
	if !ok {
		return fmt.Errorf("models.main is required")
	}
	if err := validateModelConfig("main", mainModel); err != nil {
		return err
	}

	if c.PromptTemplates.SubtopicExtraction == "" {
		return fmt.Errorf("prompt_templates.subtopic_extraction is required")
	}
	if c.PromptTemplates.QuestionPlanning == "" {
		return fmt.Errorf("prompt_templates.question_planning is required")
	}
	if c.PromptTemplates.QuestionGeneration == "" {
		return fmt.Errorf("prompt_templates.question_generation is required")
	}

	return nil
}

func validateModelConfig(name string, mc ModelConfig) error {
	if mc.BaseURL == "" {
		return fmt.Errorf("models.%s.base_url is required", name)
	}
	if mc.ModelName == "" {
		return fmt.Errorf("models.%s.model_name is required", name)
	}
	if mc.Temperature < 0 || mc.Temperature > 2 {
		return fmt.Errorf("models.%s.temperature must be between 0 and 2", name)
	}
	if mc.TopP < 0 || mc.TopP > 1 {
		return fmt.Errorf("models.%s.top_p must be between 0 and 1", name)
	}
	if mc.MaxOutputTokens < 1 {
		return fmt.Errorf("models.%s.max_output_tokens must be at least 1", name)
	}
	if mc.ContextSize < 1 {
		return fmt.Errorf("models.%s.context_size must be at least 1", name)
	}
	if mc.MaxOutputTokens > mc.ContextSize {
		return fmt.Errorf("models.%s.max_output_tokens (%d) must not exceed context_size (%d)", name, mc.MaxOutputTokens, mc.ContextSize)
	}
	if mc.RateLimitPerMinute < 1 {
		return fmt.Errorf("models.%s.rate_limit_per_minute must be at least 1", name)
	}
	return nil
}

// LoadSecrets loads API credentials from environment variables.
func LoadSecrets() *Secrets {
	secrets := &Secrets{APIKeys: make(map[string]string)}

	// Generic key works for any OpenAI-compatible endpoint.
	if key := os.Getenv("API_KEY"); key != "" {
		secrets.APIKeys["generic"] = key
	}
	// Provider-specific keys override the generic one.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		secrets.APIKeys["openai"] = key
	}
	if key := os.Getenv("TOGETHER_API_KEY"); key != "" {
		secrets.APIKeys["together"] = key
	}
	if key := os.Getenv("NVIDIA_API_KEY"); key != "" {
		secrets.APIKeys["nvidia"] = key
	}

	return secrets
}

// GetAPIKey returns the API key for a given base URL, preferring a
// provider-specific key and falling back to the generic one. An empty return
// is valid for local servers without auth.
func (s *Secrets) GetAPIKey(baseURL string) string {
	switch {
	case strings.Contains(baseURL, "openai.com"):
		if key := s.APIKeys["openai"]; key != "" {
			return key
		}
	case strings.Contains(baseURL, "together.xyz") || strings.Contains(baseURL, "together.ai"):
		if key := s.APIKeys["together"]; key != "" {
			return key
		}
	case strings.Contains(baseURL, "nvidia.com"):
		if key := s.APIKeys["nvidia"]; key != "" {
			return key
		}
	}
	return s.APIKeys["generic"]
}
