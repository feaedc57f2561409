package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Subject:     "Physical Science",
			BatchSize:   5,
			TopicMarker: "Core element",
		},
		Source: SourceConfig{Path: "syllabus.txt", Format: "text"},
		Output: OutputConfig{Dir: "output"},
		Models: map[string]ModelConfig{
			"main": {
				BaseURL:            "https://api.openai.com/v1/",
				ModelName:          "gpt-4o-mini",
				Temperature:        0.2,
				TopP:               1.0,
				MaxOutputTokens:    4096,
				ContextSize:        16384,
				RateLimitPerMinute: 60,
				MaxRetries:         3,
			},
		},
		PromptTemplates: PromptTemplates{
			SubtopicExtraction: DefaultSubtopicTemplate(),
			QuestionPlanning:   DefaultPlanningTemplate(),
			QuestionGeneration: DefaultGenerationTemplate(),
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing subject",
			mutate:  func(c *Config) { c.Generation.Subject = "" },
			wantErr: true,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Generation.BatchSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative batch size",
			mutate:  func(c *Config) { c.Generation.BatchSize = -3 },
			wantErr: true,
		},
		{
			name:    "batch size of one",
			mutate:  func(c *Config) { c.Generation.BatchSize = 1 },
			wantErr: false,
		},
		{
			name:    "oversized batch",
			mutate:  func(c *Config) { c.Generation.BatchSize = MaxBatchSize + 1 },
			wantErr: true,
		},
		{
			name:    "negative topics num",
			mutate:  func(c *Config) { c.Generation.TopicsNum = -1 },
			wantErr: true,
		},
		{
			name:    "zero topics num means unbounded",
			mutate:  func(c *Config) { c.Generation.TopicsNum = 0 },
			wantErr: false,
		},
		{
			name:    "missing source path",
			mutate:  func(c *Config) { c.Source.Path = "" },
			wantErr: true,
		},
		{
			name:    "bad source format",
			mutate:  func(c *Config) { c.Source.Format = "pdf" },
			wantErr: true,
		},
		{
			name:    "missing main model",
			mutate:  func(c *Config) { delete(c.Models, "main") },
			wantErr: true,
		},
		{
			name: "missing base url",
			mutate: func(c *Config) {
				m := c.Models["main"]
				m.BaseURL = ""
				c.Models["main"] = m
			},
			wantErr: true,
		},
		{
			name: "temperature out of range",
			mutate: func(c *Config) {
				m := c.Models["main"]
				m.Temperature = 2.5
				c.Models["main"] = m
			},
			wantErr: true,
		},
		{
			name: "output tokens exceed context",
			mutate: func(c *Config) {
				m := c.Models["main"]
				m.MaxOutputTokens = 32768
				c.Models["main"] = m
			},
			wantErr: true,
		},
		{
			name:    "missing generation template",
			mutate:  func(c *Config) { c.PromptTemplates.QuestionGeneration = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[generation]
subject = "Physical Science"

[source]
path = "syllabus.txt"

[models.main]
base_url = "http://localhost:8080/v1/"
model_name = "local-model"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, secrets, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if secrets == nil {
		t.Fatalf("Load() returned nil secrets")
	}

	if cfg.Generation.BatchSize != 5 {
		t.Errorf("BatchSize default = %d, want 5", cfg.Generation.BatchSize)
	}
	if cfg.Generation.TopicMarker != "Core element" {
		t.Errorf("TopicMarker default = %q, want %q", cfg.Generation.TopicMarker, "Core element")
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Output.Dir default = %q, want %q", cfg.Output.Dir, "output")
	}
	if cfg.Source.Format != "text" {
		t.Errorf("Source.Format inferred = %q, want %q", cfg.Source.Format, "text")
	}

	main := cfg.Models["main"]
	if main.Temperature != 0.2 {
		t.Errorf("Temperature default = %v, want 0.2", main.Temperature)
	}
	if main.MaxRetries != 3 {
		t.Errorf("MaxRetries default = %d, want 3", main.MaxRetries)
	}
	if main.RateLimitPerMinute != 60 {
		t.Errorf("RateLimitPerMinute default = %d, want 60", main.RateLimitPerMinute)
	}

	if cfg.PromptTemplates.SubtopicExtraction == "" {
		t.Errorf("SubtopicExtraction template not defaulted")
	}
}

func TestLoadRejectsNegativeBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[generation]
subject = "Physical Science"
batch_size = -1

[source]
path = "syllabus.txt"

[models.main]
base_url = "http://localhost:8080/v1/"
model_name = "local-model"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Errorf("Load() with batch_size -1: expected error, got nil")
	}
}

func TestInferSourceFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "syllabus.xlsx", want: "workbook"},
		{path: "syllabus.XLSM", want: "workbook"},
		{path: "syllabus.txt", want: "text"},
		{path: "syllabus.md", want: "text"},
		{path: "syllabus", want: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := inferSourceFormat(tt.path); got != tt.want {
				t.Errorf("inferSourceFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetAPIKey(t *testing.T) {
	secrets := &Secrets{APIKeys: map[string]string{
		"generic": "generic-key",
		"openai":  "openai-key",
	}}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{name: "provider specific wins", baseURL: "https://api.openai.com/v1/", want: "openai-key"},
		{name: "unknown provider falls back", baseURL: "http://localhost:8080/v1/", want: "generic-key"},
		{name: "provider without key falls back", baseURL: "https://integrate.api.nvidia.com/v1/", want: "generic-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := secrets.GetAPIKey(tt.baseURL); got != tt.want {
				t.Errorf("GetAPIKey(%q) = %q, want %q", tt.baseURL, got, tt.want)
			}
		})
	}
}
