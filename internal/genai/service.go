// Package genai wraps the chat completion API behind a structured-output
// service: callers send a prompt plus the JSON schema they expect back, and
// receive a decoded value or a classified failure. All failure classes
// (schema, decode, transport) are treated identically by the workflow, which
// degrades to an empty default, but keeping them distinct makes the log
// trail useful.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/tmalunga/syllabussense/internal/api"
	"github.com/tmalunga/syllabussense/internal/config"
	"github.com/tmalunga/syllabussense/internal/util"
)

var (
	// ErrSchemaValidation marks a response that parsed as JSON but did not
	// conform to the expected schema.
	ErrSchemaValidation = errors.New("response failed schema validation")
	// ErrDecode marks a response that could not be parsed or decoded at all.
	ErrDecode = errors.New("response could not be decoded")
)

// Schema declares the expected shape of a service response as a JSON schema
// definition.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Request is a single structured generation request.
type Request struct {
	System string // optional system prompt
	Prompt string
	Schema *Schema
}

// Service produces schema-conforming values from prompts.
type Service interface {
	// Generate sends the request and decodes the response into out. The
	// returned error wraps ErrSchemaValidation or ErrDecode for content
	// failures; transport failures come through as-is.
	Generate(ctx context.Context, req Request, out any) error
}

// LLMService implements Service on top of an OpenAI-compatible endpoint.
type LLMService struct {
	client *api.Client
	model  config.ModelConfig
	apiKey string
	logger *slog.Logger
}

// NewLLMService creates a generation service for the given model endpoint.
func NewLLMService(client *api.Client, model config.ModelConfig, apiKey string, logger *slog.Logger) *LLMService {
	return &LLMService{
		client: client,
		model:  model,
		apiKey: apiKey,
		logger: logger,
	}
}

// Generate implements Service.
func (s *LLMService) Generate(ctx context.Context, req Request, out any) error {
	messages := make([]api.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	resp, err := s.client.ChatCompletion(ctx, s.model, s.apiKey, messages)
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}

	content := resp.Choices[0].Message.Content
	s.logger.Debug("received completion", "schema", schemaName(req.Schema), "length", len(content))

	jsonStr := util.SanitizeJSON(util.ExtractJSON(content))

	if req.Schema != nil {
		if err := validateAgainstSchema(jsonStr, req.Schema); err != nil {
			s.logger.Debug("schema validation failed",
				"schema", req.Schema.Name,
				"payload", util.TruncateString(jsonStr, 200))
			return err
		}
	}

	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func validateAgainstSchema(jsonStr string, schema *Schema) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.Definition),
		gojsonschema.NewStringLoader(jsonStr),
	)
	if err != nil {
		// The document never loaded; this is a decode problem, not a shape one.
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: schema %q: %s", ErrSchemaValidation, schema.Name, strings.Join(details, "; "))
	}
	return nil
}

func schemaName(s *Schema) string {
	if s == nil {
		return "none"
	}
	return s.Name
}
