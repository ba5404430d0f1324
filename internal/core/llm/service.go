package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
)

// Service turns business questions into SQL candidates. Its output is
// untrusted text until the safety gate has validated it.
type Service struct {
	provider LLMProvider
	schema   *SchemaCache
	timeout  time.Duration
}

// NewService creates the NL-to-SQL service with the provider configured in
// the environment.
func NewService(schema *SchemaCache, timeoutSeconds int) *Service {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load LLM config: %v", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create LLM provider: %v", err)
	}

	log.Printf("🤖 Using LLM provider: %s (model: %s)", provider.GetProviderName(), cfg.Model)
	return NewServiceWithProvider(provider, schema, timeoutSeconds)
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider, schema *SchemaCache, timeoutSeconds int) *Service {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return &Service{
		provider: provider,
		schema:   schema,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
	}
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}

// GenerateSQL asks the model for a single SELECT answering the question and
// returns the extracted candidate statement.
func (s *Service) GenerateSQL(ctx context.Context, question string, criteria filters.Criteria) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system := BuildSQLSystemPrompt(s.schema.Describe())
	user := BuildSQLUserPrompt(question, criteria)

	raw, err := s.provider.GenerateResponse(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("sql generation failed: %w", err)
	}

	candidate := ExtractSQL(raw)
	if candidate == "" {
		return "", fmt.Errorf("model response contained no SQL statement")
	}
	return candidate, nil
}

// InjectFilters replaces the filter placeholder with the parameterized
// predicate built from the criteria. The placeholder must occur exactly once
// outside comments and literals; anything else is a generation defect, not
// something to repair.
func InjectFilters(candidate string, criteria filters.Criteria) (string, map[string]interface{}, error) {
	offsets, err := sqlgate.WordOffsets(candidate, FilterToken)
	if err != nil {
		return "", nil, fmt.Errorf("candidate sql is not scannable: %w", err)
	}
	if len(offsets) != 1 {
		return "", nil, fmt.Errorf("expected exactly one %s placeholder, found %d", FilterToken, len(offsets))
	}

	predicate, params, err := filters.BuildPredicate(criteria)
	if err != nil {
		return "", nil, err
	}

	off := offsets[0]
	injected := candidate[:off] + "(" + predicate + ")" + candidate[off+len(FilterToken):]
	return injected, params, nil
}
