package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/core/llm"
	"github.com/munero-platform/analytics-core-be/internal/models"
)

// stubProvider returns a canned model response.
type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) GetProviderName() string { return "Stub" }

func newChatService(t *testing.T, response string) *ChatService {
	t.Helper()
	db := testDB(t)
	llmService := llm.NewServiceWithProvider(
		&stubProvider{response: response},
		llm.NewSchemaCache(db),
		5,
	)
	return NewChatService(db, llmService, 50)
}

func TestAskRunsFullPipeline(t *testing.T) {
	svc := newChatService(t, "```sql\n"+
		"SELECT client_name, SUM(order_price_aed) as revenue FROM fact_orders WHERE __FILTERS__ GROUP BY client_name ORDER BY revenue DESC\n"+
		"```")

	resp := svc.Ask(context.Background(), models.ChatRequest{Message: "revenue per client"})
	require.Empty(t, resp.Error)

	assert.Equal(t, []string{"client_name", "revenue"}, resp.Columns)
	assert.Len(t, resp.Data, 3)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, "bar", resp.Chart.Type)

	// The surfaced SQL keeps the placeholder so exports can re-inject.
	assert.Contains(t, resp.SQL, llm.FilterToken)
}

func TestAskAppliesDashboardFilters(t *testing.T) {
	svc := newChatService(t,
		"SELECT COUNT(DISTINCT order_number) as orders FROM fact_orders WHERE __FILTERS__")

	resp := svc.Ask(context.Background(), models.ChatRequest{
		Message: "how many orders",
		Filters: filters.Criteria{Countries: []string{"KSA"}},
	})
	require.Empty(t, resp.Error)
	require.Len(t, resp.Data, 1)
	assert.EqualValues(t, 1, resp.Data[0]["orders"])
}

func TestAskRejectsUnsafeGeneratedSQL(t *testing.T) {
	svc := newChatService(t, "DROP TABLE fact_orders")

	resp := svc.Ask(context.Background(), models.ChatRequest{Message: "drop everything"})
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.Data)
	assert.Nil(t, resp.Chart)
}

func TestAskRefusesMissingPlaceholder(t *testing.T) {
	svc := newChatService(t, "SELECT client_name FROM fact_orders")

	resp := svc.Ask(context.Background(), models.ChatRequest{Message: "clients"})
	assert.NotEmpty(t, resp.Error)
	assert.Contains(t, resp.Error, llm.FilterToken)
}

func TestAskSurvivesProviderFailure(t *testing.T) {
	db := testDB(t)
	llmService := llm.NewServiceWithProvider(
		&stubProvider{err: assert.AnError},
		llm.NewSchemaCache(db),
		5,
	)
	svc := NewChatService(db, llmService, 50)

	resp := svc.Ask(context.Background(), models.ChatRequest{Message: "anything"})
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Answer)
}
