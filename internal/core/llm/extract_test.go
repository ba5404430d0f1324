package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
)

func TestExtractSQLFromFence(t *testing.T) {
	raw := "Here you go:\n```sql\nSELECT client_name FROM fact_orders WHERE __FILTERS__\n```\nLet me know!"
	assert.Equal(t, "SELECT client_name FROM fact_orders WHERE __FILTERS__", ExtractSQL(raw))
}

func TestExtractSQLFromGenericFence(t *testing.T) {
	raw := "```\nSELECT 1\n```"
	assert.Equal(t, "SELECT 1", ExtractSQL(raw))
}

func TestExtractSQLStripsThinkTags(t *testing.T) {
	raw := "<think>\nThe user wants revenue by brand.\n</think>\nSELECT product_brand FROM fact_orders WHERE __FILTERS__"
	assert.Equal(t, "SELECT product_brand FROM fact_orders WHERE __FILTERS__", ExtractSQL(raw))
}

func TestExtractSQLStripsLabelPrefix(t *testing.T) {
	assert.Equal(t, "SELECT 1", ExtractSQL("SQL: SELECT 1"))
	assert.Equal(t, "SELECT 1", ExtractSQL("query:\nSELECT 1"))
}

func TestExtractSQLSkipsPreamble(t *testing.T) {
	raw := "Sure! The query you want is SELECT client_name FROM fact_orders"
	assert.Equal(t, "SELECT client_name FROM fact_orders", ExtractSQL(raw))
}

func TestExtractSQLCutsAtFirstSemicolon(t *testing.T) {
	raw := "SELECT 1; hope that helps!"
	assert.Equal(t, "SELECT 1", ExtractSQL(raw))
}

func TestExtractSQLNoStatement(t *testing.T) {
	assert.Equal(t, "I cannot answer that.", ExtractSQL("I cannot answer that."))
}

func TestInjectFiltersReplacesPlaceholder(t *testing.T) {
	sql := "SELECT client_name FROM fact_orders WHERE __FILTERS__ GROUP BY client_name"
	injected, params, err := InjectFilters(sql, filters.Criteria{Countries: []string{"UAE"}})
	require.NoError(t, err)
	assert.NotContains(t, injected, FilterToken)
	assert.Contains(t, injected, "is_test = 0")
	assert.Contains(t, injected, "client_country IN (@country_0)")
	assert.Equal(t, "UAE", params["country_0"])
}

func TestInjectFiltersRequiresExactlyOneToken(t *testing.T) {
	_, _, err := InjectFilters("SELECT 1", filters.Criteria{})
	assert.Error(t, err)

	_, _, err = InjectFilters("SELECT 1 WHERE __FILTERS__ AND __FILTERS__", filters.Criteria{})
	assert.Error(t, err)
}

func TestInjectFiltersIgnoresTokenInLiteral(t *testing.T) {
	// The only real occurrence is outside the literal; the quoted one is data.
	sql := "SELECT '__FILTERS__' FROM fact_orders WHERE __FILTERS__"
	injected, _, err := InjectFilters(sql, filters.Criteria{})
	require.NoError(t, err)
	assert.Contains(t, injected, "'__FILTERS__'")
	assert.Contains(t, injected, "(is_test = 0)")

	// A token only inside a literal does not count.
	_, _, err = InjectFilters("SELECT '__FILTERS__' FROM fact_orders", filters.Criteria{})
	assert.Error(t, err)
}

func TestInjectFiltersPropagatesFilterErrors(t *testing.T) {
	_, _, err := InjectFilters(
		"SELECT 1 WHERE __FILTERS__",
		filters.Criteria{StartDate: "2025-06-01", EndDate: "2025-01-01"},
	)
	var invalid *filters.InvalidFilterError
	require.ErrorAs(t, err, &invalid)
}
