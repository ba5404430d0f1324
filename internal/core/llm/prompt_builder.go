package llm

import (
	"fmt"
	"strings"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
)

// FilterToken is the placeholder the model must emit in its WHERE clause.
// The pipeline later swaps it for the parameterized filter predicate, so
// generated SQL never embeds user-controlled filter values.
const FilterToken = "__FILTERS__"

// BuildSQLSystemPrompt membuat system prompt untuk NL-to-SQL generation
func BuildSQLSystemPrompt(schema string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert SQL analyst for a B2B gift card and merchandise ordering platform.\n")
	sb.WriteString("You translate business questions into a single read-only SQL query.\n\n")

	sb.WriteString("=== SCHEMA ===\n")
	sb.WriteString(schema)
	sb.WriteString("\n\n")

	sb.WriteString("The table is fully denormalized: one row per order line, no joins are ever needed.\n\n")

	sb.WriteString("=== TERMINOLOGY ===\n")
	sb.WriteString("- \"revenue\" or \"sales\" means SUM(order_price_aed)\n")
	sb.WriteString("- \"orders\" or \"order count\" means COUNT(DISTINCT order_number)\n")
	sb.WriteString("- \"clients\" or \"customers\" means client_name\n")
	sb.WriteString("- \"products\" means product_name; \"brands\" means product_brand\n")
	sb.WriteString("- \"product type\" or \"category\" means order_type\n")
	sb.WriteString("- amounts are in AED unless the question says otherwise\n\n")

	sb.WriteString("Rules:\n")
	sb.WriteString("- Generate exactly ONE SELECT statement, nothing else\n")
	sb.WriteString(fmt.Sprintf("- The WHERE clause MUST contain the token %s exactly once; write it as WHERE %s and AND further conditions after it\n", FilterToken, FilterToken))
	sb.WriteString("- Never write INSERT, UPDATE, DELETE, DROP or any other mutating statement\n")
	sb.WriteString("- Dates in order_date are formatted YYYY-MM-DD\n")
	sb.WriteString("- For top-N questions add ORDER BY and LIMIT N\n")
	sb.WriteString("- Return raw SQL only, no markdown fences and no explanation\n")

	return sb.String()
}

// BuildSQLUserPrompt renders the question plus a short summary of the active
// dashboard filters so the model does not re-derive them as literals.
func BuildSQLUserPrompt(question string, criteria filters.Criteria) string {
	var sb strings.Builder

	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n")

	if summary := summarizeCriteria(criteria); summary != "" {
		sb.WriteString("Active filters (already applied via the placeholder, do not repeat them): ")
		sb.WriteString(summary)
		sb.WriteString("\n")
	}

	return sb.String()
}

func summarizeCriteria(c filters.Criteria) string {
	var parts []string

	if c.StartDate != "" || c.EndDate != "" {
		parts = append(parts, fmt.Sprintf("date range %s..%s", orAny(c.StartDate), orAny(c.EndDate)))
	}
	for _, item := range []struct {
		name   string
		values []string
	}{
		{"countries", c.Countries},
		{"clients", c.Clients},
		{"product types", c.ProductTypes},
		{"brands", c.Brands},
		{"suppliers", c.Suppliers},
	} {
		if len(item.values) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", item.name, strings.Join(item.values, ", ")))
		}
	}

	return strings.Join(parts, "; ")
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}
