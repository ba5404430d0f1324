package models

import (
	"github.com/munero-platform/analytics-core-be/internal/core/analytics"
	"github.com/munero-platform/analytics-core-be/internal/core/filters"
)

type ChatRequest struct {
	Message string           `json:"message"`
	Filters filters.Criteria `json:"filters"`
}

// ChatResponse is always HTTP 200; pipeline failures set Error and leave the
// data fields empty so the frontend renders a friendly message instead of a
// broken chart.
type ChatResponse struct {
	Answer  string                   `json:"answer"`
	SQL     string                   `json:"sql,omitempty"`
	Columns []string                 `json:"columns,omitempty"`
	Data    []map[string]interface{} `json:"data,omitempty"`
	Chart   *analytics.ChartConfig   `json:"chart,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

type ExportRequest struct {
	SQLQuery string           `json:"sql_query"`
	Filename string           `json:"filename,omitempty"`
	Filters  filters.Criteria `json:"filters"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	LLMProvider string `json:"llm_provider"`
}
