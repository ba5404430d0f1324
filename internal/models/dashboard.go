package models

import (
	"github.com/munero-platform/analytics-core-be/internal/core/analytics"
	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/core/trend"
)

type TrendRequest struct {
	Filters filters.Criteria `json:"filters"`
	// AnomalyThreshold overrides the configured z-score threshold when > 0.
	AnomalyThreshold float64 `json:"anomaly_threshold,omitempty"`
}

type TrendResponse struct {
	Title       string       `json:"title"`
	Granularity string       `json:"granularity"`
	Data        trend.Series `json:"data"`
}

type HeadlineRequest struct {
	Filters filters.Criteria `json:"filters"`
}

type HeadlineResponse struct {
	Cards []analytics.StatCard `json:"cards"`
}

type FilterOptionsResponse struct {
	Countries    []string `json:"countries"`
	Clients      []string `json:"clients"`
	ProductTypes []string `json:"product_types"`
	Brands       []string `json:"brands"`
	Suppliers    []string `json:"suppliers"`
}
