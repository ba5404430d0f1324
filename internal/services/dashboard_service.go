package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/munero-platform/analytics-core-be/internal/core/analytics"
	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/core/trend"
	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
	"github.com/munero-platform/analytics-core-be/internal/shared/utils"
)

// DashboardService serves the fixed analytics surfaces. All of its SQL is
// assembled here from constants plus the filter predicate; nothing model
// generated passes through it.
type DashboardService struct {
	db               *database.DB
	anomalyThreshold float64
}

func NewDashboardService(db *database.DB, anomalyThreshold float64) *DashboardService {
	if anomalyThreshold <= 0 {
		anomalyThreshold = 3.0
	}
	return &DashboardService{db: db, anomalyThreshold: anomalyThreshold}
}

// Trend returns the revenue/orders series bucketed by granularity, with
// growth and anomaly annotations. Granularity must be day, month or year.
func (s *DashboardService) Trend(ctx context.Context, req models.TrendRequest, granularity string) (*models.TrendResponse, error) {
	switch granularity {
	case "":
		granularity = "month"
	case "day", "month", "year":
	default:
		return nil, &filters.InvalidFilterError{Reason: fmt.Sprintf("unknown granularity %q", granularity)}
	}

	predicate, params, err := filters.BuildPredicate(req.Filters)
	if err != nil {
		return nil, err
	}

	labelExpr := s.db.Dialect.DateLabelExpr("order_date", granularity)
	query := fmt.Sprintf(`SELECT
    %s as date_label,
    SUM(order_price_aed) as revenue,
    COUNT(DISTINCT order_number) as orders
FROM fact_orders
WHERE %s
GROUP BY %s
ORDER BY %s ASC`, labelExpr, predicate, labelExpr, labelExpr)

	rs, err := s.db.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}

	series := trend.BuildSeries(rs)
	threshold := s.anomalyThreshold
	if req.AnomalyThreshold > 0 {
		threshold = req.AnomalyThreshold
	}
	trend.Annotate(series, threshold)

	if len(series) == 0 {
		utils.LogInfo("No trend data for the given filters", map[string]interface{}{
			"granularity": granularity,
		})
	}

	return &models.TrendResponse{
		Title:       "Revenue & Orders Trend",
		Granularity: granularity,
		Data:        series,
	}, nil
}

// Headline returns the KPI cards for the current filter selection.
func (s *DashboardService) Headline(ctx context.Context, req models.HeadlineRequest) (*models.HeadlineResponse, error) {
	predicate, params, err := filters.BuildPredicate(req.Filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT
    COUNT(DISTINCT order_number) as total_orders,
    SUM(order_price_aed) as total_revenue,
    COUNT(DISTINCT product_brand) as distinct_brands,
    COUNT(DISTINCT client_name) as distinct_clients
FROM fact_orders
WHERE %s`, predicate)

	rs, err := s.db.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}

	var totalOrders, totalRevenue, brands, clients float64
	if !rs.Empty() {
		row := rs.Rows[0]
		totalOrders = asFloat(row["total_orders"])
		totalRevenue = asFloat(row["total_revenue"])
		brands = asFloat(row["distinct_brands"])
		clients = asFloat(row["distinct_clients"])
	}

	aov := 0.0
	if totalOrders > 0 {
		aov = totalRevenue / totalOrders
	}
	ordersPerClient := 0.0
	if clients > 0 {
		ordersPerClient = totalOrders / clients
	}

	cards := []analytics.StatCard{
		{Title: "Total Orders", Value: fmt.Sprintf("%.0f", totalOrders), Trend: "neutral"},
		{Title: "Total Revenue (AED)", Value: fmt.Sprintf("AED %.2f", totalRevenue), Trend: "neutral"},
		{Title: "Avg Order Value", Value: fmt.Sprintf("AED %.2f", aov), Trend: "neutral"},
		{Title: "Orders per Client", Value: fmt.Sprintf("%.2f", ordersPerClient), Trend: "neutral"},
		{Title: "Brands Sold", Value: fmt.Sprintf("%.0f", brands), Trend: "neutral"},
	}
	return &models.HeadlineResponse{Cards: cards}, nil
}

// FilterOptions returns the distinct values per filterable dimension for
// the dashboard dropdowns. Test rows and blanks are excluded.
func (s *DashboardService) FilterOptions(ctx context.Context) (*models.FilterOptionsResponse, error) {
	resp := &models.FilterOptionsResponse{}
	targets := []struct {
		column string
		dest   *[]string
	}{
		{"client_country", &resp.Countries},
		{"client_name", &resp.Clients},
		{"order_type", &resp.ProductTypes},
		{"product_brand", &resp.Brands},
		{"supplier_name", &resp.Suppliers},
	}

	for _, t := range targets {
		values, err := s.distinctValues(ctx, t.column)
		if err != nil {
			return nil, err
		}
		*t.dest = values
	}
	return resp, nil
}

func (s *DashboardService) distinctValues(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s as value FROM fact_orders WHERE is_test = 0 AND %s IS NOT NULL AND %s != ''",
		column, column, column)

	rs, err := s.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		if v, ok := row["value"].(string); ok && v != "" {
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
