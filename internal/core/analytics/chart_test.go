package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

func rs(columns []string, rows ...map[string]interface{}) *database.ResultSet {
	return &database.ResultSet{Columns: columns, Rows: rows}
}

func TestInferChartEmptyResult(t *testing.T) {
	cfg := InferChart(rs([]string{"revenue"}), "total revenue")
	assert.Equal(t, "table", cfg.Type)
	assert.Equal(t, "No Results", cfg.Title)
}

func TestInferChartSingleCellIsMetric(t *testing.T) {
	cfg := InferChart(
		rs([]string{"total_revenue"}, map[string]interface{}{"total_revenue": 1234.5}),
		"what is the total revenue",
	)
	assert.Equal(t, "metric", cfg.Type)
	assert.Equal(t, "Total Revenue", cfg.Title)
}

func TestInferChartDateLabelIsLine(t *testing.T) {
	cfg := InferChart(
		rs([]string{"order_month", "revenue"},
			map[string]interface{}{"order_month": "2025-01", "revenue": 100.0},
			map[string]interface{}{"order_month": "2025-02", "revenue": 200.0},
		),
		"revenue over the last months",
	)
	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, "order_month", cfg.XColumn)
	assert.Equal(t, "revenue", cfg.YColumn)
}

func TestInferChartCategoricalIsBar(t *testing.T) {
	cfg := InferChart(
		rs([]string{"client_name", "revenue"},
			map[string]interface{}{"client_name": "Acme", "revenue": 100.0},
			map[string]interface{}{"client_name": "Globex", "revenue": 200.0},
		),
		"revenue per client",
	)
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "vertical", cfg.Orientation)
}

func TestInferChartLongLabelsGoHorizontal(t *testing.T) {
	cfg := InferChart(
		rs([]string{"client_name", "revenue"},
			map[string]interface{}{"client_name": "An Extremely Long Client Name LLC", "revenue": 100.0},
			map[string]interface{}{"client_name": "Globex", "revenue": 200.0},
		),
		"revenue per client",
	)
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "horizontal", cfg.Orientation)
}

func TestInferChartProportionQuestionIsPie(t *testing.T) {
	cfg := InferChart(
		rs([]string{"order_type", "revenue"},
			map[string]interface{}{"order_type": "Gift Card", "revenue": 100.0},
			map[string]interface{}{"order_type": "Merchandise", "revenue": 50.0},
		),
		"revenue breakdown by type",
	)
	assert.Equal(t, "pie", cfg.Type)
}

func TestInferChartUserPreferenceWins(t *testing.T) {
	cfg := InferChart(
		rs([]string{"order_type", "revenue"},
			map[string]interface{}{"order_type": "Gift Card", "revenue": 100.0},
			map[string]interface{}{"order_type": "Merchandise", "revenue": 50.0},
		),
		"show revenue by type as a table",
	)
	assert.Equal(t, "table", cfg.Type)
}

func TestInferChartTwoMetricsNoLabelIsScatter(t *testing.T) {
	cfg := InferChart(
		rs([]string{"quantity", "revenue"},
			map[string]interface{}{"quantity": 1.0, "revenue": 100.0},
			map[string]interface{}{"quantity": 2.0, "revenue": 150.0},
		),
		"quantity vs revenue",
	)
	assert.Equal(t, "scatter", cfg.Type)
}

func TestInferChartWideResultIsTable(t *testing.T) {
	cfg := InferChart(
		rs([]string{"a", "b", "c", "d"},
			map[string]interface{}{"a": "x", "b": 1.0, "c": 2.0, "d": 3.0},
		),
		"everything",
	)
	assert.Equal(t, "table", cfg.Type)
}

func TestInferChartNoNumericColumnsIsTable(t *testing.T) {
	cfg := InferChart(
		rs([]string{"client_name", "client_country"},
			map[string]interface{}{"client_name": "Acme", "client_country": "UAE"},
		),
		"clients and countries",
	)
	assert.Equal(t, "table", cfg.Type)
}

func TestInferChartDualMetricTimeSeries(t *testing.T) {
	cfg := InferChart(
		rs([]string{"date_label", "revenue", "orders"},
			map[string]interface{}{"date_label": "2025-01", "revenue": 100.0, "orders": int64(5)},
			map[string]interface{}{"date_label": "2025-02", "revenue": 150.0, "orders": int64(7)},
		),
		"monthly revenue and order volume",
	)
	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, "date_label", cfg.XColumn)
	assert.Equal(t, "revenue", cfg.YColumn)
	assert.Equal(t, "orders", cfg.SecondaryYColumn)
}

func TestAnswerTextMetric(t *testing.T) {
	text := AnswerText(
		rs([]string{"total_revenue"}, map[string]interface{}{"total_revenue": 1234.5}),
		"total revenue",
		ChartConfig{Type: "metric"},
	)
	assert.Equal(t, "Total Revenue: AED 1234.50", text)
}

func TestAnswerTextTopN(t *testing.T) {
	text := AnswerText(
		rs([]string{"client_name", "revenue"},
			map[string]interface{}{"client_name": "Acme", "revenue": 10.0},
		),
		"Top 5 clients by revenue",
		ChartConfig{Type: "bar", XColumn: "client_name", YColumn: "revenue"},
	)
	assert.Equal(t, "Here are your top 5 results:", text)
}

func TestChartTitleCapitalizesFirstRune(t *testing.T) {
	assert.Equal(t, "Top brands", chartTitle("top brands?", "bar", "product_brand", ""))
	// A multi-byte leading rune must survive capitalization intact.
	assert.Equal(t, "Évolution du revenu", chartTitle("évolution du revenu", "line", "month", "revenue"))
	// Nothing left after trimming falls back to the shape-derived title.
	assert.Equal(t, "Product Brand Analysis", chartTitle("?", "bar", "product_brand", ""))
}

func TestFormatMetricValue(t *testing.T) {
	assert.Equal(t, "AED 1500.00", FormatMetricValue(1500.0, "total_revenue"))
	assert.Equal(t, "42", FormatMetricValue(int64(42), "order_count"))
	assert.Equal(t, "12.5%", FormatMetricValue(12.49, "growth_pct"))
	assert.Equal(t, "No Data", FormatMetricValue(nil, "anything"))
}
