package analytics

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

const (
	longLabelThreshold    = 20 // label length that flips bars horizontal
	pieChartMaxSlices     = 8
	barChartMaxCategories = 20
)

var topNRe = regexp.MustCompile(`top\s+(\d+)`)

// InferChart analyzes a result set and the originating question and picks
// the visualization shape. Explicit user preferences ("as a pie chart") win;
// otherwise the shape follows the data: single cell is a metric card, a
// date-like label axis is a line, two metrics with no label axis scatter,
// small categorical splits may pie, everything awkward falls back to table.
func InferChart(rs *database.ResultSet, question string) ChartConfig {
	table := func(title string) ChartConfig {
		return ChartConfig{Type: "table", Title: title, Orientation: "vertical"}
	}

	if rs.Empty() {
		return table("No Results")
	}
	if len(rs.Rows) == 1 && allNull(rs.Rows[0]) {
		return table("No Results")
	}

	// Single value: metric card.
	if len(rs.Rows) == 1 && len(rs.Columns) == 1 {
		return ChartConfig{
			Type:        "metric",
			Title:       columnTitle(rs.Columns[0]),
			Orientation: "vertical",
		}
	}
	if len(rs.Columns) == 1 {
		return table("Query Results")
	}

	numericCols, labelCols := splitColumns(rs)
	if len(rs.Columns) > 3 || len(numericCols) == 0 {
		return table("Query Results")
	}

	var labelCol string
	if len(labelCols) > 0 {
		labelCol = labelCols[0]
	}
	primary, secondary := chooseMetrics(question, numericCols)

	pref := userPreference(question)
	if pref == "table" {
		return table("Query Results")
	}

	// Scatter only when asked for, or when there is no label axis at all.
	if len(numericCols) >= 2 && len(rs.Rows) > 1 {
		if pref == "scatter" || (pref == "" && labelCol == "") {
			return ChartConfig{
				Type:        "scatter",
				Title:       chartTitle(question, "scatter", primary, secondary),
				XColumn:     primary,
				YColumn:     secondary,
				Orientation: "vertical",
			}
		}
	}
	if labelCol == "" {
		return table("Query Results")
	}

	timeSeries := isTimeSeriesColumn(labelCol)

	if uniqueCount(rs, labelCol) > barChartMaxCategories {
		return table("Query Results")
	}

	orientation := "vertical"
	if maxLabelLength(rs, labelCol) > longLabelThreshold {
		orientation = "horizontal"
	}

	// Dual-metric breakdowns: line over time, grouped bars otherwise.
	if secondary != "" {
		if pref == "line" || (pref == "" && timeSeries) {
			return ChartConfig{
				Type:             "line",
				Title:            chartTitle(question, "line", labelCol, primary),
				XColumn:          labelCol,
				YColumn:          primary,
				SecondaryYColumn: secondary,
				Orientation:      "vertical",
			}
		}
		return ChartConfig{
			Type:             "bar",
			Title:            chartTitle(question, "bar", labelCol, primary),
			XColumn:          labelCol,
			YColumn:          primary,
			SecondaryYColumn: secondary,
			Orientation:      orientation,
		}
	}

	if pref == "line" || (pref == "" && timeSeries) {
		return ChartConfig{
			Type:        "line",
			Title:       chartTitle(question, "line", labelCol, primary),
			XColumn:     labelCol,
			YColumn:     primary,
			Orientation: "vertical",
		}
	}

	if len(numericCols) == 1 {
		uniques := uniqueCount(rs, labelCol)
		if pref == "pie" || (pref == "" && uniques >= 2 && uniques <= pieChartMaxSlices && looksLikeProportion(question)) {
			return ChartConfig{
				Type:        "pie",
				Title:       chartTitle(question, "pie", labelCol, primary),
				XColumn:     labelCol,
				YColumn:     primary,
				Orientation: "vertical",
			}
		}
	}

	return ChartConfig{
		Type:        "bar",
		Title:       chartTitle(question, "bar", labelCol, primary),
		XColumn:     labelCol,
		YColumn:     primary,
		Orientation: orientation,
	}
}

// AnswerText generates a short natural language lead-in for the result.
func AnswerText(rs *database.ResultSet, question string, cfg ChartConfig) string {
	if rs.Empty() {
		return "No results found for your query."
	}

	if cfg.Type == "metric" && len(rs.Rows) == 1 && len(rs.Columns) == 1 {
		col := rs.Columns[0]
		return fmt.Sprintf("%s: %s", columnTitle(col), FormatMetricValue(rs.Rows[0][col], col))
	}

	if m := topNRe.FindStringSubmatch(strings.ToLower(question)); m != nil {
		return fmt.Sprintf("Here are your top %s results:", m[1])
	}

	switch cfg.Type {
	case "line":
		if cfg.YColumn != "" {
			return fmt.Sprintf("Here's the %s trend:", columnTitle(cfg.YColumn))
		}
	case "pie":
		if cfg.YColumn != "" {
			return fmt.Sprintf("Here's the distribution of %s:", columnTitle(cfg.YColumn))
		}
	case "bar":
		if cfg.XColumn != "" && cfg.YColumn != "" {
			return fmt.Sprintf("Here's %s by %s:", columnTitle(cfg.YColumn), columnTitle(cfg.XColumn))
		}
	case "scatter":
		if cfg.XColumn != "" && cfg.YColumn != "" {
			return fmt.Sprintf("Here's the relationship between %s and %s:", columnTitle(cfg.XColumn), columnTitle(cfg.YColumn))
		}
	case "table":
		return fmt.Sprintf("Here are %d results:", len(rs.Rows))
	}

	return fmt.Sprintf("Found %d results:", len(rs.Rows))
}

// FormatMetricValue formats a scalar for display based on its column name.
func FormatMetricValue(value interface{}, colName string) string {
	if value == nil {
		return "No Data"
	}
	num, isNumeric := toFloat64(value)
	if !isNumeric {
		return fmt.Sprintf("%v", value)
	}

	col := strings.ToLower(colName)
	switch {
	case containsAny(col, "revenue", "price", "cost", "amount", "value", "total", "sum"):
		return fmt.Sprintf("AED %.2f", num)
	case containsAny(col, "count", "quantity", "orders", "num"):
		return fmt.Sprintf("%d", int64(num))
	case containsAny(col, "percent", "pct", "rate", "margin"):
		return fmt.Sprintf("%.1f%%", num)
	default:
		return fmt.Sprintf("%.2f", num)
	}
}

// userPreference detects an explicit chart type request in the question.
func userPreference(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "pie chart", "pie graph", "use pie", "as pie", "show pie"):
		return "pie"
	case containsAny(q, "bar chart", "bar graph", "use bar", "as bar", "show bar"):
		return "bar"
	case containsAny(q, "line chart", "line graph", "use line", "as line", "show line", "trend"):
		return "line"
	case containsAny(q, "show table", "as table", "as a table", "list all"):
		return "table"
	case containsAny(q, "scatter", "correlation", "relationship"):
		return "scatter"
	}
	return ""
}

func isTimeSeriesColumn(col string) bool {
	return containsAny(strings.ToLower(col),
		"date", "time", "month", "year", "day", "week", "quarter", "period")
}

func looksLikeProportion(question string) bool {
	return containsAny(strings.ToLower(question),
		"distribution", "breakdown", "split", "proportion",
		"percentage", "share", "by type", "by category")
}

// chooseMetrics picks primary/secondary numeric columns, letting the
// question bias toward an orders-like or revenue-like column.
func chooseMetrics(question string, numericCols []string) (string, string) {
	if len(numericCols) == 0 {
		return "", ""
	}

	q := strings.ToLower(question)
	prefersOrders := containsAny(q, "how many", "count", "number of", "orders", "order count")
	prefersRevenue := containsAny(q, "revenue", "sales", "amount", "aed")

	ordersCol := findColumn(numericCols, func(tokens map[string]bool) bool {
		return tokens["orders"] || (tokens["order"] && tokens["count"])
	})
	revenueCol := findColumn(numericCols, func(tokens map[string]bool) bool {
		return tokens["revenue"] || tokens["sales"] || tokens["amount"] || tokens["aed"] || tokens["price"]
	})

	primary := numericCols[0]
	switch {
	case prefersOrders && ordersCol != "":
		primary = ordersCol
	case prefersRevenue && revenueCol != "":
		primary = revenueCol
	case revenueCol != "":
		primary = revenueCol
	}

	secondary := ""
	if len(numericCols) >= 2 {
		switch {
		case primary == ordersCol && revenueCol != "" && revenueCol != primary:
			secondary = revenueCol
		case primary == revenueCol && ordersCol != "" && ordersCol != primary:
			secondary = ordersCol
		default:
			for _, c := range numericCols {
				if c != primary {
					secondary = c
					break
				}
			}
		}
	}
	return primary, secondary
}

func chartTitle(question, chartType, primary, secondary string) string {
	q := strings.TrimRight(strings.TrimSpace(question), "?")
	if q != "" && len(q) < 60 {
		r, size := utf8.DecodeRuneInString(q)
		return string(unicode.ToUpper(r)) + q[size:]
	}

	switch chartType {
	case "line":
		if secondary != "" {
			return columnTitle(secondary) + " Over Time"
		}
		return "Value Over Time"
	case "pie":
		return "Distribution by " + columnTitle(primary)
	case "scatter":
		if secondary != "" {
			return columnTitle(primary) + " vs " + columnTitle(secondary)
		}
		return columnTitle(primary) + " Analysis"
	case "bar":
		if secondary != "" {
			return columnTitle(secondary) + " by " + columnTitle(primary)
		}
		return columnTitle(primary) + " Analysis"
	}
	return "Query Results"
}

// Helper functions

// splitColumns classifies columns as numeric or label-like by inspecting the
// first non-nil value in each.
func splitColumns(rs *database.ResultSet) (numeric []string, labels []string) {
	for _, col := range rs.Columns {
		if isNumericColumn(rs, col) {
			numeric = append(numeric, col)
		} else {
			labels = append(labels, col)
		}
	}
	return numeric, labels
}

func isNumericColumn(rs *database.ResultSet, col string) bool {
	for _, row := range rs.Rows {
		v := row[col]
		if v == nil {
			continue
		}
		_, ok := toFloat64(v)
		return ok
	}
	return false
}

func uniqueCount(rs *database.ResultSet, col string) int {
	seen := make(map[string]struct{}, len(rs.Rows))
	for _, row := range rs.Rows {
		seen[labelString(row[col])] = struct{}{}
	}
	return len(seen)
}

func maxLabelLength(rs *database.ResultSet, col string) int {
	max := 0
	for _, row := range rs.Rows {
		if n := len(labelString(row[col])); n > max {
			max = n
		}
	}
	return max
}

func allNull(row map[string]interface{}) bool {
	for _, v := range row {
		if v != nil {
			return false
		}
	}
	return true
}

func labelString(value interface{}) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func columnTitle(col string) string {
	words := strings.FieldsFunc(col, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func findColumn(cols []string, pred func(tokens map[string]bool) bool) string {
	for _, col := range cols {
		tokens := map[string]bool{}
		for _, t := range strings.FieldsFunc(strings.ToLower(col), func(r rune) bool {
			return r == '_' || r == '-' || r == ' '
		}) {
			tokens[t] = true
		}
		if pred(tokens) {
			return col
		}
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
