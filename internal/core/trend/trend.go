package trend

import (
	"fmt"
	"math"

	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

// Anomaly flagging needs a minimum of evidence; below this many buckets no
// point is ever flagged.
const minAnomalyPoints = 5

// Point is one time bucket of the dual-axis trend. Growth and anomaly fields
// are derived by Annotate and only meaningful within the full ordered series.
type Point struct {
	Label          string  `json:"date_label"`
	Revenue        float64 `json:"revenue"`
	Orders         int64   `json:"orders"`
	RevenueGrowth  float64 `json:"revenue_growth"`
	OrdersGrowth   float64 `json:"orders_growth"`
	RevenueAnomaly bool    `json:"is_revenue_anomaly"`
	OrdersAnomaly  bool    `json:"is_order_anomaly"`
}

// Series is an ordered sequence of points, strictly increasing by bucket.
// Buckets with no matching rows simply do not appear.
type Series []Point

// BuildSeries maps an already-grouped, already-ordered result set (columns
// date_label, revenue, orders) into a series with derived fields zeroed.
// Zero rows produce an empty series, not an error.
func BuildSeries(rs *database.ResultSet) Series {
	if rs.Empty() {
		return Series{}
	}

	series := make(Series, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		series = append(series, Point{
			Label:   toString(row["date_label"]),
			Revenue: toFloat64(row["revenue"]),
			Orders:  int64(toFloat64(row["orders"])),
		})
	}
	return series
}

// Annotate fills in period-over-period growth and z-score anomaly flags for
// both series in place. Pure and deterministic; the revenue and order series
// are evaluated independently.
func Annotate(series Series, threshold float64) {
	if len(series) == 0 {
		return
	}

	revenue := make([]float64, len(series))
	orders := make([]float64, len(series))
	for i, p := range series {
		revenue[i] = p.Revenue
		orders[i] = float64(p.Orders)
	}

	revenueGrowth := growth(revenue)
	ordersGrowth := growth(orders)
	revenueFlags := anomalyFlags(revenue, threshold)
	orderFlags := anomalyFlags(orders, threshold)

	for i := range series {
		series[i].RevenueGrowth = revenueGrowth[i]
		series[i].OrdersGrowth = ordersGrowth[i]
		series[i].RevenueAnomaly = revenueFlags[i]
		series[i].OrdersAnomaly = orderFlags[i]
	}
}

// growth computes period-over-period percentage change. The first bucket has
// no predecessor and a zero predecessor would divide by zero; both cases
// yield 0 rather than Inf/NaN.
func growth(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out[i] = (values[i] - prev) / prev * 100
	}
	return out
}

// anomalyFlags marks points whose |z-score| reaches the threshold. Fewer
// than minAnomalyPoints buckets or zero variance means insufficient
// statistical evidence: nothing is flagged. This is a heuristic band, not a
// normality test.
func anomalyFlags(values []float64, threshold float64) []bool {
	flags := make([]bool, len(values))
	if len(values) < minAnomalyPoints {
		return flags
	}

	mean, stddev := meanStddev(values)
	if stddev == 0 {
		return flags
	}

	for i, v := range values {
		z := (v - mean) / stddev
		if math.Abs(z) >= threshold {
			flags[i] = true
		}
	}
	return flags
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(values []float64) (float64, float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
