package analytics

// ChartConfig tells the frontend how to render a chat result. The backend
// never renders anything; it only picks the shape.
type ChartConfig struct {
	Type             string `json:"type"` // "metric", "table", "line", "bar", "pie", "scatter"
	Title            string `json:"title"`
	XColumn          string `json:"x_column,omitempty"`
	YColumn          string `json:"y_column,omitempty"`
	SecondaryYColumn string `json:"secondary_y_column,omitempty"`
	Orientation      string `json:"orientation"` // "vertical" or "horizontal"
}

// StatCard represents a summary statistic card
type StatCard struct {
	Title       string  `json:"title"`
	Value       string  `json:"value"`
	Change      float64 `json:"change"`       // Percentage change
	ChangeLabel string  `json:"change_label"` // "vs previous period"
	Trend       string  `json:"trend"`        // "up", "down", "neutral"
	Icon        string  `json:"icon,omitempty"`
}
