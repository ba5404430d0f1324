package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

const factTable = "fact_orders"

// columnNotes annotate the columns the prompt cares about. Columns added by
// later migrations still show up in the schema description, just without a
// note.
var columnNotes = map[string]string{
	"order_date":      "order date, TEXT formatted YYYY-MM-DD",
	"order_number":    "order identifier, repeats across lines of one order",
	"quantity":        "units on the line",
	"sale_price":      "unit sale price in the order currency",
	"order_price_aed": "line total in AED, the revenue measure",
	"client_name":     "buying client",
	"client_country":  "client country",
	"product_name":    "product on the line",
	"product_brand":   "brand of the product",
	"order_type":      "product type / category",
	"supplier_name":   "fulfilling supplier",
	"is_test":         "1 for test rows, always filtered out",
}

// SchemaCache holds a textual description of the fact table for prompt
// building. It introspects the live store so the prompt tracks migrations,
// and refreshes itself hourly.
type SchemaCache struct {
	db   *database.DB
	cron *cron.Cron

	mu          sync.RWMutex
	description string
}

func NewSchemaCache(db *database.DB) *SchemaCache {
	return &SchemaCache{
		db:   db,
		cron: cron.New(),
	}
}

// Refresh re-reads the fact table columns and rebuilds the description.
func (c *SchemaCache) Refresh(ctx context.Context) error {
	cols, err := c.columns(ctx)
	if err != nil {
		return fmt.Errorf("schema introspection failed: %w", err)
	}

	c.mu.Lock()
	c.description = buildDescription(cols)
	c.mu.Unlock()
	return nil
}

// Describe returns the cached schema description. Before the first
// successful refresh it falls back to the static column list, so prompt
// building never blocks on the store.
func (c *SchemaCache) Describe() string {
	c.mu.RLock()
	desc := c.description
	c.mu.RUnlock()

	if desc == "" {
		return buildDescription(staticColumns())
	}
	return desc
}

// Start schedules the hourly refresh. The initial refresh runs inline;
// a failure there is logged, not fatal, because Describe has a fallback.
func (c *SchemaCache) Start() {
	if err := c.Refresh(context.Background()); err != nil {
		log.Printf("⚠️  Initial schema refresh failed: %v", err)
	}

	_, err := c.cron.AddFunc("@hourly", func() {
		if err := c.Refresh(context.Background()); err != nil {
			log.Printf("⚠️  Scheduled schema refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("⚠️  Failed to schedule schema refresh: %v", err)
		return
	}

	c.cron.Start()
	log.Println("⏰ Schema cache refresh scheduled (@hourly)")
}

// Stop halts the refresh schedule.
func (c *SchemaCache) Stop() {
	c.cron.Stop()
}

func (c *SchemaCache) columns(ctx context.Context) ([]string, error) {
	var query string
	switch c.db.Dialect {
	case database.DialectPostgres:
		query = "SELECT column_name FROM information_schema.columns WHERE table_name = '" + factTable + "' ORDER BY ordinal_position"
	default:
		query = "SELECT name FROM pragma_table_info('" + factTable + "') ORDER BY cid"
	}

	rs, err := c.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	if rs.Empty() {
		return nil, fmt.Errorf("table %s has no columns", factTable)
	}

	cols := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		for _, v := range row {
			if s, ok := v.(string); ok {
				cols = append(cols, s)
			}
		}
	}
	return cols, nil
}

func buildDescription(cols []string) string {
	var sb strings.Builder
	sb.WriteString("Table " + factTable + " (one row per order line):\n")
	for _, col := range cols {
		if note, ok := columnNotes[col]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", col, note))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", col))
		}
	}
	return sb.String()
}

func staticColumns() []string {
	return []string{
		"order_date", "order_number", "quantity", "sale_price", "order_price_aed",
		"client_name", "client_country", "product_name", "product_brand",
		"order_type", "supplier_name", "is_test",
	}
}
