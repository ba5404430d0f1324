package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db := database.NewDB(filepath.Join(t.TempDir(), "test.sqlite"), "sqlite", 5)
	t.Cleanup(func() { db.Close() })

	_, err := db.Exec(`CREATE TABLE fact_orders (
		order_date TEXT, order_number TEXT, quantity INTEGER,
		sale_price REAL, order_price_aed REAL,
		client_name TEXT, client_country TEXT, product_name TEXT,
		product_brand TEXT, order_type TEXT, supplier_name TEXT,
		is_test INTEGER DEFAULT 0)`)
	require.NoError(t, err)

	rows := []string{
		// January: two orders, 110 AED
		`('2025-01-10', 'A-1', 1, 50, 50, 'Acme', 'UAE', 'Card 50', 'BrandX', 'Gift Card', 'SupplierA', 0)`,
		`('2025-01-15', 'A-2', 2, 30, 60, 'Globex', 'KSA', 'Card 30', 'BrandY', 'Gift Card', 'SupplierB', 0)`,
		// February: two orders, 135 AED, one multi-line order
		`('2025-02-01', 'A-3', 1, 75, 75, 'Acme', 'UAE', 'Mug', 'BrandX', 'Merchandise', 'SupplierA', 0)`,
		`('2025-02-20', 'A-4', 1, 20, 20, 'Initech', 'UAE', 'Card 20', 'BrandZ', 'Gift Card', 'SupplierC', 0)`,
		`('2025-02-20', 'A-4', 2, 20, 40, 'Initech', 'UAE', 'Card 20', 'BrandZ', 'Gift Card', 'SupplierC', 0)`,
		// Test row, always excluded
		`('2025-02-25', 'T-1', 1, 999, 999, 'QA', 'UAE', 'Card 999', 'BrandX', 'Gift Card', 'SupplierA', 1)`,
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO fact_orders VALUES ` + r)
		require.NoError(t, err)
	}
	return db
}

func TestTrendMonthlyBuckets(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)

	resp, err := svc.Trend(context.Background(), models.TrendRequest{}, "month")
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)

	jan, feb := resp.Data[0], resp.Data[1]
	assert.Equal(t, "2025-01", jan.Label)
	assert.InDelta(t, 110, jan.Revenue, 1e-9)
	assert.Equal(t, int64(2), jan.Orders)

	assert.Equal(t, "2025-02", feb.Label)
	assert.InDelta(t, 135, feb.Revenue, 1e-9)
	assert.Equal(t, int64(2), feb.Orders, "multi-line order counts once, test row excluded")

	assert.Equal(t, 0.0, jan.RevenueGrowth)
	assert.InDelta(t, (135.0-110.0)/110.0*100, feb.RevenueGrowth, 1e-9)
}

func TestTrendDefaultsToMonth(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)
	resp, err := svc.Trend(context.Background(), models.TrendRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, "month", resp.Granularity)
}

func TestTrendRejectsUnknownGranularity(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)
	_, err := svc.Trend(context.Background(), models.TrendRequest{}, "fortnight")
	var invalid *filters.InvalidFilterError
	require.ErrorAs(t, err, &invalid)
}

func TestTrendAppliesFilters(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)
	resp, err := svc.Trend(context.Background(), models.TrendRequest{
		Filters: filters.Criteria{Countries: []string{"KSA"}},
	}, "month")
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "2025-01", resp.Data[0].Label)
	assert.InDelta(t, 60, resp.Data[0].Revenue, 1e-9)
}

func TestTrendEmptyResultIsNotAnError(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)
	resp, err := svc.Trend(context.Background(), models.TrendRequest{
		Filters: filters.Criteria{StartDate: "2030-01-01", EndDate: "2030-12-31"},
	}, "month")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestHeadlineKPIs(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)

	resp, err := svc.Headline(context.Background(), models.HeadlineRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Cards, 5)

	byTitle := map[string]string{}
	for _, card := range resp.Cards {
		byTitle[card.Title] = card.Value
	}
	assert.Equal(t, "4", byTitle["Total Orders"])
	assert.Equal(t, "AED 245.00", byTitle["Total Revenue (AED)"])
	assert.Equal(t, "AED 61.25", byTitle["Avg Order Value"])
	assert.Equal(t, "3", byTitle["Brands Sold"])
}

func TestFilterOptionsExcludeTestRows(t *testing.T) {
	svc := NewDashboardService(testDB(t), 3.0)

	resp, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"KSA", "UAE"}, resp.Countries)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, resp.Clients, "test-row client must not appear")
	assert.Equal(t, []string{"Gift Card", "Merchandise"}, resp.ProductTypes)
	assert.Equal(t, []string{"BrandX", "BrandY", "BrandZ"}, resp.Brands)
	assert.Equal(t, []string{"SupplierA", "SupplierB", "SupplierC"}, resp.Suppliers)
}
