package warehouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-warehouse/internal/database"
)

// setupScenario migrates a fresh database, fills dim_date with the window
// 2024-01-01..2024-03-15 and loads the default dimension seed.
func setupScenario(t *testing.T) (database.Driver, []Customer, []Product) {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	anchor := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := InsertDateRange(ctx, db, GenerateDateRange(anchor, 74))
	require.NoError(t, err)

	require.NoError(t, SeedDimensions(ctx, db, DefaultSeed()))

	customers, err := FetchCustomers(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, customers)
	products, err := FetchProducts(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	return db, customers, products
}

func productByName(t *testing.T, products []Product, name string) Product {
	t.Helper()
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not in seed", name)
	return Product{}
}

func TestDailyKPIForTwoOrdersOnOneDay(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	insertOrder(t, db, "ord-1", 20240310, customers[0].CustomerID, 100)
	insertOrder(t, db, "ord-2", 20240310, customers[1].CustomerID, 50)

	rows, err := FetchDailyKPIs(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2024-03-10", row.CalendarDate)
	assert.Equal(t, 2024, row.Year)
	assert.Equal(t, 3, row.Month)
	assert.Equal(t, "March", row.MonthName)
	assert.Equal(t, int64(2), row.Orders)
	assert.InDelta(t, 150.0, row.Revenue, 0.001)
	require.NotNil(t, row.AOV)
	assert.InDelta(t, 75.0, *row.AOV, 0.001)
}

func TestMonthlyKPIMatchesRawAggregation(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	dateKeys := []int{20240105, 20240105, 20240120, 20240202, 20240214, 20240214, 20240301}
	for i, key := range dateKeys {
		insertOrder(t, db, fmt.Sprintf("ord-%d", i), key, customers[i%len(customers)].CustomerID, float64(10*(i+1)))
	}

	rows, err := FetchMonthlyKPIs(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var total int64
	for _, row := range rows {
		raw, err := CountOrdersForMonth(ctx, db, row.Year, row.Month)
		require.NoError(t, err)
		assert.Equal(t, raw, row.Orders, "month %d-%d", row.Year, row.Month)
		total += row.Orders
	}
	assert.Equal(t, int64(len(dateKeys)), total)

	// Ordered year then month ascending.
	assert.Equal(t, 1, rows[0].Month)
	assert.Equal(t, 2, rows[1].Month)
	assert.Equal(t, 3, rows[2].Month)
}

func TestMonthlyMAUCountsDistinctCustomers(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	// Customer 0 logs in three times in February, customer 1 once.
	insertLogin(t, db, "log-1", 20240201, customers[0].CustomerID)
	insertLogin(t, db, "log-2", 20240210, customers[0].CustomerID)
	insertLogin(t, db, "log-3", 20240228, customers[0].CustomerID)
	insertLogin(t, db, "log-4", 20240214, customers[1].CustomerID)

	rows, err := FetchMonthlyMAU(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, 2, rows[0].Month)
	assert.Equal(t, int64(2), rows[0].ActiveUsers)
}

func TestLoginConversionRateAndZeroLoginMonth(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	// February: every seeded customer logs in once, three of them buy.
	for i, c := range customers {
		insertLogin(t, db, fmt.Sprintf("log-%d", i), 20240205, c.CustomerID)
	}
	require.Len(t, customers, 10)
	insertOrder(t, db, "ord-1", 20240210, customers[0].CustomerID, 40)
	insertOrder(t, db, "ord-2", 20240215, customers[1].CustomerID, 60)
	insertOrder(t, db, "ord-3", 20240220, customers[2].CustomerID, 80)
	// A repeat purchase must not inflate the distinct buyer count.
	insertOrder(t, db, "ord-4", 20240221, customers[2].CustomerID, 20)

	rows, err := FetchLoginConversion(ctx, db)
	require.NoError(t, err)
	// One row per month present in dim_date: January, February, March.
	require.Len(t, rows, 3)

	jan, feb := rows[0], rows[1]

	assert.Equal(t, 1, jan.Month)
	assert.Equal(t, int64(0), jan.UsersLoggedIn)
	assert.Equal(t, int64(0), jan.Buyers)
	assert.Nil(t, jan.LoginToBuyRate, "zero-login month must yield a null rate, not an error")

	assert.Equal(t, 2, feb.Month)
	assert.Equal(t, int64(10), feb.UsersLoggedIn)
	assert.Equal(t, int64(3), feb.Buyers)
	require.NotNil(t, feb.LoginToBuyRate)
	assert.InDelta(t, 0.3, *feb.LoginToBuyRate, 0.001)
}

func TestTopProductsOrderingAndTieBreak(t *testing.T) {
	db, customers, products := setupScenario(t)
	ctx := context.Background()

	credits10k := productByName(t, products, "API Credits 10k")   // 45.00
	credits100k := productByName(t, products, "API Credits 100k") // 360.00
	enterprise := productByName(t, products, "Enterprise Plan")   // 499.00
	standard := productByName(t, products, "Standard Plan")       // 29.00
	require.Less(t, credits10k.ProductID, credits100k.ProductID)

	insertOrder(t, db, "ord-1", 20240310, customers[0].CustomerID, 2105)
	insertOrderItem(t, db, "item-1", "ord-1", enterprise.ProductID, 2, enterprise.UnitPrice) // 998
	insertOrderItem(t, db, "item-2", "ord-1", credits10k.ProductID, 8, credits10k.UnitPrice) // 360, ties with next
	insertOrderItem(t, db, "item-3", "ord-1", credits100k.ProductID, 1, credits100k.UnitPrice)
	insertOrderItem(t, db, "item-4", "ord-1", standard.ProductID, 1, standard.UnitPrice) // 29

	rows, err := FetchTopProducts(ctx, db)
	require.NoError(t, err)
	require.LessOrEqual(t, len(rows), 20)
	require.Len(t, rows, 4)

	assert.Equal(t, enterprise.ProductID, rows[0].ProductID)
	assert.Equal(t, credits10k.ProductID, rows[1].ProductID, "revenue tie breaks on product_id ascending")
	assert.Equal(t, credits100k.ProductID, rows[2].ProductID)
	assert.Equal(t, standard.ProductID, rows[3].ProductID)

	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Revenue, rows[i].Revenue)
	}

	assert.InDelta(t, 998.0, rows[0].Revenue, 0.001)
	assert.Equal(t, int64(2), rows[0].UnitsSold)
}

func TestTopProductsTruncatesAtTwenty(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	// 25 products with strictly descending prices, one unit sold of each,
	// so ranks are unambiguous and the cut excludes the five cheapest.
	for i := 0; i < 25; i++ {
		err := db.ExecContext(ctx,
			"INSERT INTO dim_product (name, category, unit_price) VALUES (?, ?, ?)",
			fmt.Sprintf("Addon %02d", i), "addon", float64(1000-10*i))
		require.NoError(t, err)
	}
	products, err := FetchProducts(ctx, db)
	require.NoError(t, err)

	insertOrder(t, db, "ord-1", 20240310, customers[0].CustomerID, 0)
	item := 0
	for _, p := range products {
		if p.Category != "addon" {
			continue
		}
		insertOrderItem(t, db, fmt.Sprintf("item-%d", item), "ord-1", p.ProductID, 1, p.UnitPrice)
		item++
	}
	require.Equal(t, 25, item)

	rows, err := FetchTopProducts(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 20)

	assert.InDelta(t, 1000.0, rows[0].Revenue, 0.001)
	assert.InDelta(t, 810.0, rows[19].Revenue, 0.001, "cut lands after the 20th-ranked product")
	for _, row := range rows {
		assert.Greater(t, row.Revenue, 805.0, "the five cheapest products must fall off the cut")
	}
}

func TestCustomerValueAggregates(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	insertOrder(t, db, "ord-1", 20240110, customers[0].CustomerID, 100)
	insertOrder(t, db, "ord-2", 20240215, customers[0].CustomerID, 50)
	insertOrder(t, db, "ord-3", 20240215, customers[1].CustomerID, 999)

	rows, err := FetchCustomerValue(ctx, db)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ordered by lifetime spend descending.
	assert.Equal(t, customers[1].CustomerID, rows[0].CustomerID)
	assert.InDelta(t, 999.0, rows[0].TotalSpend, 0.001)

	assert.Equal(t, customers[0].CustomerID, rows[1].CustomerID)
	assert.Equal(t, int64(2), rows[1].Orders)
	assert.InDelta(t, 150.0, rows[1].TotalSpend, 0.001)
	require.NotNil(t, rows[1].AOV)
	assert.InDelta(t, 75.0, *rows[1].AOV, 0.001)
}

func TestViewReadsAreIdempotent(t *testing.T) {
	db, customers, _ := setupScenario(t)
	ctx := context.Background()

	insertOrder(t, db, "ord-1", 20240105, customers[0].CustomerID, 100)
	insertLogin(t, db, "log-1", 20240105, customers[0].CustomerID)

	first, err := FetchMonthlyKPIs(ctx, db)
	require.NoError(t, err)
	second, err := FetchMonthlyKPIs(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	conv1, err := FetchLoginConversion(ctx, db)
	require.NoError(t, err)
	conv2, err := FetchLoginConversion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, conv1, conv2)
}

func TestViewExists(t *testing.T) {
	db, _, _ := setupScenario(t)
	ctx := context.Background()

	for _, view := range KPIViews {
		ok, err := ViewExists(ctx, db, view.Name)
		require.NoError(t, err)
		assert.True(t, ok, view.Name)
	}

	ok, err := ViewExists(ctx, db, "vw_does_not_exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReferentialIntegrityEnforced(t *testing.T) {
	db, customers, products := setupScenario(t)
	ctx := context.Background()

	// Unknown date_key.
	err := db.ExecContext(ctx,
		"INSERT INTO fact_order (order_id, date_key, customer_id, status, subtotal, tax, shipping, total) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		"ord-bad", 19990101, customers[0].CustomerID, "completed", 10.0, 0.0, 0.0, 10.0)
	require.Error(t, err)

	// Item referencing a nonexistent order.
	err = db.ExecContext(ctx,
		"INSERT INTO fact_order_item (order_item_id, order_id, product_id, qty, unit_price, line_total) VALUES (?, ?, ?, ?, ?, ?)",
		"item-bad", "no-such-order", products[0].ProductID, 1, 10.0, 10.0)
	require.Error(t, err)
}
