package warehouse

import (
	"context"
	"fmt"

	"ops-warehouse/internal/database"
)

// qualityChecks are read-only fact-table sanity counts. A healthy load
// reports zero for every check. Monetary comparisons tolerate 2 cents of
// rounding drift.
var qualityChecks = []struct {
	Name  string
	Query string
}{
	{
		Name:  "bad_total_rows",
		Query: "SELECT COUNT(*) FROM fact_order WHERE ABS(total - (subtotal + tax + shipping)) > 0.02",
	},
	{
		Name: "orphan_items",
		Query: `SELECT COUNT(*) FROM fact_order_item oi
			LEFT JOIN fact_order o ON o.order_id = oi.order_id
			WHERE o.order_id IS NULL`,
	},
	{
		Name:  "negative_money_rows",
		Query: "SELECT COUNT(*) FROM fact_order WHERE subtotal < 0 OR tax < 0 OR shipping < 0 OR total < 0",
	},
	{
		Name:  "bad_line_total_rows",
		Query: "SELECT COUNT(*) FROM fact_order_item WHERE ABS(line_total - (qty * unit_price)) > 0.02",
	},
}

func RunChecks(ctx context.Context, db database.Driver) (map[string]int64, error) {
	results := make(map[string]int64, len(qualityChecks))
	for _, check := range qualityChecks {
		var n int64
		if err := db.QueryRowContext(ctx, check.Query).Scan(&n); err != nil {
			return nil, fmt.Errorf("quality check %s: %w", check.Name, err)
		}
		results[check.Name] = n
	}
	return results, nil
}
