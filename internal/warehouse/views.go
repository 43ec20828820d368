package warehouse

import (
	"context"
	"fmt"

	"ops-warehouse/internal/database"
)

type ViewDefinition struct {
	Name string
	DDL  string
}

// KPIViews is the single authoritative definition of revenue, AOV, MAU and
// conversion shared by every downstream reader. The SQL is kept portable
// across mysql, postgres and sqlite: float division via * 1.0, zero
// denominators turned into NULL via NULLIF (never a division error), empty
// revenue sums left to the engine's sum-of-empty-set convention.
//
// Order matters: vw_top_products selects from vw_product_performance.
var KPIViews = []ViewDefinition{
	{
		Name: "vw_kpi_daily",
		DDL: `
			CREATE VIEW vw_kpi_daily AS
			SELECT
				d.calendar_date,
				d.year,
				d.month,
				d.month_name,
				COUNT(*) AS orders,
				SUM(o.total) AS revenue,
				SUM(o.total) * 1.0 / NULLIF(COUNT(*), 0) AS aov
			FROM fact_order o
			JOIN dim_date d ON d.date_key = o.date_key
			GROUP BY d.calendar_date, d.year, d.month, d.month_name;
		`,
	},
	{
		Name: "vw_kpi_monthly",
		DDL: `
			CREATE VIEW vw_kpi_monthly AS
			SELECT
				d.year,
				d.month,
				COUNT(*) AS orders,
				SUM(o.total) AS revenue,
				SUM(o.total) * 1.0 / NULLIF(COUNT(*), 0) AS aov
			FROM fact_order o
			JOIN dim_date d ON d.date_key = o.date_key
			GROUP BY d.year, d.month
			ORDER BY d.year, d.month;
		`,
	},
	{
		Name: "vw_product_performance",
		DDL: `
			CREATE VIEW vw_product_performance AS
			SELECT
				p.product_id,
				p.name AS product_name,
				SUM(oi.qty) AS units_sold,
				SUM(oi.qty * oi.unit_price) AS revenue
			FROM fact_order_item oi
			JOIN dim_product p ON p.product_id = oi.product_id
			GROUP BY p.product_id, p.name;
		`,
	},
	{
		// Ties on revenue break on product_id ascending so the cut at 20
		// rows is deterministic.
		Name: "vw_top_products",
		DDL: `
			CREATE VIEW vw_top_products AS
			SELECT product_id, product_name, units_sold, revenue
			FROM vw_product_performance
			ORDER BY revenue DESC, product_id ASC
			LIMIT 20;
		`,
	},
	{
		Name: "vw_customer_value",
		DDL: `
			CREATE VIEW vw_customer_value AS
			SELECT
				c.customer_id,
				c.name AS customer_name,
				COUNT(*) AS orders,
				SUM(o.total) AS total_spend,
				SUM(o.total) * 1.0 / NULLIF(COUNT(*), 0) AS aov
			FROM fact_order o
			JOIN dim_customer c ON c.customer_id = o.customer_id
			GROUP BY c.customer_id, c.name;
		`,
	},
	{
		Name: "vw_monthly_mau",
		DDL: `
			CREATE VIEW vw_monthly_mau AS
			SELECT
				d.year,
				d.month,
				COUNT(DISTINCT l.customer_id) AS active_users
			FROM fact_login l
			JOIN dim_date d ON d.date_key = l.date_key
			GROUP BY d.year, d.month
			ORDER BY d.year, d.month;
		`,
	},
	{
		// Months come from dim_date, not from the login facts, so a month
		// with no logins still yields a row: users_logged_in 0, buyers 0
		// and a NULL rate.
		Name: "vw_login_conversion",
		DDL: `
			CREATE VIEW vw_login_conversion AS
			SELECT
				m.year,
				m.month,
				COALESCE(l.users_logged_in, 0) AS users_logged_in,
				COALESCE(b.buyers, 0) AS buyers,
				COALESCE(b.buyers, 0) * 1.0 / NULLIF(COALESCE(l.users_logged_in, 0), 0) AS login_to_buy_rate
			FROM (
				SELECT DISTINCT year, month FROM dim_date
			) m
			LEFT JOIN (
				SELECT d.year, d.month, COUNT(DISTINCT fl.customer_id) AS users_logged_in
				FROM fact_login fl
				JOIN dim_date d ON d.date_key = fl.date_key
				GROUP BY d.year, d.month
			) l ON l.year = m.year AND l.month = m.month
			LEFT JOIN (
				SELECT d.year, d.month, COUNT(DISTINCT o.customer_id) AS buyers
				FROM fact_order o
				JOIN dim_date d ON d.date_key = o.date_key
				GROUP BY d.year, d.month
			) b ON b.year = m.year AND b.month = m.month
			ORDER BY m.year, m.month;
		`,
	},
}

// CreateViews drops and recreates every KPI view so the definitions always
// match this build. All drops happen first, dependents before their sources.
func CreateViews(ctx context.Context, db database.Driver) error {
	for i := len(KPIViews) - 1; i >= 0; i-- {
		if err := db.ExecContext(ctx, "DROP VIEW IF EXISTS "+KPIViews[i].Name); err != nil {
			return fmt.Errorf("drop view %s: %w", KPIViews[i].Name, err)
		}
	}
	for _, view := range KPIViews {
		if err := db.ExecContext(ctx, view.DDL); err != nil {
			return fmt.Errorf("create view %s: %w", view.Name, err)
		}
	}
	return nil
}

// ViewExists reports whether a view is present, using each engine's catalog.
func ViewExists(ctx context.Context, db database.Driver, name string) (bool, error) {
	var query string
	switch db.Dialect() {
	case database.DialectSQLite:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'view' AND name = ?"
	case database.DialectPostgres:
		query = "SELECT COUNT(*) FROM information_schema.views WHERE table_schema = 'public' AND table_name = ?"
	default:
		query = "SELECT COUNT(*) FROM information_schema.views WHERE table_schema = DATABASE() AND table_name = ?"
	}

	var count int64
	if err := db.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
