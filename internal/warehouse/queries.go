package warehouse

import (
	"context"
	"fmt"
	"time"

	"ops-warehouse/internal/database"
)

// dateString normalizes what the drivers hand back for DATE columns: pgx
// yields time.Time, mysql []byte, sqlite the stored text.
func dateString(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func FetchDimDates(ctx context.Context, db database.Driver) ([]DateRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT date_key, calendar_date, year, month, month_name, week_of_year, day_of_week, day_name FROM dim_date ORDER BY date_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]DateRow, 0)
	for rows.Next() {
		var r DateRow
		var cal interface{}
		if err := rows.Scan(&r.DateKey, &cal, &r.Year, &r.Month, &r.MonthName, &r.WeekOfYear, &r.DayOfWeek, &r.DayName); err != nil {
			return nil, err
		}
		r.CalendarDate = dateString(cal)
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchServices(ctx context.Context, db database.Driver) ([]Service, error) {
	rows, err := db.QueryContext(ctx, "SELECT service_id, name, tier FROM dim_service ORDER BY service_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Service, 0)
	for rows.Next() {
		var r Service
		if err := rows.Scan(&r.ServiceID, &r.Name, &r.Tier); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchTeams(ctx context.Context, db database.Driver) ([]Team, error) {
	rows, err := db.QueryContext(ctx, "SELECT team_id, name, region FROM dim_team ORDER BY team_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Team, 0)
	for rows.Next() {
		var r Team
		if err := rows.Scan(&r.TeamID, &r.Name, &r.Region); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchAgents(ctx context.Context, db database.Driver) ([]Agent, error) {
	rows, err := db.QueryContext(ctx, "SELECT agent_id, name, team_id FROM dim_agent ORDER BY agent_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Agent, 0)
	for rows.Next() {
		var r Agent
		if err := rows.Scan(&r.AgentID, &r.Name, &r.TeamID); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchCustomers(ctx context.Context, db database.Driver) ([]Customer, error) {
	rows, err := db.QueryContext(ctx, "SELECT customer_id, name, segment, country FROM dim_customer ORDER BY customer_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Customer, 0)
	for rows.Next() {
		var r Customer
		if err := rows.Scan(&r.CustomerID, &r.Name, &r.Segment, &r.Country); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchProducts(ctx context.Context, db database.Driver) ([]Product, error) {
	rows, err := db.QueryContext(ctx, "SELECT product_id, name, category, unit_price FROM dim_product ORDER BY product_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Product, 0)
	for rows.Next() {
		var r Product
		if err := rows.Scan(&r.ProductID, &r.Name, &r.Category, &r.UnitPrice); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchOrders(ctx context.Context, db database.Driver) ([]OrderRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT order_id, date_key, customer_id, status, subtotal, tax, shipping, total FROM fact_order ORDER BY date_key, order_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]OrderRow, 0)
	for rows.Next() {
		var r OrderRow
		if err := rows.Scan(&r.OrderID, &r.DateKey, &r.CustomerID, &r.Status, &r.Subtotal, &r.Tax, &r.Shipping, &r.Total); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchOrderItems(ctx context.Context, db database.Driver) ([]OrderItemRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT order_item_id, order_id, product_id, qty, unit_price, line_total FROM fact_order_item ORDER BY order_id, order_item_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]OrderItemRow, 0)
	for rows.Next() {
		var r OrderItemRow
		if err := rows.Scan(&r.OrderItemID, &r.OrderID, &r.ProductID, &r.Qty, &r.UnitPrice, &r.LineTotal); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchLogins(ctx context.Context, db database.Driver) ([]LoginRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT login_id, date_key, customer_id, channel FROM fact_login ORDER BY date_key, login_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]LoginRow, 0)
	for rows.Next() {
		var r LoginRow
		if err := rows.Scan(&r.LoginID, &r.DateKey, &r.CustomerID, &r.Channel); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchTickets(ctx context.Context, db database.Driver) ([]TicketRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT ticket_id, date_key, customer_id, agent_id, service_id, priority, resolution_minutes, satisfaction_score FROM fact_ticket ORDER BY date_key, ticket_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]TicketRow, 0)
	for rows.Next() {
		var r TicketRow
		if err := rows.Scan(&r.TicketID, &r.DateKey, &r.CustomerID, &r.AgentID, &r.ServiceID, &r.Priority, &r.ResolutionMinutes, &r.SatisfactionScore); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchIncidents(ctx context.Context, db database.Driver) ([]IncidentRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT incident_id, date_key, service_id, severity, downtime_minutes, affected_customers FROM fact_incident ORDER BY date_key, incident_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]IncidentRow, 0)
	for rows.Next() {
		var r IncidentRow
		if err := rows.Scan(&r.IncidentID, &r.DateKey, &r.ServiceID, &r.Severity, &r.DowntimeMinutes, &r.AffectedCustomers); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchDailyKPIs(ctx context.Context, db database.Driver) ([]DailyKPI, error) {
	rows, err := db.QueryContext(ctx, "SELECT calendar_date, year, month, month_name, orders, revenue, aov FROM vw_kpi_daily ORDER BY year, month, calendar_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]DailyKPI, 0)
	for rows.Next() {
		var r DailyKPI
		var cal interface{}
		if err := rows.Scan(&cal, &r.Year, &r.Month, &r.MonthName, &r.Orders, &r.Revenue, &r.AOV); err != nil {
			return nil, err
		}
		r.CalendarDate = dateString(cal)
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchMonthlyKPIs(ctx context.Context, db database.Driver) ([]MonthlyKPI, error) {
	rows, err := db.QueryContext(ctx, "SELECT year, month, orders, revenue, aov FROM vw_kpi_monthly ORDER BY year, month")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]MonthlyKPI, 0)
	for rows.Next() {
		var r MonthlyKPI
		if err := rows.Scan(&r.Year, &r.Month, &r.Orders, &r.Revenue, &r.AOV); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchProductPerformance(ctx context.Context, db database.Driver) ([]ProductPerformance, error) {
	return fetchProducts(ctx, db, "SELECT product_id, product_name, units_sold, revenue FROM vw_product_performance ORDER BY product_id")
}

func FetchTopProducts(ctx context.Context, db database.Driver) ([]ProductPerformance, error) {
	// The 20-row cut happens inside the view; the outer ORDER BY only pins
	// presentation order, which engines do not guarantee for view reads.
	return fetchProducts(ctx, db, "SELECT product_id, product_name, units_sold, revenue FROM vw_top_products ORDER BY revenue DESC, product_id")
}

func fetchProducts(ctx context.Context, db database.Driver, query string) ([]ProductPerformance, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]ProductPerformance, 0)
	for rows.Next() {
		var r ProductPerformance
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.UnitsSold, &r.Revenue); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// FetchCustomerValue orders by lifetime spend descending, the order the
// dashboard extract has always used.
func FetchCustomerValue(ctx context.Context, db database.Driver) ([]CustomerValue, error) {
	rows, err := db.QueryContext(ctx, "SELECT customer_id, customer_name, orders, total_spend, aov FROM vw_customer_value ORDER BY total_spend DESC, customer_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]CustomerValue, 0)
	for rows.Next() {
		var r CustomerValue
		if err := rows.Scan(&r.CustomerID, &r.CustomerName, &r.Orders, &r.TotalSpend, &r.AOV); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchMonthlyMAU(ctx context.Context, db database.Driver) ([]MonthlyMAU, error) {
	rows, err := db.QueryContext(ctx, "SELECT year, month, active_users FROM vw_monthly_mau ORDER BY year, month")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]MonthlyMAU, 0)
	for rows.Next() {
		var r MonthlyMAU
		if err := rows.Scan(&r.Year, &r.Month, &r.ActiveUsers); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func FetchLoginConversion(ctx context.Context, db database.Driver) ([]LoginConversion, error) {
	rows, err := db.QueryContext(ctx, "SELECT year, month, users_logged_in, buyers, login_to_buy_rate FROM vw_login_conversion ORDER BY year, month")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]LoginConversion, 0)
	for rows.Next() {
		var r LoginConversion
		if err := rows.Scan(&r.Year, &r.Month, &r.UsersLoggedIn, &r.Buyers, &r.LoginToBuyRate); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CountOrdersForMonth aggregates straight off the fact table, bypassing the
// views; used to cross-check vw_kpi_monthly.
func CountOrdersForMonth(ctx context.Context, db database.Driver, year, month int) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM fact_order o JOIN dim_date d ON d.date_key = o.date_key WHERE d.year = ? AND d.month = ?",
		year, month).Scan(&count)
	return count, err
}
