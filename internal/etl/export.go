package etl

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"ops-warehouse/internal/database"
	"ops-warehouse/internal/warehouse"
)

type DatasetReport struct {
	Name string
	Rows int
}

type ExportReport struct {
	OutputDir string
	Datasets  []DatasetReport
	TotalTime time.Duration
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// writeDataset writes one table or view to <out>/<name>.csv and
// <out>/parquet/<name>.parquet.
func writeDataset[T any](outDir, name string, header []string, records [][]string, rows []T) error {
	f, err := os.Create(filepath.Join(outDir, name+".csv"))
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	pf, err := os.Create(filepath.Join(outDir, "parquet", name+".parquet"))
	if err != nil {
		return err
	}
	pw := parquet.NewGenericWriter[T](pf)
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			pf.Close()
			return err
		}
	}
	if err := pw.Close(); err != nil {
		pf.Close()
		return err
	}
	return pf.Close()
}

// ExportAll extracts every dimension table, fact table and KPI view to CSV
// and Parquet for offline consumption. Views are probed first and skipped if
// the database predates them.
func ExportAll(ctx context.Context, db database.Driver, outDir string) (*ExportReport, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Join(outDir, "parquet"), 0o755); err != nil {
		return nil, err
	}

	report := &ExportReport{OutputDir: outDir}
	add := func(name string, rows int) {
		report.Datasets = append(report.Datasets, DatasetReport{Name: name, Rows: rows})
	}

	dates, err := warehouse.FetchDimDates(ctx, db)
	if err != nil {
		return nil, err
	}
	records := make([][]string, 0, len(dates))
	for _, r := range dates {
		records = append(records, []string{
			strconv.Itoa(r.DateKey), r.CalendarDate, strconv.Itoa(r.Year), strconv.Itoa(r.Month),
			r.MonthName, strconv.Itoa(r.WeekOfYear), strconv.Itoa(r.DayOfWeek), r.DayName,
		})
	}
	if err := writeDataset(outDir, "dim_date",
		[]string{"date_key", "calendar_date", "year", "month", "month_name", "week_of_year", "day_of_week", "day_name"},
		records, dates); err != nil {
		return nil, err
	}
	add("dim_date", len(dates))

	services, err := warehouse.FetchServices(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range services {
		records = append(records, []string{itoa64(r.ServiceID), r.Name, r.Tier})
	}
	if err := writeDataset(outDir, "dim_service", []string{"service_id", "name", "tier"}, records, services); err != nil {
		return nil, err
	}
	add("dim_service", len(services))

	teams, err := warehouse.FetchTeams(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range teams {
		records = append(records, []string{itoa64(r.TeamID), r.Name, r.Region})
	}
	if err := writeDataset(outDir, "dim_team", []string{"team_id", "name", "region"}, records, teams); err != nil {
		return nil, err
	}
	add("dim_team", len(teams))

	agents, err := warehouse.FetchAgents(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range agents {
		records = append(records, []string{itoa64(r.AgentID), r.Name, itoa64(r.TeamID)})
	}
	if err := writeDataset(outDir, "dim_agent", []string{"agent_id", "name", "team_id"}, records, agents); err != nil {
		return nil, err
	}
	add("dim_agent", len(agents))

	customers, err := warehouse.FetchCustomers(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range customers {
		records = append(records, []string{itoa64(r.CustomerID), r.Name, r.Segment, r.Country})
	}
	if err := writeDataset(outDir, "dim_customer", []string{"customer_id", "name", "segment", "country"}, records, customers); err != nil {
		return nil, err
	}
	add("dim_customer", len(customers))

	products, err := warehouse.FetchProducts(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range products {
		records = append(records, []string{itoa64(r.ProductID), r.Name, r.Category, money(r.UnitPrice)})
	}
	if err := writeDataset(outDir, "dim_product", []string{"product_id", "name", "category", "unit_price"}, records, products); err != nil {
		return nil, err
	}
	add("dim_product", len(products))

	orders, err := warehouse.FetchOrders(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range orders {
		records = append(records, []string{
			r.OrderID, strconv.Itoa(r.DateKey), itoa64(r.CustomerID), r.Status,
			money(r.Subtotal), money(r.Tax), money(r.Shipping), money(r.Total),
		})
	}
	if err := writeDataset(outDir, "fact_order",
		[]string{"order_id", "date_key", "customer_id", "status", "subtotal", "tax", "shipping", "total"},
		records, orders); err != nil {
		return nil, err
	}
	add("fact_order", len(orders))

	items, err := warehouse.FetchOrderItems(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range items {
		records = append(records, []string{
			r.OrderItemID, r.OrderID, itoa64(r.ProductID), itoa64(r.Qty), money(r.UnitPrice), money(r.LineTotal),
		})
	}
	if err := writeDataset(outDir, "fact_order_item",
		[]string{"order_item_id", "order_id", "product_id", "qty", "unit_price", "line_total"},
		records, items); err != nil {
		return nil, err
	}
	add("fact_order_item", len(items))

	logins, err := warehouse.FetchLogins(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range logins {
		records = append(records, []string{r.LoginID, strconv.Itoa(r.DateKey), itoa64(r.CustomerID), r.Channel})
	}
	if err := writeDataset(outDir, "fact_login",
		[]string{"login_id", "date_key", "customer_id", "channel"}, records, logins); err != nil {
		return nil, err
	}
	add("fact_login", len(logins))

	tickets, err := warehouse.FetchTickets(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range tickets {
		records = append(records, []string{
			r.TicketID, strconv.Itoa(r.DateKey), itoa64(r.CustomerID), itoa64(r.AgentID), itoa64(r.ServiceID),
			r.Priority, itoa64(r.ResolutionMinutes), itoa64(r.SatisfactionScore),
		})
	}
	if err := writeDataset(outDir, "fact_ticket",
		[]string{"ticket_id", "date_key", "customer_id", "agent_id", "service_id", "priority", "resolution_minutes", "satisfaction_score"},
		records, tickets); err != nil {
		return nil, err
	}
	add("fact_ticket", len(tickets))

	incidents, err := warehouse.FetchIncidents(ctx, db)
	if err != nil {
		return nil, err
	}
	records = records[:0]
	for _, r := range incidents {
		records = append(records, []string{
			r.IncidentID, strconv.Itoa(r.DateKey), itoa64(r.ServiceID), r.Severity,
			itoa64(r.DowntimeMinutes), itoa64(r.AffectedCustomers),
		})
	}
	if err := writeDataset(outDir, "fact_incident",
		[]string{"incident_id", "date_key", "service_id", "severity", "downtime_minutes", "affected_customers"},
		records, incidents); err != nil {
		return nil, err
	}
	add("fact_incident", len(incidents))

	if err := exportViews(ctx, db, outDir, add); err != nil {
		return nil, err
	}

	report.TotalTime = time.Since(start)
	return report, nil
}

func exportViews(ctx context.Context, db database.Driver, outDir string, add func(string, int)) error {
	exists := func(name string) (bool, error) {
		ok, err := warehouse.ViewExists(ctx, db, name)
		if err != nil {
			return false, fmt.Errorf("probe view %s: %w", name, err)
		}
		return ok, nil
	}

	if ok, err := exists("vw_kpi_daily"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchDailyKPIs(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				r.CalendarDate, strconv.Itoa(r.Year), strconv.Itoa(r.Month), r.MonthName,
				itoa64(r.Orders), money(r.Revenue), optFloat(r.AOV),
			})
		}
		if err := writeDataset(outDir, "vw_kpi_daily",
			[]string{"calendar_date", "year", "month", "month_name", "orders", "revenue", "aov"},
			records, rows); err != nil {
			return err
		}
		add("vw_kpi_daily", len(rows))
	}

	if ok, err := exists("vw_kpi_monthly"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchMonthlyKPIs(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				strconv.Itoa(r.Year), strconv.Itoa(r.Month), itoa64(r.Orders), money(r.Revenue), optFloat(r.AOV),
			})
		}
		if err := writeDataset(outDir, "vw_kpi_monthly",
			[]string{"year", "month", "orders", "revenue", "aov"}, records, rows); err != nil {
			return err
		}
		add("vw_kpi_monthly", len(rows))
	}

	if ok, err := exists("vw_product_performance"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchProductPerformance(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{itoa64(r.ProductID), r.ProductName, itoa64(r.UnitsSold), money(r.Revenue)})
		}
		if err := writeDataset(outDir, "vw_product_performance",
			[]string{"product_id", "product_name", "units_sold", "revenue"}, records, rows); err != nil {
			return err
		}
		add("vw_product_performance", len(rows))
	}

	if ok, err := exists("vw_top_products"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchTopProducts(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{itoa64(r.ProductID), r.ProductName, itoa64(r.UnitsSold), money(r.Revenue)})
		}
		if err := writeDataset(outDir, "vw_top_products",
			[]string{"product_id", "product_name", "units_sold", "revenue"}, records, rows); err != nil {
			return err
		}
		add("vw_top_products", len(rows))
	}

	if ok, err := exists("vw_customer_value"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchCustomerValue(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				itoa64(r.CustomerID), r.CustomerName, itoa64(r.Orders), money(r.TotalSpend), optFloat(r.AOV),
			})
		}
		if err := writeDataset(outDir, "vw_customer_value",
			[]string{"customer_id", "customer_name", "orders", "total_spend", "aov"}, records, rows); err != nil {
			return err
		}
		add("vw_customer_value", len(rows))
	}

	if ok, err := exists("vw_monthly_mau"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchMonthlyMAU(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{strconv.Itoa(r.Year), strconv.Itoa(r.Month), itoa64(r.ActiveUsers)})
		}
		if err := writeDataset(outDir, "vw_monthly_mau",
			[]string{"year", "month", "active_users"}, records, rows); err != nil {
			return err
		}
		add("vw_monthly_mau", len(rows))
	}

	if ok, err := exists("vw_login_conversion"); err != nil {
		return err
	} else if ok {
		rows, err := warehouse.FetchLoginConversion(ctx, db)
		if err != nil {
			return err
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				strconv.Itoa(r.Year), strconv.Itoa(r.Month), itoa64(r.UsersLoggedIn), itoa64(r.Buyers), optFloat(r.LoginToBuyRate),
			})
		}
		if err := writeDataset(outDir, "vw_login_conversion",
			[]string{"year", "month", "users_logged_in", "buyers", "login_to_buy_rate"}, records, rows); err != nil {
			return err
		}
		add("vw_login_conversion", len(rows))
	}

	return nil
}
