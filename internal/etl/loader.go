package etl

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"

	"ops-warehouse/internal/database"
	"ops-warehouse/internal/warehouse"
)

type Options struct {
	Batches   int
	BatchSize int // orders per batch
	Seed      int64
}

type Report struct {
	RunID          string
	Orders         int64
	OrderItems     int64
	Logins         int64
	Tickets        int64
	Incidents      int64
	RowsLoaded     int64
	Batches        int
	Throughput     float64
	P95Latency     time.Duration
	P99Latency     time.Duration
	AverageLatency time.Duration
	TotalTime      time.Duration
}

var (
	orderStatuses = []string{"completed", "completed", "completed", "pending", "refunded"}
	loginChannels = []string{"web", "web", "mobile", "api"}
	priorities    = []string{"low", "medium", "high", "urgent"}
	severities    = []string{"sev1", "sev2", "sev3"}
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LoadFacts generates fact batches referencing only dimension and date rows
// that already exist, so every insert satisfies the FK contract. Each batch
// is one transaction; a failed statement fails the whole batch and the run.
func LoadFacts(ctx context.Context, db database.Driver, opts Options) (*Report, error) {
	customers, err := warehouse.FetchCustomers(ctx, db)
	if err != nil {
		return nil, err
	}
	products, err := warehouse.FetchProducts(ctx, db)
	if err != nil {
		return nil, err
	}
	agents, err := warehouse.FetchAgents(ctx, db)
	if err != nil {
		return nil, err
	}
	services, err := warehouse.FetchServices(ctx, db)
	if err != nil {
		return nil, err
	}
	dates, err := warehouse.FetchDimDates(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 || len(products) == 0 || len(agents) == 0 || len(services) == 0 || len(dates) == 0 {
		return nil, fmt.Errorf("dimensions are not seeded; run migrate, dates and seed first")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	report := &Report{
		RunID:   uuid.New().String(),
		Batches: opts.Batches,
	}

	// Max batch latency of 10 seconds, significant figures of 3
	histogram := hdrhistogram.New(1, 10000000000, 3)
	totalStart := time.Now()

	for b := 0; b < opts.Batches; b++ {
		orders := make([]warehouse.OrderRow, 0, opts.BatchSize)
		items := make([]warehouse.OrderItemRow, 0, opts.BatchSize*2)
		logins := make([]warehouse.LoginRow, 0, opts.BatchSize*2)
		tickets := make([]warehouse.TicketRow, 0, opts.BatchSize/2+1)
		incidents := make([]warehouse.IncidentRow, 0, opts.BatchSize/10+1)

		for i := 0; i < opts.BatchSize; i++ {
			orderID := uuid.New().String()
			var subtotal float64
			for n := rng.Intn(3) + 1; n > 0; n-- {
				p := products[rng.Intn(len(products))]
				qty := int64(rng.Intn(4) + 1)
				lineTotal := round2(float64(qty) * p.UnitPrice)
				items = append(items, warehouse.OrderItemRow{
					OrderItemID: uuid.New().String(),
					OrderID:     orderID,
					ProductID:   p.ProductID,
					Qty:         qty,
					UnitPrice:   p.UnitPrice,
					LineTotal:   lineTotal,
				})
				subtotal += lineTotal
			}
			subtotal = round2(subtotal)

			tax := round2(subtotal * 0.08)
			shipping := 0.0
			if rng.Intn(2) == 0 {
				shipping = 5.99
			}

			orders = append(orders, warehouse.OrderRow{
				OrderID:    orderID,
				DateKey:    dates[rng.Intn(len(dates))].DateKey,
				CustomerID: customers[rng.Intn(len(customers))].CustomerID,
				Status:     orderStatuses[rng.Intn(len(orderStatuses))],
				Subtotal:   subtotal,
				Tax:        tax,
				Shipping:   shipping,
				Total:      round2(subtotal + tax + shipping),
			})
		}

		for i := 0; i < opts.BatchSize*2; i++ {
			logins = append(logins, warehouse.LoginRow{
				LoginID:    uuid.New().String(),
				DateKey:    dates[rng.Intn(len(dates))].DateKey,
				CustomerID: customers[rng.Intn(len(customers))].CustomerID,
				Channel:    loginChannels[rng.Intn(len(loginChannels))],
			})
		}

		for i := 0; i < opts.BatchSize/2; i++ {
			tickets = append(tickets, warehouse.TicketRow{
				TicketID:          uuid.New().String(),
				DateKey:           dates[rng.Intn(len(dates))].DateKey,
				CustomerID:        customers[rng.Intn(len(customers))].CustomerID,
				AgentID:           agents[rng.Intn(len(agents))].AgentID,
				ServiceID:         services[rng.Intn(len(services))].ServiceID,
				Priority:          priorities[rng.Intn(len(priorities))],
				ResolutionMinutes: int64(rng.Intn(480)),
				SatisfactionScore: int64(rng.Intn(5) + 1),
			})
		}

		for i := 0; i < opts.BatchSize/10+1; i++ {
			incidents = append(incidents, warehouse.IncidentRow{
				IncidentID:        uuid.New().String(),
				DateKey:           dates[rng.Intn(len(dates))].DateKey,
				ServiceID:         services[rng.Intn(len(services))].ServiceID,
				Severity:          severities[rng.Intn(len(severities))],
				DowntimeMinutes:   int64(rng.Intn(240)),
				AffectedCustomers: int64(rng.Intn(500)),
			})
		}

		batchStart := time.Now()
		err := db.ExecuteTx(ctx, func(tx interface{}) error {
			txCtx := context.WithValue(ctx, "tx", tx)
			if err := insertOrders(txCtx, db, orders); err != nil {
				return err
			}
			if err := insertOrderItems(txCtx, db, items); err != nil {
				return err
			}
			if err := insertLogins(txCtx, db, logins); err != nil {
				return err
			}
			if err := insertTickets(txCtx, db, tickets); err != nil {
				return err
			}
			return insertIncidents(txCtx, db, incidents)
		})
		if err != nil {
			return nil, fmt.Errorf("load batch %d: %w", b+1, err)
		}
		if err := histogram.RecordValue(time.Since(batchStart).Nanoseconds()); err != nil {
			return nil, err
		}

		report.Orders += int64(len(orders))
		report.OrderItems += int64(len(items))
		report.Logins += int64(len(logins))
		report.Tickets += int64(len(tickets))
		report.Incidents += int64(len(incidents))
	}

	report.RowsLoaded = report.Orders + report.OrderItems + report.Logins + report.Tickets + report.Incidents
	report.TotalTime = time.Since(totalStart)
	report.Throughput = float64(report.RowsLoaded) / report.TotalTime.Seconds()
	report.P95Latency = time.Duration(histogram.ValueAtQuantile(95))
	report.P99Latency = time.Duration(histogram.ValueAtQuantile(99))
	report.AverageLatency = time.Duration(int64(histogram.Mean()))

	return report, nil
}

func insertOrders(ctx context.Context, db database.Driver, rows []warehouse.OrderRow) error {
	if len(rows) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*8)
	for _, r := range rows {
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs, r.OrderID, r.DateKey, r.CustomerID, r.Status, r.Subtotal, r.Tax, r.Shipping, r.Total)
	}
	stmt := "INSERT INTO fact_order (order_id, date_key, customer_id, status, subtotal, tax, shipping, total) VALUES " +
		strings.Join(valueStrings, ",")
	return db.ExecContext(ctx, stmt, valueArgs...)
}

func insertOrderItems(ctx context.Context, db database.Driver, rows []warehouse.OrderItemRow) error {
	if len(rows) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*6)
	for _, r := range rows {
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs, r.OrderItemID, r.OrderID, r.ProductID, r.Qty, r.UnitPrice, r.LineTotal)
	}
	stmt := "INSERT INTO fact_order_item (order_item_id, order_id, product_id, qty, unit_price, line_total) VALUES " +
		strings.Join(valueStrings, ",")
	return db.ExecContext(ctx, stmt, valueArgs...)
}

func insertLogins(ctx context.Context, db database.Driver, rows []warehouse.LoginRow) error {
	if len(rows) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*4)
	for _, r := range rows {
		valueStrings = append(valueStrings, "(?, ?, ?, ?)")
		valueArgs = append(valueArgs, r.LoginID, r.DateKey, r.CustomerID, r.Channel)
	}
	stmt := "INSERT INTO fact_login (login_id, date_key, customer_id, channel) VALUES " +
		strings.Join(valueStrings, ",")
	return db.ExecContext(ctx, stmt, valueArgs...)
}

func insertTickets(ctx context.Context, db database.Driver, rows []warehouse.TicketRow) error {
	if len(rows) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*8)
	for _, r := range rows {
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs, r.TicketID, r.DateKey, r.CustomerID, r.AgentID, r.ServiceID, r.Priority, r.ResolutionMinutes, r.SatisfactionScore)
	}
	stmt := "INSERT INTO fact_ticket (ticket_id, date_key, customer_id, agent_id, service_id, priority, resolution_minutes, satisfaction_score) VALUES " +
		strings.Join(valueStrings, ",")
	return db.ExecContext(ctx, stmt, valueArgs...)
}

func insertIncidents(ctx context.Context, db database.Driver, rows []warehouse.IncidentRow) error {
	if len(rows) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*6)
	for _, r := range rows {
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs, r.IncidentID, r.DateKey, r.ServiceID, r.Severity, r.DowntimeMinutes, r.AffectedCustomers)
	}
	stmt := "INSERT INTO fact_incident (incident_id, date_key, service_id, severity, downtime_minutes, affected_customers) VALUES " +
		strings.Join(valueStrings, ",")
	return db.ExecContext(ctx, stmt, valueArgs...)
}
