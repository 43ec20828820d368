package warehouse

// Dimension rows as stored, surrogate ids included. The parquet tags drive
// the columnar export; column names match the relational contract.

type Service struct {
	ServiceID int64  `parquet:"service_id"`
	Name      string `parquet:"name"`
	Tier      string `parquet:"tier"`
}

type Team struct {
	TeamID int64  `parquet:"team_id"`
	Name   string `parquet:"name"`
	Region string `parquet:"region"`
}

type Agent struct {
	AgentID int64  `parquet:"agent_id"`
	Name    string `parquet:"name"`
	TeamID  int64  `parquet:"team_id"`
}

type Customer struct {
	CustomerID int64  `parquet:"customer_id"`
	Name       string `parquet:"name"`
	Segment    string `parquet:"segment"`
	Country    string `parquet:"country"`
}

type Product struct {
	ProductID int64   `parquet:"product_id"`
	Name      string  `parquet:"name"`
	Category  string  `parquet:"category"`
	UnitPrice float64 `parquet:"unit_price"`
}

// Fact rows. Append-only; ids are caller-supplied.

type OrderRow struct {
	OrderID    string  `parquet:"order_id"`
	DateKey    int     `parquet:"date_key"`
	CustomerID int64   `parquet:"customer_id"`
	Status     string  `parquet:"status"`
	Subtotal   float64 `parquet:"subtotal"`
	Tax        float64 `parquet:"tax"`
	Shipping   float64 `parquet:"shipping"`
	Total      float64 `parquet:"total"`
}

type OrderItemRow struct {
	OrderItemID string  `parquet:"order_item_id"`
	OrderID     string  `parquet:"order_id"`
	ProductID   int64   `parquet:"product_id"`
	Qty         int64   `parquet:"qty"`
	UnitPrice   float64 `parquet:"unit_price"`
	LineTotal   float64 `parquet:"line_total"`
}

type LoginRow struct {
	LoginID    string `parquet:"login_id"`
	DateKey    int    `parquet:"date_key"`
	CustomerID int64  `parquet:"customer_id"`
	Channel    string `parquet:"channel"`
}

type TicketRow struct {
	TicketID          string `parquet:"ticket_id"`
	DateKey           int    `parquet:"date_key"`
	CustomerID        int64  `parquet:"customer_id"`
	AgentID           int64  `parquet:"agent_id"`
	ServiceID         int64  `parquet:"service_id"`
	Priority          string `parquet:"priority"`
	ResolutionMinutes int64  `parquet:"resolution_minutes"`
	SatisfactionScore int64  `parquet:"satisfaction_score"`
}

type IncidentRow struct {
	IncidentID        string `parquet:"incident_id"`
	DateKey           int    `parquet:"date_key"`
	ServiceID         int64  `parquet:"service_id"`
	Severity          string `parquet:"severity"`
	DowntimeMinutes   int64  `parquet:"downtime_minutes"`
	AffectedCustomers int64  `parquet:"affected_customers"`
}

// View output rows. Nullable measures are pointers: a nil AOV or rate is the
// defined zero-denominator result, not an error.

type DailyKPI struct {
	CalendarDate string   `parquet:"calendar_date"`
	Year         int      `parquet:"year"`
	Month        int      `parquet:"month"`
	MonthName    string   `parquet:"month_name"`
	Orders       int64    `parquet:"orders"`
	Revenue      float64  `parquet:"revenue"`
	AOV          *float64 `parquet:"aov,optional"`
}

type MonthlyKPI struct {
	Year    int      `parquet:"year"`
	Month   int      `parquet:"month"`
	Orders  int64    `parquet:"orders"`
	Revenue float64  `parquet:"revenue"`
	AOV     *float64 `parquet:"aov,optional"`
}

type ProductPerformance struct {
	ProductID   int64   `parquet:"product_id"`
	ProductName string  `parquet:"product_name"`
	UnitsSold   int64   `parquet:"units_sold"`
	Revenue     float64 `parquet:"revenue"`
}

type CustomerValue struct {
	CustomerID   int64    `parquet:"customer_id"`
	CustomerName string   `parquet:"customer_name"`
	Orders       int64    `parquet:"orders"`
	TotalSpend   float64  `parquet:"total_spend"`
	AOV          *float64 `parquet:"aov,optional"`
}

type MonthlyMAU struct {
	Year        int   `parquet:"year"`
	Month       int   `parquet:"month"`
	ActiveUsers int64 `parquet:"active_users"`
}

type LoginConversion struct {
	Year           int      `parquet:"year"`
	Month          int      `parquet:"month"`
	UsersLoggedIn  int64    `parquet:"users_logged_in"`
	Buyers         int64    `parquet:"buyers"`
	LoginToBuyRate *float64 `parquet:"login_to_buy_rate,optional"`
}
