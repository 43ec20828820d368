package warehouse

import (
	"context"
	"fmt"

	"ops-warehouse/internal/database"
)

// The table and column names below are the wire contract with the dashboard
// and export consumers; renaming any of them is a breaking change.

func autoPK(dialect, column string) string {
	switch dialect {
	case database.DialectPostgres:
		return column + " SERIAL PRIMARY KEY"
	case database.DialectSQLite:
		return column + " INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		return column + " INT AUTO_INCREMENT PRIMARY KEY"
	}
}

func GetDimDateSchema(dialect string) string {
	return `
		CREATE TABLE IF NOT EXISTS dim_date (
			date_key INT PRIMARY KEY,
			calendar_date DATE NOT NULL UNIQUE,
			year INT NOT NULL,
			month INT NOT NULL,
			month_name VARCHAR(9) NOT NULL,
			week_of_year INT NOT NULL,
			day_of_week INT NOT NULL CHECK (day_of_week BETWEEN 1 AND 7),
			day_name VARCHAR(9) NOT NULL
		);
	`
}

func GetDimServiceSchema(dialect string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS dim_service (
			%s,
			name VARCHAR(255) NOT NULL UNIQUE,
			tier VARCHAR(32) NOT NULL
		);
	`, autoPK(dialect, "service_id"))
}

func GetDimTeamSchema(dialect string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS dim_team (
			%s,
			name VARCHAR(255) NOT NULL UNIQUE,
			region VARCHAR(64) NOT NULL
		);
	`, autoPK(dialect, "team_id"))
}

func GetDimAgentSchema(dialect string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS dim_agent (
			%s,
			name VARCHAR(255) NOT NULL,
			team_id INT NOT NULL,
			FOREIGN KEY (team_id) REFERENCES dim_team (team_id)
		);
	`, autoPK(dialect, "agent_id"))
}

func GetDimCustomerSchema(dialect string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS dim_customer (
			%s,
			name VARCHAR(255) NOT NULL,
			segment VARCHAR(32) NOT NULL,
			country VARCHAR(64) NOT NULL
		);
	`, autoPK(dialect, "customer_id"))
}

func GetDimProductSchema(dialect string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS dim_product (
			%s,
			name VARCHAR(255) NOT NULL UNIQUE,
			category VARCHAR(64) NOT NULL,
			unit_price DECIMAL(10, 2) NOT NULL CHECK (unit_price >= 0)
		);
	`, autoPK(dialect, "product_id"))
}

func GetFactOrderSchema(dialect string) string {
	return `
		CREATE TABLE IF NOT EXISTS fact_order (
			order_id VARCHAR(36) PRIMARY KEY,
			date_key INT NOT NULL,
			customer_id INT NOT NULL,
			status VARCHAR(16) NOT NULL,
			subtotal DECIMAL(10, 2) NOT NULL CHECK (subtotal >= 0),
			tax DECIMAL(10, 2) NOT NULL CHECK (tax >= 0),
			shipping DECIMAL(10, 2) NOT NULL CHECK (shipping >= 0),
			total DECIMAL(10, 2) NOT NULL CHECK (total >= 0),
			FOREIGN KEY (date_key) REFERENCES dim_date (date_key),
			FOREIGN KEY (customer_id) REFERENCES dim_customer (customer_id)
		);
	`
}

func GetFactOrderItemSchema(dialect string) string {
	return `
		CREATE TABLE IF NOT EXISTS fact_order_item (
			order_item_id VARCHAR(36) PRIMARY KEY,
			order_id VARCHAR(36) NOT NULL,
			product_id INT NOT NULL,
			qty INT NOT NULL CHECK (qty > 0),
			unit_price DECIMAL(10, 2) NOT NULL CHECK (unit_price >= 0),
			line_total DECIMAL(10, 2) NOT NULL CHECK (line_total >= 0),
			FOREIGN KEY (order_id) REFERENCES fact_order (order_id),
			FOREIGN KEY (product_id) REFERENCES dim_product (product_id)
		);
	`
}

func GetFactLoginSchema(dialect string) string {
	return `
		CREATE TABLE IF NOT EXISTS fact_login (
			login_id VARCHAR(36) PRIMARY KEY,
			date_key INT NOT NULL,
			customer_id INT NOT NULL,
			channel VARCHAR(16) NOT NULL,
			FOREIGN KEY (date_key) REFERENCES dim_date (date_key),
			FOREIGN KEY (customer_id) REFERENCES dim_customer (customer_id)
		);
	`
}

func GetFactTicketSchema(dialect string) string {
	return `
		CREATE TABLE IF NOT EXISTS fact_ticket (
			ticket_id VARCHAR(36) PRIMARY KEY,
			date_key INT NOT NULL,
			customer_id INT NOT NULL,
			agent_id INT NOT NULL,
			service_id INT NOT NULL,
			priority VARCHAR(8) NOT NULL,
			resolution_minutes INT NOT NULL CHECK (resolution_minutes >= 0),
			satisfaction_score INT NOT NULL CHECK (satisfaction_score BETWEEN 1 AND 5),
			FOREIGN KEY (date_key) REFERENCES dim_date (date_key),
			FOREIGN KEY (customer_id) REFERENCES dim_customer (customer_id),
			FOREIGN KEY (agent_id) REFERENCES dim_agent (agent_id),
			FOREIGN KEY (service_id) REFERENCES dim_service (service_id)
		);
	`
}

func GetFactIncidentSchema(dialect string) string {
	return `
		CREATE TABLE IF NOT EXISTS fact_incident (
			incident_id VARCHAR(36) PRIMARY KEY,
			date_key INT NOT NULL,
			service_id INT NOT NULL,
			severity VARCHAR(8) NOT NULL,
			downtime_minutes INT NOT NULL CHECK (downtime_minutes >= 0),
			affected_customers INT NOT NULL CHECK (affected_customers >= 0),
			FOREIGN KEY (date_key) REFERENCES dim_date (date_key),
			FOREIGN KEY (service_id) REFERENCES dim_service (service_id)
		);
	`
}

// SchemaStatements returns the table DDL in foreign-key dependency order.
func SchemaStatements(dialect string) []string {
	return []string{
		GetDimDateSchema(dialect),
		GetDimServiceSchema(dialect),
		GetDimTeamSchema(dialect),
		GetDimAgentSchema(dialect),
		GetDimCustomerSchema(dialect),
		GetDimProductSchema(dialect),
		GetFactOrderSchema(dialect),
		GetFactOrderItemSchema(dialect),
		GetFactLoginSchema(dialect),
		GetFactTicketSchema(dialect),
		GetFactIncidentSchema(dialect),
	}
}

var tableNames = []string{
	"dim_date",
	"dim_service",
	"dim_team",
	"dim_agent",
	"dim_customer",
	"dim_product",
	"fact_order",
	"fact_order_item",
	"fact_login",
	"fact_ticket",
	"fact_incident",
}

// Migrate creates all tables and (re)creates all views.
func Migrate(ctx context.Context, db database.Driver) error {
	for _, stmt := range SchemaStatements(db.Dialect()) {
		if err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return CreateViews(ctx, db)
}

// Drop removes every view and table, children before parents.
func Drop(ctx context.Context, db database.Driver) error {
	for i := len(KPIViews) - 1; i >= 0; i-- {
		if err := db.ExecContext(ctx, "DROP VIEW IF EXISTS "+KPIViews[i].Name); err != nil {
			return fmt.Errorf("drop view %s: %w", KPIViews[i].Name, err)
		}
	}
	for i := len(tableNames) - 1; i >= 0; i-- {
		if err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tableNames[i]); err != nil {
			return fmt.Errorf("drop table %s: %w", tableNames[i], err)
		}
	}
	return nil
}
