package warehouse

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ops-warehouse/internal/database"
)

func newTestDB(t *testing.T) database.Driver {
	t.Helper()

	driver := &database.SQLiteDriver{}
	path := filepath.Join(t.TempDir(), "warehouse_test.db")
	require.NoError(t, driver.Connect(path))
	t.Cleanup(func() { driver.Close() })

	require.NoError(t, Migrate(context.Background(), driver))
	return driver
}

func insertOrder(t *testing.T, db database.Driver, orderID string, dateKey int, customerID int64, total float64) {
	t.Helper()
	err := db.ExecContext(context.Background(),
		"INSERT INTO fact_order (order_id, date_key, customer_id, status, subtotal, tax, shipping, total) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		orderID, dateKey, customerID, "completed", total, 0.0, 0.0, total)
	require.NoError(t, err)
}

func insertOrderItem(t *testing.T, db database.Driver, itemID, orderID string, productID, qty int64, unitPrice float64) {
	t.Helper()
	err := db.ExecContext(context.Background(),
		"INSERT INTO fact_order_item (order_item_id, order_id, product_id, qty, unit_price, line_total) VALUES (?, ?, ?, ?, ?, ?)",
		itemID, orderID, productID, qty, unitPrice, float64(qty)*unitPrice)
	require.NoError(t, err)
}

func insertLogin(t *testing.T, db database.Driver, loginID string, dateKey int, customerID int64) {
	t.Helper()
	err := db.ExecContext(context.Background(),
		"INSERT INTO fact_login (login_id, date_key, customer_id, channel) VALUES (?, ?, ?, ?)",
		loginID, dateKey, customerID, "web")
	require.NoError(t, err)
}
