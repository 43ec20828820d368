package database

import (
	"context"
	"database/sql"
)

// sqlConn holds the shared behavior of the database/sql backed drivers
// (mysql and sqlite). Both use ? placeholders natively.
type sqlConn struct {
	db *sql.DB
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	_ = r.Rows.Close()
}

func (sc *sqlConn) Close() error {
	return sc.db.Close()
}

func (sc *sqlConn) ExecContext(ctx context.Context, query string, args ...interface{}) error {
	if tx, ok := ctx.Value("tx").(*sql.Tx); ok {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	_, err := sc.db.ExecContext(ctx, query, args...)
	return err
}

func (sc *sqlConn) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	if tx, ok := ctx.Value("tx").(*sql.Tx); ok {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return sqlRows{rows}, nil
	}
	rows, err := sc.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (sc *sqlConn) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	if tx, ok := ctx.Value("tx").(*sql.Tx); ok {
		return tx.QueryRowContext(ctx, query, args...)
	}
	return sc.db.QueryRowContext(ctx, query, args...)
}

func (sc *sqlConn) ExecuteTx(ctx context.Context, txFunc func(tx interface{}) error) error {
	tx, err := sc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := txFunc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
