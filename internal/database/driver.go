package database

import (
	"context"
	"fmt"
)

const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type Row interface {
	Scan(dest ...interface{}) error
}

type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close()
	Err() error
}

// Driver abstracts the SQL engines the warehouse runs against. Statements are
// written with ? placeholders; the postgres implementation rebinds them to $n.
// ExecuteTx runs txFunc inside a transaction; callers propagate the tx handle
// via context (key "tx") so that Exec/Query calls made inside txFunc join it.
type Driver interface {
	Connect(dsn string) error
	Close() error
	Dialect() string
	ExecContext(ctx context.Context, query string, args ...interface{}) error
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) Row
	ExecuteTx(ctx context.Context, txFunc func(tx interface{}) error) error
}

func New(dialect string) (Driver, error) {
	switch dialect {
	case DialectMySQL:
		return &MySQLDriver{}, nil
	case DialectPostgres:
		return &PostgresDriver{}, nil
	case DialectSQLite:
		return &SQLiteDriver{}, nil
	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
}
