package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

type SQLiteDriver struct {
	sqlConn
}

// Connect opens (or creates) a sqlite database file. Foreign key enforcement
// is off by default in sqlite, so the pragma is forced through the DSN, which
// applies it to every pooled connection.
func (sd *SQLiteDriver) Connect(dsn string) error {
	if !strings.Contains(dsn, "_pragma=foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	sd.db = db
	return db.Ping()
}

func (sd *SQLiteDriver) Dialect() string {
	return DialectSQLite
}
