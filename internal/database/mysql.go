package database

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLDriver struct {
	sqlConn
}

func (md *MySQLDriver) Connect(dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	md.db = db
	return db.Ping()
}

func (md *MySQLDriver) Dialect() string {
	return DialectMySQL
}
