package warehouse

import (
	"context"
	"strings"
	"time"

	"ops-warehouse/internal/database"
)

// DateRow is one calendar day of the dim_date dimension.
//
// week_of_year follows ISO 8601 (week 1 contains the first Thursday, weeks
// run Monday through Sunday); day_of_week is 1=Monday .. 7=Sunday regardless
// of the engine's own convention.
type DateRow struct {
	DateKey      int    `parquet:"date_key"`
	CalendarDate string `parquet:"calendar_date"`
	Year         int    `parquet:"year"`
	Month        int    `parquet:"month"`
	MonthName    string `parquet:"month_name"`
	WeekOfYear   int    `parquet:"week_of_year"`
	DayOfWeek    int    `parquet:"day_of_week"`
	DayName      string `parquet:"day_name"`
}

// BuildDateRow derives every dim_date attribute from a calendar date.
// date_key is year*10000 + month*100 + day.
func BuildDateRow(t time.Time) DateRow {
	year, month, day := t.Date()
	_, week := t.ISOWeek()

	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7
	}

	return DateRow{
		DateKey:      year*10000 + int(month)*100 + day,
		CalendarDate: t.Format("2006-01-02"),
		Year:         year,
		Month:        int(month),
		MonthName:    month.String(),
		WeekOfYear:   week,
		DayOfWeek:    dow,
		DayName:      t.Weekday().String(),
	}
}

// GenerateDateRange produces one row per day from anchor-windowDays to anchor
// inclusive, oldest first.
func GenerateDateRange(anchor time.Time, windowDays int) []DateRow {
	anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	rows := make([]DateRow, 0, windowDays+1)
	for i := windowDays; i >= 0; i-- {
		rows = append(rows, BuildDateRow(anchor.AddDate(0, 0, -i)))
	}
	return rows
}

const dateInsertChunk = 365

// InsertDateRange bulk-inserts the generated rows inside one transaction. A
// key collision (for example regenerating an overlapping window) surfaces as
// the engine's uniqueness violation and rolls back the whole run; nothing is
// overwritten and nothing partial is left behind.
func InsertDateRange(ctx context.Context, db database.Driver, rows []DateRow) (int, error) {
	inserted := 0
	err := db.ExecuteTx(ctx, func(tx interface{}) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		for start := 0; start < len(rows); start += dateInsertChunk {
			end := start + dateInsertChunk
			if end > len(rows) {
				end = len(rows)
			}
			chunk := rows[start:end]

			valueStrings := make([]string, 0, len(chunk))
			valueArgs := make([]interface{}, 0, len(chunk)*8)
			for _, row := range chunk {
				valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?)")
				valueArgs = append(valueArgs,
					row.DateKey, row.CalendarDate, row.Year, row.Month,
					row.MonthName, row.WeekOfYear, row.DayOfWeek, row.DayName)
			}

			stmt := "INSERT INTO dim_date (date_key, calendar_date, year, month, month_name, week_of_year, day_of_week, day_name) VALUES " +
				strings.Join(valueStrings, ",")
			if err := db.ExecContext(txCtx, stmt, valueArgs...); err != nil {
				return err
			}
			inserted += len(chunk)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
