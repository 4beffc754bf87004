package persistence

import (
	"database/sql"
	"time"
)

// SQLiteTimeLayout is a fixed-width UTC layout, so stored timestamps sort
// and compare correctly as TEXT.
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatSQLiteTime renders t in SQLiteTimeLayout.
func FormatSQLiteTime(t time.Time) string {
	return t.UTC().Format(SQLiteTimeLayout)
}

// ParseSQLiteTime parses a value written by FormatSQLiteTime.
// Plain RFC3339 values are accepted for rows written by hand.
func ParseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(SQLiteTimeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// ParseSQLiteNullTime parses a nullable timestamp column.
func ParseSQLiteNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := ParseSQLiteTime(v.String)
	if err != nil {
		return nil
	}
	return &t
}
