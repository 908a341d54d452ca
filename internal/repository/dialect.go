package repository

import (
	"fmt"
	"strings"
	"time"
)

// Dialect captures the SQL differences between the supported run stores.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Schema returns the idempotent DDL for table.
	Schema func(table string) []string
	// DeletePrefix starts a delete statement for table.
	DeletePrefix func(table string) string
	// TimeArg converts a timestamp into the driver's bind value.
	TimeArg func(t time.Time) interface{}
}

// Postgres stores payloads as JSONB (lib/pq).
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id            TEXT PRIMARY KEY,
	company       TEXT NOT NULL,
	ticker        TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT 'yahoo',
	artifact_path TEXT NOT NULL DEFAULT '',
	news          JSONB NOT NULL,
	candles       JSONB NOT NULL,
	analysis      JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_company_created_idx ON %s (company, created_at DESC)`, table, table),
		}
	},
	DeletePrefix: func(table string) string { return "DELETE FROM " + table },
	TimeArg:      func(t time.Time) interface{} { return t.UTC() },
}

// ClickHouse keeps runs in a MergeTree table; deletes are mutations.
var ClickHouse = Dialect{
	Name:        "clickhouse",
	Placeholder: func(int) string { return "?" },
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id            String,
	company       String,
	ticker        String,
	provider      LowCardinality(String),
	artifact_path String,
	news          String,
	candles       String,
	analysis      String,
	created_at    DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (company, created_at)
TTL toDateTime(created_at) + INTERVAL 30 DAY`, table),
		}
	},
	DeletePrefix: func(table string) string { return "ALTER TABLE " + table + " DELETE" },
	TimeArg:      func(t time.Time) interface{} { return t.UTC() },
}

// SQLite is the embedded store (modernc.org/sqlite). Timestamps are unix
// milliseconds.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id            TEXT PRIMARY KEY,
	company       TEXT NOT NULL,
	ticker        TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT 'yahoo',
	artifact_path TEXT NOT NULL DEFAULT '',
	news          TEXT NOT NULL,
	candles       TEXT NOT NULL,
	analysis      TEXT NOT NULL,
	created_at    INTEGER NOT NULL
)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_company_created_idx ON %s (company, created_at)`, table, table),
		}
	},
	DeletePrefix: func(table string) string { return "DELETE FROM " + table },
	TimeArg:      func(t time.Time) interface{} { return t.UnixMilli() },
}

// DialectFor resolves a store driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "clickhouse":
		return ClickHouse, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func (d Dialect) placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.Placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}

// scanTime accepts the representations drivers hand back for created_at.
func scanTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case []byte:
		return parseTimeText(string(t))
	case string:
		return parseTimeText(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported created_at type %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05.999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable created_at %q", s)
}
