package postgres

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/wire"
)

type PostgresDB struct {
	db.Conn
}

func Open(dsn string, opts db.Options) (*PostgresDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	sqldb, err := db.OpenPool("pgx", dsn)
	if err != nil {
		return nil, err
	}

	return &PostgresDB{db.Conn{SQL: sqldb, Dialect: Dialect, Options: opts}}, nil
}

// Dialect maps pgx type names. Booleans travel as TINY(1) holding 1 or 0.
var Dialect = db.Dialect{Name: "postgres", Column: Column}

// Column maps one PostgreSQL result column.
func Column(info db.ColumnInfo) wire.Column {
	switch info.DatabaseType {
	case "INT2":
		return db.Number(wire.TypeShort, info, false)
	case "INT4":
		return db.Number(wire.TypeLong, info, false)
	case "INT8":
		return db.Number(wire.TypeLongLong, info, false)
	case "FLOAT4":
		return db.Number(wire.TypeFloat, info, false)
	case "FLOAT8":
		return db.Number(wire.TypeDouble, info, false)
	case "NUMERIC":
		return db.Number(wire.TypeNewDecimal, info, false)
	case "BOOL":
		return db.Bool()
	case "DATE":
		return db.Temporal(wire.TypeDate, info)
	case "TIMESTAMP":
		return db.Temporal(wire.TypeDateTime, info)
	case "TIMESTAMPTZ":
		return db.Temporal(wire.TypeTimestamp, info)
	case "TIME":
		return db.Temporal(wire.TypeTime, info)
	case "BYTEA":
		return db.Bytes(wire.TypeBlob, info)
	case "JSON", "JSONB":
		return db.Text(wire.TypeJSON, info)
	case "BPCHAR", "CHAR":
		return db.Text(wire.TypeString, info)
	case "TEXT":
		return db.Text(wire.TypeBlob, info)
	}
	return db.Text(wire.TypeVarString, info)
}

func (p *PostgresDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_schema || '.' || table_name AS name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name;
`
	return p.Strings(ctx, q)
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (p *PostgresDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema, name := "public", table
	if s, n, ok := strings.Cut(table, "."); ok {
		schema, name = s, n
	}

	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
  AND table_name = $2
ORDER BY ordinal_position;
`
	return p.Columns(ctx, q, schema, name)
}
