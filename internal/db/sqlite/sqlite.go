package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/wire"
)

type SqliteDB struct {
	db.Conn
}

func Open(path string, opts db.Options) (*SqliteDB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One writer at a time.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(db.ConnMaxLifetime)

	if _, err := sqldb.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return &SqliteDB{db.Conn{SQL: sqldb, Dialect: Dialect, Options: opts}}, nil
}

// Dialect maps declared column types by SQLite's affinity rules. Columns
// without a declared type (expressions) are typed from the storage class of
// their first value.
var Dialect = db.Dialect{Name: "sqlite", Column: Column}

// Column maps one SQLite result column.
func Column(info db.ColumnInfo) wire.Column {
	decl := info.DatabaseType
	switch {
	case decl == "":
		return expression(info)
	case strings.Contains(decl, "INT"):
		return db.Number(wire.TypeLongLong, info, false)
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "CLOB"), strings.Contains(decl, "TEXT"):
		return db.Text(wire.TypeVarString, info)
	case strings.Contains(decl, "BLOB"):
		return db.Bytes(wire.TypeBlob, info)
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"), strings.Contains(decl, "DOUB"):
		return db.Number(wire.TypeDouble, info, false)
	case strings.Contains(decl, "BOOL"):
		return db.Bool()
	case strings.Contains(decl, "DATETIME"), strings.Contains(decl, "TIMESTAMP"):
		return db.Temporal(wire.TypeDateTime, info)
	case strings.Contains(decl, "DATE"):
		return db.Temporal(wire.TypeDate, info)
	case strings.Contains(decl, "TIME"):
		return db.Temporal(wire.TypeTime, info)
	}
	return db.Number(wire.TypeNewDecimal, info, false)
}

// expression types a column that has no declared type. The driver reports
// the storage class of the current row, which is the first one when the
// column types are read.
func expression(info db.ColumnInfo) wire.Column {
	if info.ScanType == nil {
		return db.Text(wire.TypeVarString, info)
	}
	switch info.ScanType.Kind() {
	case reflect.Int64:
		return db.Number(wire.TypeLongLong, info, false)
	case reflect.Float64:
		return db.Number(wire.TypeDouble, info, false)
	case reflect.Slice:
		return db.Bytes(wire.TypeBlob, info)
	}
	return db.Text(wire.TypeVarString, info)
}

func (s *SqliteDB) ListTables(ctx context.Context) ([]string, error) {
	// Tables and views, without the internal sqlite_% objects.
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY lower(name);
	`
	return s.Strings(ctx, q)
}

func (s *SqliteDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	q := fmt.Sprintf("SELECT name, type FROM pragma_table_info(%s);", quoteLiteral(table))
	return s.Columns(ctx, q)
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
