package mysql

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/wire"
)

type MysqlDB struct {
	db.Conn
}

func Open(dsn string, opts db.Options) (*MysqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mysql DSN")
	}

	sqldb, err := db.OpenPool("mysql", dsn)
	if err != nil {
		return nil, err
	}

	return &MysqlDB{db.Conn{SQL: sqldb, Dialect: Dialect, Options: opts}}, nil
}

// Dialect maps the type names the MySQL driver reports. Unsigned integer
// columns carry an "UNSIGNED " prefix.
var Dialect = db.Dialect{Name: "mysql", Column: Column}

var types = map[string]wire.Type{
	"TINYINT":    wire.TypeTiny,
	"SMALLINT":   wire.TypeShort,
	"MEDIUMINT":  wire.TypeInt24,
	"INT":        wire.TypeLong,
	"BIGINT":     wire.TypeLongLong,
	"FLOAT":      wire.TypeFloat,
	"DOUBLE":     wire.TypeDouble,
	"DECIMAL":    wire.TypeNewDecimal,
	"DATE":       wire.TypeDate,
	"DATETIME":   wire.TypeDateTime,
	"TIMESTAMP":  wire.TypeTimestamp,
	"TIME":       wire.TypeTime,
	"YEAR":       wire.TypeYear,
	"CHAR":       wire.TypeString,
	"VARCHAR":    wire.TypeVarString,
	"TINYTEXT":   wire.TypeTinyBlob,
	"TEXT":       wire.TypeBlob,
	"MEDIUMTEXT": wire.TypeMediumBlob,
	"LONGTEXT":   wire.TypeLongBlob,
	"BINARY":     wire.TypeString,
	"VARBINARY":  wire.TypeVarString,
	"TINYBLOB":   wire.TypeTinyBlob,
	"BLOB":       wire.TypeBlob,
	"MEDIUMBLOB": wire.TypeMediumBlob,
	"LONGBLOB":   wire.TypeLongBlob,
	"BIT":        wire.TypeBit,
	"JSON":       wire.TypeJSON,
	"ENUM":       wire.TypeEnum,
	"SET":        wire.TypeSet,
	"GEOMETRY":   wire.TypeGeometry,
	"NULL":       wire.TypeNull,
}

// Column maps one MySQL result column.
func Column(info db.ColumnInfo) wire.Column {
	name, unsigned := strings.CutPrefix(info.DatabaseType, "UNSIGNED ")
	t, ok := types[name]
	if !ok {
		return db.Text(wire.TypeVarString, info)
	}
	switch {
	case t.IsNumeric() || t == wire.TypeBit:
		return db.Number(t, info, unsigned)
	case t.IsDate() || t == wire.TypeTime:
		return db.Temporal(t, info)
	case strings.HasSuffix(name, "BINARY") || strings.HasSuffix(name, "BLOB") || t == wire.TypeGeometry:
		return db.Bytes(t, info)
	case t == wire.TypeNull:
		return wire.Column{Type: t}
	}
	return db.Text(t, info)
}

func (m *MysqlDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema = DATABASE()
ORDER BY table_name;
`
	return m.Strings(ctx, q)
}

func (m *MysqlDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	const q = `
SELECT column_name, column_type
FROM information_schema.columns
WHERE table_schema = DATABASE()
  AND table_name = ?
ORDER BY ordinal_position;
`
	return m.Columns(ctx, q, table)
}
