package mssql

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/wire"
)

type MssqlDB struct {
	db.Conn
}

// Open opens a MSSQL connection.
// If the DSN contains "fedauth=", we use the Azure AD driver (azuresql)
// so things like ActiveDirectoryInteractive / AzCli work.
func Open(dsn string, opts db.Options) (*MssqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mssql DSN")
	}

	sqldb, err := db.OpenPool(DriverName(dsn), dsn)
	if err != nil {
		return nil, err
	}

	return &MssqlDB{db.Conn{SQL: sqldb, Dialect: Dialect, Options: opts}}, nil
}

// DriverName picks the database/sql driver for dsn.
func DriverName(dsn string) string {
	if strings.Contains(strings.ToLower(dsn), "fedauth=") {
		return azuread.DriverName
	}
	return "sqlserver"
}

// Dialect maps SQL Server type names. BIT travels as TINY(1) and
// UNIQUEIDENTIFIER as its canonical text form.
var Dialect = db.Dialect{Name: "mssql", Column: Column, Value: Value}

// Column maps one SQL Server result column.
func Column(info db.ColumnInfo) wire.Column {
	switch info.DatabaseType {
	case "TINYINT":
		return db.Number(wire.TypeTiny, info, true)
	case "SMALLINT":
		return db.Number(wire.TypeShort, info, false)
	case "INT":
		return db.Number(wire.TypeLong, info, false)
	case "BIGINT":
		return db.Number(wire.TypeLongLong, info, false)
	case "BIT":
		return db.Bool()
	case "REAL":
		return db.Number(wire.TypeFloat, info, false)
	case "FLOAT":
		return db.Number(wire.TypeDouble, info, false)
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return db.Number(wire.TypeNewDecimal, info, false)
	case "DATE":
		return db.Temporal(wire.TypeDate, info)
	case "TIME":
		return db.Temporal(wire.TypeTime, info)
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		return db.Temporal(wire.TypeDateTime, info)
	case "DATETIMEOFFSET":
		return db.Temporal(wire.TypeTimestamp, info)
	case "CHAR", "NCHAR":
		return db.Text(wire.TypeString, info)
	case "TEXT", "NTEXT":
		return db.Text(wire.TypeBlob, info)
	case "BINARY":
		return db.Bytes(wire.TypeString, info)
	case "VARBINARY":
		return db.Bytes(wire.TypeVarString, info)
	case "IMAGE":
		return db.Bytes(wire.TypeBlob, info)
	case "UNIQUEIDENTIFIER":
		c := db.Text(wire.TypeString, info)
		c.Length = 36
		return c
	}
	return db.Text(wire.TypeVarString, info)
}

// Value renders UNIQUEIDENTIFIER bytes as a GUID string.
func Value(_ *wire.Column, info db.ColumnInfo, v any) any {
	if b, ok := v.([]byte); ok && info.DatabaseType == "UNIQUEIDENTIFIER" {
		return FormatUniqueIdentifier(b)
	}
	return v
}

// FormatUniqueIdentifier renders the mixed-endian wire form of a GUID.
func FormatUniqueIdentifier(b []byte) string {
	if len(b) != 16 {
		return fmt.Sprintf("%x", b)
	}

	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15],
	)
}

func (m *MssqlDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT TABLE_SCHEMA + '.' + TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME;
`
	return m.Strings(ctx, q)
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (m *MssqlDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema, name := "dbo", table
	if s, n, ok := strings.Cut(table, "."); ok {
		schema, name = s, n
	}

	const q = `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION;
`
	return m.Columns(ctx, q, schema, name)
}
