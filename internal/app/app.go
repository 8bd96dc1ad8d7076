package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/db/mssql"
	"github.com/bgunnarsson/bincast/internal/db/mysql"
	"github.com/bgunnarsson/bincast/internal/db/postgres"
	"github.com/bgunnarsson/bincast/internal/db/sqlite"
	"github.com/bgunnarsson/bincast/internal/logging"
	"github.com/bgunnarsson/bincast/internal/ui"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMssql    Driver = "mssql"
	DriverMysql    Driver = "mysql"
)

// Drivers lists the supported driver names.
func Drivers() []Driver {
	return []Driver{DriverSqlite, DriverPostgres, DriverMssql, DriverMysql}
}

// DriverList joins Drivers for help and error text.
func DriverList() string {
	names := make([]string, 0, 4)
	for _, d := range Drivers() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

// Session describes one connection and how its results are read and shown.
type Session struct {
	Driver Driver
	DSN    string
	// Conn is the connection-scope setting; Query the query-scope one.
	Conn  db.Options
	Query cast.Setting
	JSON  bool
	Color bool
}

// Open connects with the driver named by s.
func Open(s Session) (db.DB, error) {
	logging.Debugf("opening %s connection to %s (cast: %s)", s.label(), s.DSN, s.Conn.TypeCast)
	switch s.Driver {
	case "", DriverSqlite:
		return sqlite.Open(s.DSN, s.Conn)
	case DriverPostgres:
		return postgres.Open(s.DSN, s.Conn)
	case DriverMssql:
		return mssql.Open(s.DSN, s.Conn)
	case DriverMysql:
		return mysql.Open(s.DSN, s.Conn)
	default:
		return nil, fmt.Errorf("unsupported driver %q (supported: %s)", s.Driver, DriverList())
	}
}

func (s Session) label() string {
	if s.Driver == "" {
		return string(DriverSqlite)
	}
	return string(s.Driver)
}

func RunInteractive(ctx context.Context, s Session) error {
	sdb, err := Open(s)
	if err != nil {
		return err
	}
	defer sdb.Close()

	return ui.Run(ctx, sdb, s.label())
}
