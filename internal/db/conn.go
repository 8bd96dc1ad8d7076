package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/logging"
	"github.com/bgunnarsson/bincast/internal/rowset"
)

// Pool settings shared by every driver.
const (
	MaxOpenConns    = 4
	ConnMaxLifetime = 5 * time.Minute
	PingTimeout     = 5 * time.Second
)

// Conn runs queries for a driver package. Drivers embed it and add their
// catalog queries.
type Conn struct {
	SQL     *sql.DB
	Dialect Dialect
	Options Options
}

// OpenPool opens a database/sql pool, applies the shared pool settings and
// pings it once.
func OpenPool(driverName, dsn string) (*sql.DB, error) {
	sqldb, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return Prepare(sqldb)
}

// Prepare applies the shared pool settings to sqldb and pings it. The pool is
// closed if the ping fails.
func Prepare(sqldb *sql.DB) (*sql.DB, error) {
	sqldb.SetMaxOpenConns(MaxOpenConns)
	sqldb.SetMaxIdleConns(MaxOpenConns)
	sqldb.SetConnMaxLifetime(ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

func (c *Conn) Close() error {
	if c.SQL == nil {
		return nil
	}
	return c.SQL.Close()
}

// Query runs q and reads its whole result set. The query-scope cast outranks
// the connection one. When reading fails part way the rows decoded so far are
// returned alongside the error.
func (c *Conn) Query(ctx context.Context, q Query) (*Rows, error) {
	chain := cast.Resolve(q.TypeCast, c.Options.TypeCast)
	start := time.Now()

	rows, err := c.SQL.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := Read(ctx, rows, c.Dialect, chain, rowset.Options{Location: c.Options.Location})
	logging.Debugf("%s: %d rows in %s (cast: %s, override: %t)", c.Dialect.Name, len(out.Data), time.Since(start).Round(time.Microsecond), out.Cast, chain.Overridden())
	return out, err
}

// Read decodes every row of rows through chain.
func Read(ctx context.Context, rows *sql.Rows, d Dialect, chain cast.Chain, opts rowset.Options) (*Rows, error) {
	out := &Rows{Cast: chain.Source()}
	src, err := newSQLSource(rows, d, opts.Location)
	if err != nil {
		return out, err
	}
	out.Columns = src.Columns()
	out.Data, err = rowset.Collect(ctx, src, chain, opts)
	return out, err
}

// Strings runs a query returning one string column.
func (c *Conn) Strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Columns runs a catalog query returning (name, type) pairs.
func (c *Conn) Columns(ctx context.Context, query string, args ...any) ([]Column, error) {
	rows, err := c.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}
