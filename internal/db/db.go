package db

import (
	"context"
	"time"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/rowset"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// Column is a table column as reported by the catalog.
type Column struct {
	Name string
	Type string
}

// Rows is a fully read result set.
type Rows struct {
	Columns []wire.Column
	Data    []rowset.Row
	// Cast names where the effective type cast came from: "default",
	// "query" or "connection".
	Cast string
}

// Query is one statement plus its per-call options.
type Query struct {
	SQL  string
	Args []any
	// TypeCast is the query-scope cast. It outranks the connection setting
	// when set.
	TypeCast cast.Setting
}

// Options are connection-scope settings fixed at Open.
type Options struct {
	TypeCast cast.Setting
	// Location is the zone temporal columns are read in. Nil means UTC.
	Location *time.Location
}

type DB interface {
	Close() error
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]Column, error)
	Query(ctx context.Context, q Query) (*Rows, error)
}
