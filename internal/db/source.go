package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// ColumnInfo is what database/sql reports about a result column.
type ColumnInfo struct {
	Name         string
	DatabaseType string // upper case, e.g. "VARCHAR", "UNSIGNED INT"
	Length       int64
	HasLength    bool
	Precision    int64
	Scale        int64
	HasDecimal   bool
	Nullable     bool
	// ScanType is the Go type the driver scans the column into, nil when
	// the driver cannot tell.
	ScanType reflect.Type
}

// Dialect maps a driver's column types onto wire columns.
type Dialect struct {
	Name   string
	Column func(ColumnInfo) wire.Column
	// Value optionally rewrites a scanned driver value before it is encoded,
	// for types whose driver representation is not their text form.
	Value func(col *wire.Column, info ColumnInfo, v any) any
}

func columnInfo(ct *sql.ColumnType) ColumnInfo {
	info := ColumnInfo{
		Name:         ct.Name(),
		DatabaseType: strings.ToUpper(strings.TrimSpace(ct.DatabaseTypeName())),
	}
	info.Length, info.HasLength = ct.Length()
	info.Precision, info.Scale, info.HasDecimal = ct.DecimalSize()
	info.Nullable, _ = ct.Nullable()
	info.ScanType = ct.ScanType()
	return info
}

// sqlSource adapts *sql.Rows to rowset.Source. Each row is scanned into
// driver values and re-encoded as text protocol cells in a buffer that is
// reused from row to row.
type sqlSource struct {
	rows    *sql.Rows
	dialect Dialect
	infos   []ColumnInfo
	cols    []wire.Column
	loc     *time.Location

	vals    []any
	ptrs    []any
	buf     wire.RowBuffer
	scratch []byte
}

// newSQLSource reads rows through d. Zoned driver times are moved into loc,
// the zone the decoder reads temporal cells in; nil means UTC.
func newSQLSource(rows *sql.Rows, d Dialect, loc *time.Location) (*sqlSource, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	s := &sqlSource{
		rows:    rows,
		dialect: d,
		loc:     loc,
		infos:   make([]ColumnInfo, len(types)),
		cols:    make([]wire.Column, len(types)),
		vals:    make([]any, len(types)),
		ptrs:    make([]any, len(types)),
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	for i, ct := range types {
		s.infos[i] = columnInfo(ct)
		s.cols[i] = d.Column(s.infos[i])
		s.cols[i].Name = s.infos[i].Name
		s.ptrs[i] = &s.vals[i]
	}
	return s, nil
}

func (s *sqlSource) Columns() []wire.Column { return s.cols }

func (s *sqlSource) Next(ctx context.Context) (*wire.RowBuffer, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	for i := range s.vals {
		s.vals[i] = nil
	}
	if err := s.rows.Scan(s.ptrs...); err != nil {
		return nil, err
	}
	s.buf.Reset(wire.FormatText)
	for i, v := range s.vals {
		if s.dialect.Value != nil {
			v = s.dialect.Value(&s.cols[i], s.infos[i], v)
		}
		if err := s.appendValue(&s.cols[i], v); err != nil {
			return nil, errors.WithColumn(errors.Wrap(errors.Decode, "driver value", err), s.cols[i].Name)
		}
	}
	return &s.buf, nil
}

const (
	textTimeLayout = "2006-01-02 15:04:05.999999"
	textTimeOfDay  = "15:04:05.999999"
)

// appendValue writes v the way a server renders it in a text protocol row.
func (s *sqlSource) appendValue(col *wire.Column, v any) error {
	b := s.scratch[:0]
	switch x := v.(type) {
	case nil:
		s.buf.AppendNull()
		return nil
	case []byte:
		s.buf.AppendCell(x)
		return nil
	case string:
		s.buf.AppendString(x)
		return nil
	case int64:
		b = strconv.AppendInt(b, x, 10)
	case int32:
		b = strconv.AppendInt(b, int64(x), 10)
	case int:
		b = strconv.AppendInt(b, int64(x), 10)
	case uint64:
		b = strconv.AppendUint(b, x, 10)
	case float64:
		b = strconv.AppendFloat(b, x, 'g', -1, 64)
	case float32:
		b = strconv.AppendFloat(b, float64(x), 'g', -1, 32)
	case bool:
		if x {
			b = append(b, '1')
		} else {
			b = append(b, '0')
		}
	case time.Time:
		switch {
		case col.Type == wire.TypeTime:
			b = x.AppendFormat(b, textTimeOfDay)
		case col.Type == wire.TypeDate:
			b = x.AppendFormat(b, textTimeLayout)
		default:
			b = s.inZone(col, x).AppendFormat(b, textTimeLayout)
		}
	case *big.Int:
		b = x.Append(b, 10)
	case fmt.Stringer:
		b = append(b, x.String()...)
	default:
		return fmt.Errorf("unsupported driver value %T", v)
	}
	s.buf.AppendCell(b)
	s.scratch = b
	return nil
}

// inZone moves t into the source's zone when t is an instant: always for
// TIMESTAMP columns, and for other columns when the driver attached a zone.
// Drivers hand back zoneless DATETIME values in UTC; those keep their wall
// clock and are read in the source's zone.
func (s *sqlSource) inZone(col *wire.Column, t time.Time) time.Time {
	if col.Type == wire.TypeTimestamp || t.Location() != time.UTC {
		return t.In(s.loc)
	}
	return t
}
