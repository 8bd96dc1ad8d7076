// Package decode exposes one cell of the current row through lazy, typed
// accessors. A Field does no work until an accessor is called, every accessor
// is idempotent, and none of them writes to the row buffer.
//
// Accessors used against a wire type outside their class fail with a
// type_mismatch error; they never reinterpret the bytes. The classes are:
//
//   - Int, Uint: TINY, SHORT, LONG, INT24, LONGLONG, YEAR
//   - Float, Double, Decimal: the integer class plus FLOAT, DOUBLE, DECIMAL, NEWDECIMAL
//   - Date, DateTime: DATE, NEWDATE, DATETIME, TIMESTAMP
//   - Time: TIME
//   - Text, Buffer: every type
//
// The class check happens before the NULL check, so misuse is reported
// whatever the data.
package decode

import (
	"time"

	"github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// Field is a column descriptor bound to its cell in the current row. The
// embedded Column gives direct access to Name, Type, Length and Flags.
// A Field is only valid until the protocol layer loads the next row.
type Field struct {
	*wire.Column

	raw    []byte
	null   bool
	format wire.Format
	loc    *time.Location
}

// Bind returns the field for cell i of buf. A nil loc means UTC.
func Bind(col *wire.Column, buf *wire.RowBuffer, i int, loc *time.Location) *Field {
	raw, null := buf.Raw(i)
	return New(col, raw, null, buf.Format, loc)
}

// New returns a field over raw. raw must not be modified while the field is in use.
func New(col *wire.Column, raw []byte, null bool, format wire.Format, loc *time.Location) *Field {
	if loc == nil {
		loc = time.UTC
	}
	return &Field{Column: col, raw: raw, null: null, format: format, loc: loc}
}

// IsNull reports whether the cell is SQL NULL.
func (f *Field) IsNull() bool { return f.null }

// Buffer returns a copy of the cell bytes exactly as received, nil for NULL.
// Valid for every wire type.
func (f *Field) Buffer() []byte {
	if f.null {
		return nil
	}
	out := make([]byte, len(f.raw))
	copy(out, f.raw)
	return out
}

func (f *Field) mismatch(accessor string) error {
	return &errors.E{
		Kind:    errors.TypeMismatch,
		Column:  f.Name,
		Message: accessor + " is not defined for " + f.Type.String(),
	}
}

func (f *Field) malformed(what string, err error) error {
	return &errors.E{Kind: errors.Decode, Column: f.Name, Message: "malformed " + what, Err: err}
}
