package rowset

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/decode"
	"github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// Source is the protocol layer feeding a result set. Next returns io.EOF
// after the last row. The buffer returned by Next may be reused by the
// following call.
type Source interface {
	Columns() []wire.Column
	Next(ctx context.Context) (*wire.RowBuffer, error)
}

// Options tune decoding for one result set.
type Options struct {
	// Location is the zone DATE, DATETIME and TIMESTAMP cells are read in.
	// Nil means UTC.
	Location *time.Location
}

// Materialize decodes one row. Columns are cast in declared order; the first
// failing column aborts the row and its error names the column.
func Materialize(cols []wire.Column, buf *wire.RowBuffer, chain cast.Chain, opts Options) (Row, error) {
	if len(buf.Cells) != len(cols) {
		return Row{}, errors.Newf(errors.Decode, "row has %d cells for %d columns", len(buf.Cells), len(cols))
	}
	row := newRow(len(cols))
	for i := range cols {
		f := decode.Bind(&cols[i], buf, i, opts.Location)
		v, err := chain.Cast(f)
		if err != nil {
			return Row{}, errors.WithColumn(err, cols[i].Name)
		}
		row.set(cols[i].Name, v)
	}
	return row, nil
}

// Cursor reads a result set one row at a time. Rows are decoded strictly in
// order; a row is fully materialized before the next one is requested from
// the source. A Cursor is not safe for concurrent use.
type Cursor struct {
	src   Source
	cols  []wire.Column
	chain cast.Chain
	opts  Options

	row  Row
	n    int
	err  error
	done bool
}

// New returns a cursor over src. The chain is fixed for the whole result set.
func New(src Source, chain cast.Chain, opts Options) *Cursor {
	return &Cursor{src: src, cols: src.Columns(), chain: chain, opts: opts}
}

// Columns returns the column metadata of the result set.
func (c *Cursor) Columns() []wire.Column { return c.cols }

// Next decodes the next row. It returns false at the end of the result set or
// on error; Err tells the two apart. Cancellation of ctx is reported as a
// canceled error, never as a short result.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		return c.fail(&errors.E{Kind: errors.Canceled, Message: fmt.Sprintf("after %d rows", c.n), Err: err})
	}
	buf, err := c.src.Next(ctx)
	if err == io.EOF {
		c.done = true
		return false
	}
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			err = &errors.E{Kind: errors.Canceled, Message: fmt.Sprintf("after %d rows", c.n), Err: err}
		}
		return c.fail(err)
	}
	row, err := Materialize(c.cols, buf, c.chain, c.opts)
	if err != nil {
		return c.fail(fmt.Errorf("row %d: %w", c.n+1, err))
	}
	c.row = row
	c.n++
	return true
}

func (c *Cursor) fail(err error) bool {
	c.err = err
	c.done = true
	c.row = Row{}
	return false
}

// Row returns the row decoded by the last successful Next.
func (c *Cursor) Row() Row { return c.row }

// Err returns the error that stopped the cursor, if any.
func (c *Cursor) Err() error { return c.err }

// Collect reads the whole result set. On error it returns the rows delivered
// before the failure together with the error.
func Collect(ctx context.Context, src Source, chain cast.Chain, opts Options) ([]Row, error) {
	cur := New(src, chain, opts)
	var out []Row
	for cur.Next(ctx) {
		out = append(out, cur.Row())
	}
	return out, cur.Err()
}
