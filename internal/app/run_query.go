package app

import (
	"context"
	"fmt"
	"io"

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/logging"
	"github.com/bgunnarsson/bincast/internal/print"
)

// RunNonInteractive runs query and writes the result to w. Without a query it
// lists the tables. Rows read before a failure are still written.
func RunNonInteractive(ctx context.Context, w io.Writer, s Session, query string) error {
	sdb, err := Open(s)
	if err != nil {
		return err
	}
	defer sdb.Close()

	if query == "" {
		tables, err := sdb.ListTables(ctx)
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Fprintln(w, t)
		}
		return nil
	}

	rows, qerr := sdb.Query(ctx, db.Query{SQL: query, TypeCast: s.Query})
	if rows == nil {
		return qerr
	}
	if qerr != nil {
		logging.Warnf("query failed after %d rows; showing what was read", len(rows.Data))
	}

	if s.JSON {
		if err := print.RenderJSON(w, rows); err != nil {
			return err
		}
	} else {
		print.RenderTable(w, rows, print.Options{MaxWidth: 60, Color: s.Color})
	}
	return qerr
}
