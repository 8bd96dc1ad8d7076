package print

import (
	"encoding/json"
	"io"

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/rowset"
)

// RenderJSON writes the rows as a JSON array of objects, keys in column order.
func RenderJSON(w io.Writer, rows *db.Rows) error {
	data := rows.Data
	if data == nil {
		data = []rowset.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
