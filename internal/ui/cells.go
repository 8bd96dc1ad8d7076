package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/print"
	"github.com/bgunnarsson/bincast/internal/wire"
)

const (
	maxColWidth  = 40
	maxBlobInUI  = 256
	widthSamples = 200
)

// castCycle is what Ctrl+T steps through. The empty entry leaves the
// query-scope cast unset so the connection setting applies.
var castCycle = []string{"", "tinybool", "changecase"}

// nextCast returns the position after i in castCycle and its setting.
func nextCast(i int) (int, cast.Setting) {
	i = (i + 1) % len(castCycle)
	s, err := cast.ParseSetting(castCycle[i])
	if err != nil {
		return 0, cast.Unset
	}
	return i, s
}

func castLabel(i int) string {
	if castCycle[i] == "" {
		return "connection"
	}
	return castCycle[i]
}

// cellText renders a value for the results grid. Large blobs are summarized.
func cellText(col *wire.Column, v any) string {
	if b, ok := v.([]byte); ok && len(b) > maxBlobInUI {
		return fmt.Sprintf("[blob %d bytes]", len(b))
	}
	return print.FormatCell(col, v)
}

// rightAligned reports columns shown flush right: the numeric ones.
func rightAligned(col *wire.Column) bool {
	return col.Type.IsNumeric()
}

// fitWidths sizes each column from its header and the first rows.
func fitWidths(names []string, cells [][]string) []int {
	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = min(runewidth.StringWidth(n), maxColWidth)
	}
	for r := 0; r < len(cells) && r < widthSamples; r++ {
		for c, text := range cells[r] {
			if c < len(widths) {
				widths[c] = max(widths[c], min(runewidth.StringWidth(text), maxColWidth))
			}
		}
	}
	return widths
}

// clip cuts s to width terminal cells, marking the cut with an ellipsis.
func clip(s string, width int) string {
	if width <= 1 {
		return runewidth.Truncate(s, max(width, 0), "")
	}
	return runewidth.Truncate(s, width, "…")
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func truncateInline(s string, n int) string {
	switch {
	case n <= 0:
		return s
	case n <= 3:
		return runewidth.Truncate(s, n, "")
	}
	return runewidth.Truncate(s, n, "...")
}
