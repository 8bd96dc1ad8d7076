package print

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/wire"
)

type Options struct {
	MaxWidth int  // max width for each column, 0 = 40
	Color    bool // style the header and NULL cells
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	nullStyle   = lipgloss.NewStyle().Faint(true)
)

func RenderTable(w io.Writer, rows *db.Rows, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	cols := len(rows.Columns)
	if cols == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}

	cells := make([][]string, len(rows.Data))
	for r, row := range rows.Data {
		cells[r] = make([]string, cols)
		for i, v := range row.Values() {
			if i < cols {
				cells[r][i] = FormatCell(&rows.Columns[i], v)
			}
		}
	}

	widths := make([]int, cols)
	for i, col := range rows.Columns {
		widths[i] = min(runewidth.StringWidth(col.Name), opts.MaxWidth)
	}
	for _, r := range cells {
		for i, c := range r {
			widths[i] = max(widths[i], min(runewidth.StringWidth(c), opts.MaxWidth))
		}
	}

	sep := func(ch string) string {
		var b strings.Builder
		b.WriteString("+")
		for i := range widths {
			b.WriteString(strings.Repeat(ch, widths[i]+2))
			b.WriteString("+")
		}
		return b.String()
	}

	writeRow := func(cells []string, style func(int, string) string) {
		var b strings.Builder
		b.WriteString("|")
		for i, c := range cells {
			cut := padRight(truncate(c, widths[i]), widths[i])
			if style != nil {
				cut = style(i, cut)
			}
			b.WriteString(" ")
			b.WriteString(cut)
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	var headerFn, cellFn func(int, string) string
	if opts.Color {
		headerFn = func(_ int, s string) string { return headerStyle.Render(s) }
	}

	fmt.Fprintln(w, sep("-"))
	header := make([]string, cols)
	for i, col := range rows.Columns {
		header[i] = col.Name
	}
	writeRow(header, headerFn)
	fmt.Fprintln(w, sep("="))

	for r, row := range cells {
		if opts.Color {
			values := rows.Data[r].Values()
			cellFn = func(i int, s string) string {
				if i < len(values) && values[i] == nil {
					return nullStyle.Render(s)
				}
				return s
			}
		}
		writeRow(row, cellFn)
	}
	fmt.Fprintln(w, sep("-"))
	fmt.Fprintf(w, "(%d %s)\n", len(rows.Data), plural(len(rows.Data), "row", "rows"))
}

// FormatCell renders one materialized value for display.
func FormatCell(col *wire.Column, v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if isPrintable(t) {
			return string(t)
		}
		return fmt.Sprintf("<blob %d bytes>", len(t))
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		if col != nil && col.Type == wire.TypeDate {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05.999999")
	case time.Duration:
		return formatDuration(t)
	default:
		return fmt.Sprint(t)
	}
}

// formatDuration renders a TIME value as [-]HH:MM:SS[.ffffff].
func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	us := (d % time.Second) / time.Microsecond
	if us == 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return strings.TrimRight(fmt.Sprintf("%s%02d:%02d:%02d.%06d", sign, h, m, s, us), "0")
}

func isPrintable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r < 32 && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func padRight(s string, w int) string {
	return runewidth.FillRight(s, w)
}

// truncate cuts s to w terminal cells. Wide runes count twice.
func truncate(s string, w int) string {
	if w <= 2 {
		return runewidth.Truncate(s, w, "")
	}
	return runewidth.Truncate(s, w, "...")
}
