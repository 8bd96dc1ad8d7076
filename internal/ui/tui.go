package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/db"
	"github.com/bgunnarsson/bincast/internal/logging"
)

type uiState struct {
	ctx   context.Context
	db    db.DB
	label string

	app    *tview.Application
	pages  *tview.Pages
	tables *tview.List
	result *tview.Table
	query  *tview.InputField
	status *tview.TextView
	header *tview.TextView

	lastRows *db.Rows
	castIdx  int
	castSet  cast.Setting
}

// Run starts the interactive TUI. label names the driver in the header.
func Run(ctx context.Context, sdb db.DB, label string) error {
	s := &uiState{
		ctx:   ctx,
		db:    sdb,
		label: label,
		app:   tview.NewApplication(),
	}

	applyTheme()
	s.app.SetRoot(s.buildLayout(), true).EnableMouse(true)
	s.app.SetFocus(s.tables)
	s.app.SetInputCapture(s.handleKey)

	_ = s.loadTables()
	return s.app.Run()
}

// handleKey runs on the UI goroutine for every key press.
func (s *uiState) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	front, _ := s.pages.GetFrontPage()
	focus := s.app.GetFocus()

	if front == pageDetail || front == pageHelp {
		switch {
		case ev.Key() == tcell.KeyEsc, ev.Key() == tcell.KeyEnter,
			isCtrlKey(ev, tcell.KeyCtrlQ, 'q'), isCtrlKey(ev, 0, '/'):
			s.closeOverlay(front)
			return nil
		}
		return ev
	}

	switch {
	case isCtrlKey(ev, tcell.KeyCtrlH, 'h'):
		s.app.SetFocus(s.tables)
	case isCtrlKey(ev, tcell.KeyCtrlL, 'l'):
		s.app.SetFocus(s.result)
	case isCtrlKey(ev, tcell.KeyCtrlJ, 'j'):
		s.app.SetFocus(s.query)
	case isCtrlKey(ev, tcell.KeyCtrlK, 'k'):
		s.app.SetFocus(s.status)
	case isCtrlKey(ev, tcell.KeyCtrlQ, 'q'), ev.Key() == tcell.KeyCtrlC:
		s.app.Stop()
	case isCtrlKey(ev, 0, ':') && focus != s.query:
		s.app.SetFocus(s.query)
	case isCtrlKey(ev, tcell.KeyCtrlR, 'r'):
		_ = s.loadTables()
	case isCtrlKey(ev, tcell.KeyCtrlT, 't'):
		s.cycleCast()
	case isCtrlKey(ev, tcell.KeyCtrlD, 'd') && focus == s.tables:
		s.describeSelected()
	case isCtrlKey(ev, 0, '/'):
		s.showHelp()
	case ev.Key() == tcell.KeyEnter && focus == s.result:
		s.expandCurrentRow()
	default:
		return ev
	}
	return nil
}

// Catppuccin Mocha.
func applyTheme() {
	var (
		base     = tcell.NewRGBColor(30, 30, 46)
		surface0 = tcell.NewRGBColor(49, 50, 68)
		surface1 = tcell.NewRGBColor(69, 71, 90)
		text     = tcell.NewRGBColor(205, 214, 244)
		subtext  = tcell.NewRGBColor(166, 173, 200)
		overlay  = tcell.NewRGBColor(147, 153, 178)
		border   = tcell.NewRGBColor(89, 91, 114)
		sky      = tcell.NewRGBColor(137, 220, 235)
	)
	tview.Styles.PrimitiveBackgroundColor = base
	tview.Styles.ContrastBackgroundColor = surface0
	tview.Styles.MoreContrastBackgroundColor = surface1
	tview.Styles.BorderColor = border
	tview.Styles.GraphicsColor = border
	tview.Styles.PrimaryTextColor = text
	tview.Styles.SecondaryTextColor = subtext
	tview.Styles.TertiaryTextColor = overlay
	tview.Styles.TitleColor = sky
}

var zebra = tcell.NewRGBColor(24, 24, 37)

const (
	pageMain   = "main"
	pageDetail = "rowDetail"
	pageHelp   = "help"
)

func boxed(b *tview.Box, title string) {
	b.SetBorder(true)
	if title != "" {
		b.SetTitle(title)
	}
}

func (s *uiState) buildLayout() tview.Primitive {
	s.header = tview.NewTextView().SetDynamicColors(true)
	boxed(s.header.Box, " Connection ")
	s.header.SetBorderPadding(0, 0, 1, 1)
	s.refreshHeader()

	s.tables = tview.NewList().ShowSecondaryText(false)
	boxed(s.tables.Box, " Tables ")
	s.tables.SetDoneFunc(func() { s.app.SetFocus(s.query) })
	s.tables.SetSelectedFunc(func(_ int, table, _ string, _ rune) {
		if table == "" {
			return
		}
		q := fmt.Sprintf("SELECT * FROM %s LIMIT 100", table)
		s.query.SetText(q)
		s.runQuery(q)
	})

	help := tview.NewTextView().SetText(" Help: Ctrl+/")
	boxed(help.Box, "")

	s.result = tview.NewTable().SetBorders(true).SetFixed(1, 0)
	boxed(s.result.Box, " Results ")
	s.result.SetSelectable(true, true)

	s.query = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	boxed(s.query.Box, " Query (Enter to run) ")
	s.query.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		if q := strings.TrimSpace(s.query.GetText()); q != "" {
			s.runQuery(q)
		}
	})

	s.status = tview.NewTextView().SetDynamicColors(true)
	boxed(s.status.Box, " Status ")

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.header, 4, 0, false).
		AddItem(s.tables, 0, 1, true).
		AddItem(help, 3, 0, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.result, 0, 1, false).
		AddItem(s.query, 3, 0, false).
		AddItem(s.status, 3, 0, false)

	s.pages = tview.NewPages().AddPage(pageMain,
		tview.NewFlex().AddItem(left, 30, 0, true).AddItem(right, 0, 1, false),
		true, true)
	return s.pages
}

func (s *uiState) refreshHeader() {
	s.header.SetText(fmt.Sprintf("[::b]BINCAST[-]  [#C0A1F0]%s[-]\n[gray]cast:[-] %s",
		strings.ToUpper(s.label), castLabel(s.castIdx)))
}

func (s *uiState) cycleCast() {
	s.castIdx, s.castSet = nextCast(s.castIdx)
	s.refreshHeader()
	s.setStatus(fmt.Sprintf("[green]Query cast:[-] %s", castLabel(s.castIdx)))
}

func (s *uiState) loadTables() error {
	s.setStatus("[yellow]Loading tables…[-]")

	tables, err := s.db.ListTables(s.ctx)
	if err != nil {
		s.setStatus("[red]" + tview.Escape(logging.PresentError("Error loading tables", err)) + "[-]")
		return err
	}

	s.tables.Clear()
	for _, t := range tables {
		if name := strings.TrimSpace(t); name != "" {
			s.tables.AddItem(name, "", 0, nil)
		}
	}

	if s.tables.GetItemCount() == 0 {
		s.setStatus("[gray]No tables found.[-]")
		return nil
	}
	s.tables.SetCurrentItem(0)
	s.setStatus("[green]Tables loaded.[-] Enter selects, Ctrl+D describes, Ctrl+T switches the cast.")
	return nil
}

func (s *uiState) runQuery(q string) {
	start := time.Now()
	s.setStatus(fmt.Sprintf("[yellow]Running query…[-] [gray]%s[-]", tview.Escape(truncateInline(q, 80))))

	rows, err := s.db.Query(s.ctx, db.Query{SQL: q, TypeCast: s.castSet})
	if rows != nil {
		s.renderRows(rows)
	}
	if err != nil {
		shown := 0
		if rows != nil {
			shown = len(rows.Data)
		}
		s.setStatus(fmt.Sprintf("[red]Query error after %d rows:[-] %s", shown, tview.Escape(logging.Mask(err.Error()))))
		return
	}

	s.setStatus(fmt.Sprintf("[green]Query OK[-] [gray](%d rows, %s, cast: %s)[-]",
		len(rows.Data), time.Since(start).Truncate(time.Millisecond), rows.Cast))
}

func (s *uiState) describeSelected() {
	if s.tables.GetItemCount() == 0 {
		return
	}
	table, _ := s.tables.GetItemText(s.tables.GetCurrentItem())
	cols, err := s.db.DescribeTable(s.ctx, table)
	if err != nil {
		s.setStatus("[red]" + tview.Escape(logging.PresentError("Describe "+table, err)) + "[-]")
		return
	}

	s.result.Clear()
	s.lastRows = nil
	for i, h := range []string{"column", "type"} {
		s.result.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false).SetAttributes(tcell.AttrBold))
	}
	for r, c := range cols {
		s.result.SetCell(r+1, 0, tview.NewTableCell(c.Name))
		s.result.SetCell(r+1, 1, tview.NewTableCell(c.Type))
	}
	s.result.ScrollToBeginning()
	s.setStatus(fmt.Sprintf("[green]%s[-] [gray](%d columns)[-]", tview.Escape(table), len(cols)))
}

func (s *uiState) renderRows(rows *db.Rows) {
	s.result.Clear()
	s.lastRows = rows
	if len(rows.Columns) == 0 {
		return
	}

	names := make([]string, len(rows.Columns))
	for i, c := range rows.Columns {
		names[i] = c.Name
	}
	cells := make([][]string, len(rows.Data))
	for r, row := range rows.Data {
		vals := row.Values()
		cells[r] = make([]string, len(vals))
		for c, v := range vals {
			if c < len(rows.Columns) {
				cells[r][c] = cellText(&rows.Columns[c], v)
			}
		}
	}
	widths := fitWidths(names, cells)

	for c, name := range names {
		s.result.SetCell(0, c, tview.NewTableCell(pad(name, widths[c])).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}
	for r, row := range cells {
		for c, text := range row {
			align := tview.AlignLeft
			if rightAligned(&rows.Columns[c]) {
				align = tview.AlignRight
			}
			cell := tview.NewTableCell(pad(clip(text, maxColWidth), widths[c])).
				SetAlign(align)
			if r%2 == 1 {
				cell.SetBackgroundColor(zebra)
			}
			s.result.SetCell(r+1, c, cell)
		}
	}
	s.result.ScrollToBeginning()
}

func (s *uiState) expandCurrentRow() {
	if s.lastRows == nil {
		return
	}
	r, _ := s.result.GetSelection()
	r-- // header
	if r < 0 || r >= len(s.lastRows.Data) {
		return
	}
	s.showOverlay(pageDetail, " Row detail ", rowDetail(s.lastRows, r), false)
}

func (s *uiState) showHelp() {
	const helpText = `
[::b]Global[-]
  Ctrl+Q / Ctrl+C   Quit
  Ctrl+/            Toggle this help
  Ctrl+T            Cycle query cast (connection, tinybool, changecase)

[::b]Navigation[-]
  Ctrl+h / Ctrl+l   Focus tables / results
  Ctrl+j / Ctrl+k   Focus query / status

[::b]Tables pane[-]
  Enter             SELECT * FROM <table> LIMIT 100
  Ctrl+D            Describe table
  Ctrl+R            Reload tables

[::b]Results pane[-]
  Enter             Expand current row

[::b]Query input[-]
  Enter             Run SQL in the input
  Ctrl+:            Focus query from anywhere

Overlays close with ESC, Enter, Ctrl+Q, or Ctrl+/.`
	s.showOverlay(pageHelp, " Help ", helpText, true)
}

func (s *uiState) showOverlay(page, title, body string, colors bool) {
	txt := tview.NewTextView().
		SetDynamicColors(colors).
		SetScrollable(true).
		SetWrap(true).
		SetWordWrap(true).
		SetText(body)

	frame := tview.NewFrame(txt).SetBorders(0, 0, 1, 1, 1, 1)
	frame.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)

	column := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(frame, 0, 3, true).
		AddItem(nil, 0, 1, false)
	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(column, 0, 3, true).
		AddItem(nil, 0, 1, false)

	s.pages.AddAndSwitchToPage(page, modal, true)
	s.app.SetFocus(txt)
}

func (s *uiState) closeOverlay(page string) {
	s.pages.RemovePage(page)
	s.pages.SwitchToPage(pageMain)
	s.app.SetFocus(s.result)
}

func (s *uiState) setStatus(msg string) {
	if s.status != nil {
		s.status.SetText(msg)
	}
}

// rowDetail lists every column of row r with its wire type.
func rowDetail(rows *db.Rows, r int) string {
	var b strings.Builder
	vals := rows.Data[r].Values()
	for i, col := range rows.Columns {
		fmt.Fprintf(&b, "%s (%s):\n  ", col.Name, col.Type)
		if i < len(vals) {
			b.WriteString(cellText(&rows.Columns[i], vals[i]))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// isCtrlKey checks for Ctrl+<ch>, handling both KeyCtrlX and rune+modifier.
func isCtrlKey(ev *tcell.EventKey, key tcell.Key, ch rune) bool {
	if key != 0 && ev.Key() == key {
		return true
	}
	return ev.Rune() == ch && ev.Modifiers()&tcell.ModCtrl != 0
}
