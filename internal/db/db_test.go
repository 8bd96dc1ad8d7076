package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bgunnarsson/bincast/internal/cast"
	bcerrors "github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

type testColumn struct {
	name   string
	dbType string
	length int64 // 0 means unknown
}

type testResult struct {
	cols []testColumn
	data [][]driver.Value
	// failAt makes Next fail once this many rows were returned.
	failAt int
	err    error
}

type handler func(query string, args []driver.NamedValue) (testResult, error)

type testConnector struct{ h handler }

func (c *testConnector) Connect(context.Context) (driver.Conn, error) { return &testConn{h: c.h}, nil }
func (c *testConnector) Driver() driver.Driver                        { return testDriver{} }

type testDriver struct{}

func (testDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("testDriver.Open should not be called; use sql.OpenDB with connector")
}

type testConn struct{ h handler }

func (c *testConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *testConn) Close() error                        { return nil }
func (c *testConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (c *testConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	res, err := c.h(query, args)
	if err != nil {
		return nil, err
	}
	return &testRows{res: res}, nil
}

type testRows struct {
	res testResult
	i   int
}

func (r *testRows) Columns() []string {
	out := make([]string, len(r.res.cols))
	for i, c := range r.res.cols {
		out[i] = c.name
	}
	return out
}

func (r *testRows) Close() error { return nil }

func (r *testRows) Next(dest []driver.Value) error {
	if r.res.err != nil && r.i == r.res.failAt {
		return r.res.err
	}
	if r.i >= len(r.res.data) {
		return io.EOF
	}
	copy(dest, r.res.data[r.i])
	r.i++
	return nil
}

func (r *testRows) ColumnTypeDatabaseTypeName(i int) string { return r.res.cols[i].dbType }

func (r *testRows) ColumnTypeLength(i int) (int64, bool) {
	return r.res.cols[i].length, r.res.cols[i].length > 0
}

func newTestDB(t *testing.T, h handler) *sql.DB {
	t.Helper()
	sqldb := sql.OpenDB(&testConnector{h: h})
	t.Cleanup(func() { sqldb.Close() })
	return sqldb
}

func fixed(res testResult) handler {
	return func(string, []driver.NamedValue) (testResult, error) { return res, nil }
}

var testDialect = Dialect{
	Name: "test",
	Column: func(info ColumnInfo) wire.Column {
		switch info.DatabaseType {
		case "INT":
			return Number(wire.TypeLong, info, false)
		case "UNSIGNED BIGINT":
			return Number(wire.TypeLongLong, info, true)
		case "TINYINT":
			return Number(wire.TypeTiny, info, false)
		case "DOUBLE":
			return Number(wire.TypeDouble, info, false)
		case "DECIMAL":
			return Number(wire.TypeNewDecimal, info, false)
		case "BOOL":
			return Bool()
		case "DATETIME":
			return Temporal(wire.TypeDateTime, info)
		case "TIMESTAMP":
			return Temporal(wire.TypeTimestamp, info)
		case "DATE":
			return Temporal(wire.TypeDate, info)
		case "TIME":
			return Temporal(wire.TypeTime, info)
		case "BLOB":
			return Bytes(wire.TypeBlob, info)
		}
		return Text(wire.TypeVarString, info)
	},
}

func newTestConn(t *testing.T, h handler, opts Options) *Conn {
	t.Helper()
	return &Conn{SQL: newTestDB(t, h), Dialect: testDialect, Options: opts}
}

func TestQueryDefaultCast(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 30, 5, 250000000, time.UTC)
	res := testResult{
		cols: []testColumn{
			{"id", "INT", 11},
			{"big", "UNSIGNED BIGINT", 20},
			{"flag", "TINYINT", 1},
			{"ratio", "DOUBLE", 0},
			{"price", "DECIMAL", 10},
			{"ok", "BOOL", 0},
			{"created", "DATETIME", 0},
			{"day", "DATE", 0},
			{"dur", "TIME", 0},
			{"name", "VARCHAR", 24},
			{"payload", "BLOB", 0},
			{"missing", "VARCHAR", 24},
		},
		data: [][]driver.Value{{
			int64(7), "18446744073709551615", int64(1), 1.5, []byte("12.50"), true,
			ts, ts, "-01:02:03", "hello", []byte{0, 1, 2}, nil,
		}},
	}
	c := newTestConn(t, fixed(res), Options{})

	rows, err := c.Query(context.Background(), Query{SQL: "select"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows.Cast != "default" {
		t.Fatalf("Cast = %q, want default", rows.Cast)
	}
	if len(rows.Data) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows.Data))
	}
	row := rows.Data[0]

	check := func(name string, want any) {
		t.Helper()
		got, ok := row.Get(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		switch w := want.(type) {
		case []byte:
			if g, ok := got.([]byte); !ok || string(g) != string(w) {
				t.Fatalf("%s = %#v, want %#v", name, got, want)
			}
		case decimal.Decimal:
			if g, ok := got.(decimal.Decimal); !ok || !g.Equal(w) {
				t.Fatalf("%s = %#v, want %s", name, got, w)
			}
		case time.Time:
			if g, ok := got.(time.Time); !ok || !g.Equal(w) {
				t.Fatalf("%s = %#v, want %s", name, got, w)
			}
		default:
			if got != want {
				t.Fatalf("%s = %#v (%T), want %#v (%T)", name, got, got, want, want)
			}
		}
	}

	check("id", int64(7))
	check("big", uint64(18446744073709551615))
	check("flag", int64(1))
	check("ratio", 1.5)
	check("price", decimal.RequireFromString("12.5"))
	check("ok", int64(1))
	check("created", ts)
	check("day", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	check("dur", -(time.Hour + 2*time.Minute + 3*time.Second))
	check("name", "hello")
	check("payload", []byte{0, 1, 2})
	check("missing", nil)

	if got := rows.Columns[9]; got.Type != wire.TypeVarString || got.Length != 24 || got.Name != "name" {
		t.Fatalf("name column = %+v", got)
	}
	if !rows.Columns[10].Binary() {
		t.Fatalf("payload column should be binary: %+v", rows.Columns[10])
	}
}

func TestQueryCastScopes(t *testing.T) {
	res := testResult{
		cols: []testColumn{{"flag", "TINYINT", 1}, {"upper_name", "VARCHAR", 24}},
		data: [][]driver.Value{{int64(1), "Alice"}},
	}
	tinybool, err := cast.ParseSetting("tinybool")
	if err != nil {
		t.Fatal(err)
	}
	changecase, err := cast.ParseSetting("changecase")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		conn      cast.Setting
		query     cast.Setting
		wantFlag  any
		wantName  any
		wantScope string
	}{
		{"none", cast.Unset, cast.Unset, int64(1), "Alice", "default"},
		{"connection", tinybool, cast.Unset, true, "Alice", "connection"},
		{"query wins", tinybool, changecase, int64(1), "ALICE", "query"},
		{"query re-enables default", tinybool, cast.Enabled, int64(1), "Alice", "default"},
		{"query disables", changecase, cast.Disabled, int64(1), "Alice", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConn(t, fixed(res), Options{TypeCast: tt.conn})
			rows, err := c.Query(context.Background(), Query{SQL: "select", TypeCast: tt.query})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if rows.Cast != tt.wantScope {
				t.Fatalf("Cast = %q, want %q", rows.Cast, tt.wantScope)
			}
			if got, _ := rows.Data[0].Get("flag"); got != tt.wantFlag {
				t.Fatalf("flag = %#v, want %#v", got, tt.wantFlag)
			}
			if got, _ := rows.Data[0].Get("upper_name"); got != tt.wantName {
				t.Fatalf("upper_name = %#v, want %#v", got, tt.wantName)
			}
		})
	}
}

func TestQueryLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	res := testResult{
		cols: []testColumn{{"created", "DATETIME", 0}},
		data: [][]driver.Value{{"2024-03-09 10:00:00"}},
	}
	c := newTestConn(t, fixed(res), Options{Location: loc})

	rows, err := c.Query(context.Background(), Query{SQL: "select"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	got, _ := rows.Data[0].Get("created")
	want := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	if ts, ok := got.(time.Time); !ok || !ts.Equal(want) {
		t.Fatalf("created = %v, want %v", got, want)
	}
}

func TestQueryDriverTimeZones(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	tests := []struct {
		name   string
		dbType string
		v      time.Time
		loc    *time.Location
		want   time.Time
	}{
		{
			name:   "zoned datetime keeps its instant",
			dbType: "DATETIME",
			v:      time.Date(2024, 3, 9, 10, 0, 0, 0, plus2),
			want:   time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "zoneless datetime is read in the connection zone",
			dbType: "DATETIME",
			v:      time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
			loc:    plus2,
			want:   time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "timestamp keeps its instant",
			dbType: "TIMESTAMP",
			v:      time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
			loc:    plus2,
			want:   time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "date keeps its calendar day",
			dbType: "DATE",
			v:      time.Date(2024, 3, 10, 0, 30, 0, 0, plus2),
			want:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testResult{
				cols: []testColumn{{"at", tt.dbType, 0}},
				data: [][]driver.Value{{tt.v}},
			}
			c := newTestConn(t, fixed(res), Options{Location: tt.loc})
			rows, err := c.Query(context.Background(), Query{SQL: "select"})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			got, _ := rows.Data[0].Get("at")
			if ts, ok := got.(time.Time); !ok || !ts.Equal(tt.want) {
				t.Fatalf("at = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryPartialRows(t *testing.T) {
	boom := errors.New("connection reset")
	res := testResult{
		cols:   []testColumn{{"id", "INT", 11}},
		data:   [][]driver.Value{{int64(1)}, {int64(2)}, {int64(3)}},
		failAt: 2,
		err:    boom,
	}
	c := newTestConn(t, fixed(res), Options{})

	rows, err := c.Query(context.Background(), Query{SQL: "select"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if rows == nil || len(rows.Data) != 2 {
		t.Fatalf("rows = %+v, want the 2 rows read before the failure", rows)
	}
}

func TestQueryDecodeErrorNamesColumn(t *testing.T) {
	res := testResult{
		cols: []testColumn{{"id", "INT", 11}, {"n", "INT", 11}},
		data: [][]driver.Value{{int64(1), "x"}},
	}
	c := newTestConn(t, fixed(res), Options{})

	_, err := c.Query(context.Background(), Query{SQL: "select"})
	if !bcerrors.IsKind(err, bcerrors.Decode) {
		t.Fatalf("err = %v, want a decode error", err)
	}
	if !strings.Contains(err.Error(), `column "n"`) {
		t.Fatalf("err = %v, want the column named", err)
	}
}

func TestQueryUnsupportedDriverValue(t *testing.T) {
	res := testResult{
		cols: []testColumn{{"id", "INT", 11}, {"odd", "VARCHAR", 8}},
		data: [][]driver.Value{{int64(1), "x"}},
	}
	d := testDialect
	d.Value = func(col *wire.Column, _ ColumnInfo, v any) any {
		if col.Name == "odd" {
			return struct{}{}
		}
		return v
	}
	c := &Conn{SQL: newTestDB(t, fixed(res)), Dialect: d}

	_, err := c.Query(context.Background(), Query{SQL: "select"})
	if !bcerrors.IsKind(err, bcerrors.Decode) {
		t.Fatalf("err = %v, want a decode error", err)
	}
	if !strings.Contains(err.Error(), `column "odd"`) || !strings.Contains(err.Error(), "unsupported driver value") {
		t.Fatalf("err = %v", err)
	}
}

func TestQueryArgsPassThrough(t *testing.T) {
	var gotQuery string
	var gotArgs []driver.NamedValue
	h := func(q string, args []driver.NamedValue) (testResult, error) {
		gotQuery, gotArgs = q, args
		return testResult{cols: []testColumn{{"id", "INT", 11}}}, nil
	}
	c := newTestConn(t, h, Options{})

	rows, err := c.Query(context.Background(), Query{SQL: "select ?", Args: []any{int64(5)}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows.Data) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows.Data))
	}
	if gotQuery != "select ?" || len(gotArgs) != 1 || gotArgs[0].Value != int64(5) {
		t.Fatalf("driver saw %q %+v", gotQuery, gotArgs)
	}
}

func TestQueryError(t *testing.T) {
	boom := errors.New("syntax error")
	h := func(string, []driver.NamedValue) (testResult, error) { return testResult{}, boom }
	c := newTestConn(t, h, Options{})

	if _, err := c.Query(context.Background(), Query{SQL: "selec"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestQueryCanceled(t *testing.T) {
	res := testResult{
		cols: []testColumn{{"id", "INT", 11}},
		data: [][]driver.Value{{int64(1)}},
	}
	c := newTestConn(t, fixed(res), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Query(ctx, Query{SQL: "select"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestStringsAndColumns(t *testing.T) {
	h := func(q string, _ []driver.NamedValue) (testResult, error) {
		if strings.Contains(q, "tables") {
			return testResult{
				cols: []testColumn{{"name", "VARCHAR", 0}},
				data: [][]driver.Value{{"a"}, {"b"}},
			}, nil
		}
		return testResult{
			cols: []testColumn{{"name", "VARCHAR", 0}, {"type", "VARCHAR", 0}},
			data: [][]driver.Value{{"id", "int"}, {"name", "varchar(24)"}},
		}, nil
	}
	c := newTestConn(t, h, Options{})

	names, err := c.Strings(context.Background(), "select tables")
	if err != nil || len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("Strings = %v, %v", names, err)
	}
	cols, err := c.Columns(context.Background(), "select columns")
	if err != nil || len(cols) != 2 || cols[1] != (Column{Name: "name", Type: "varchar(24)"}) {
		t.Fatalf("Columns = %v, %v", cols, err)
	}
}

func TestCloseNil(t *testing.T) {
	var c Conn
	if err := c.Close(); err != nil {
		t.Fatalf("Close on unopened conn: %v", err)
	}
}
