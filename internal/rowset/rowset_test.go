package rowset

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/decode"
	"github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

func packet(cells ...any) []byte {
	var p []byte
	for _, c := range cells {
		if c == nil {
			p = wire.AppendTextNull(p)
			continue
		}
		p = wire.AppendLenEncString(p, []byte(c.(string)))
	}
	return p
}

// caseQuery is what the server returns for
// SELECT 'blaBLA' as upper, 'blaBLA' as lower, 'blaBLA' as std, 1 as r
func caseQuery() *PacketSource {
	cols := []wire.Column{
		{Name: "upper", Type: wire.TypeVarString, Length: 24, Charset: wire.CharsetUTF8MB4},
		{Name: "lower", Type: wire.TypeVarString, Length: 24, Charset: wire.CharsetUTF8MB4},
		{Name: "std", Type: wire.TypeVarString, Length: 24, Charset: wire.CharsetUTF8MB4},
		{Name: "r", Type: wire.TypeLong, Length: 1, Charset: wire.CharsetBinary, Flags: wire.FlagNotNull | wire.FlagBinary | wire.FlagNum},
	}
	return Packets(cols, wire.FormatText, packet("blaBLA", "blaBLA", "blaBLA", "1"))
}

// tinyTable is SELECT * FROM t with b1 TINYINT(1), b2 TINYINT(2) holding
// (0,0), (1,1), (2,2), (null,null).
func tinyTable() *PacketSource {
	cols := []wire.Column{
		{Name: "b1", Type: wire.TypeTiny, Length: 1, Charset: wire.CharsetBinary, Flags: wire.FlagNum},
		{Name: "b2", Type: wire.TypeTiny, Length: 2, Charset: wire.CharsetBinary, Flags: wire.FlagNum},
	}
	return Packets(cols, wire.FormatText,
		packet("0", "0"),
		packet("1", "1"),
		packet("2", "2"),
		packet(nil, nil),
	)
}

func maps(rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out
}

func collect(t *testing.T, src Source, chain cast.Chain) []map[string]any {
	t.Helper()
	rows, err := Collect(context.Background(), src, chain, Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return maps(rows)
}

func TestChangeCaseAtQueryAndConnectionScope(t *testing.T) {
	want := []map[string]any{{"upper": "BLABLA", "lower": "blabla", "std": "blaBLA", "r": int64(1)}}

	for name, chain := range map[string]cast.Chain{
		"query":      cast.Resolve(cast.Custom(cast.ChangeCase), cast.Unset),
		"connection": cast.Resolve(cast.Unset, cast.Custom(cast.ChangeCase)),
	} {
		t.Run(name, func(t *testing.T) {
			if got := collect(t, caseQuery(), chain); !reflect.DeepEqual(got, want) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestTypeCastTrueMatchesAbsent(t *testing.T) {
	absent := collect(t, caseQuery(), cast.Resolve(cast.Unset, cast.Unset))
	enabled := collect(t, caseQuery(), cast.Resolve(cast.Unset, cast.Enabled))
	reenabled := collect(t, caseQuery(), cast.Resolve(cast.Enabled, cast.Custom(cast.ChangeCase)))
	want := []map[string]any{{"upper": "blaBLA", "lower": "blaBLA", "std": "blaBLA", "r": int64(1)}}

	for name, got := range map[string][]map[string]any{"absent": absent, "true": enabled, "query true": reenabled} {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestTinyIntDefaultsToNumber(t *testing.T) {
	got := collect(t, tinyTable(), cast.Resolve(cast.Unset, cast.Unset))
	want := []map[string]any{
		{"b1": int64(0), "b2": int64(0)},
		{"b1": int64(1), "b2": int64(1)},
		{"b1": int64(2), "b2": int64(2)},
		{"b1": nil, "b2": nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTinyToBoolOverride(t *testing.T) {
	got := collect(t, tinyTable(), cast.Resolve(cast.Unset, cast.Custom(cast.TinyToBool)))
	want := []map[string]any{
		{"b1": false, "b2": int64(0)},
		{"b1": true, "b2": int64(1)},
		{"b1": false, "b2": int64(2)},
		{"b1": nil, "b2": nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestQueryOverrideWinsForEveryColumn(t *testing.T) {
	var seen []string
	query := cast.Custom(func(f *decode.Field, _ cast.Next) (any, error) {
		seen = append(seen, f.Name)
		return "q", nil
	})
	conn := cast.Custom(func(*decode.Field, cast.Next) (any, error) {
		t.Fatal("connection override must not run")
		return nil, nil
	})
	got := collect(t, caseQuery(), cast.Resolve(query, conn))
	if !reflect.DeepEqual(got, []map[string]any{{"upper": "q", "lower": "q", "std": "q", "r": "q"}}) {
		t.Fatalf("got %v", got)
	}
	if !reflect.DeepEqual(seen, []string{"upper", "lower", "std", "r"}) {
		t.Fatalf("override saw %v", seen)
	}
}

func TestNextEqualsDefaultForText(t *testing.T) {
	passthrough := cast.Resolve(cast.Custom(func(_ *decode.Field, next cast.Next) (any, error) { return next() }), cast.Unset)
	if got, want := collect(t, caseQuery(), passthrough), collect(t, caseQuery(), cast.Chain{}); !reflect.DeepEqual(got, want) {
		t.Fatalf("passthrough %v != default %v", got, want)
	}
}

func TestOverrideSeesColumnDescriptor(t *testing.T) {
	check := cast.Custom(func(f *decode.Field, next cast.Next) (any, error) {
		if f.Type != wire.TypeVarString || f.Type.String() != "VAR_STRING" {
			return nil, fmt.Errorf("type = %s", f.Type)
		}
		if f.Length != 24 {
			return nil, fmt.Errorf("length = %d", f.Length)
		}
		return next()
	})
	cols := caseQuery().Columns()[:1]
	src := Packets(cols, wire.FormatText, packet("blaBLA"))
	got := collect(t, src, cast.Resolve(check, cast.Unset))
	if !reflect.DeepEqual(got, []map[string]any{{"upper": "blaBLA"}}) {
		t.Fatalf("got %v", got)
	}
}

func TestDuplicateNamesLastWriteWins(t *testing.T) {
	cols := []wire.Column{
		{Name: "id", Type: wire.TypeLong},
		{Name: "name", Type: wire.TypeVarString},
		{Name: "id", Type: wire.TypeLong},
	}
	rows, err := Collect(context.Background(), Packets(cols, wire.FormatText, packet("1", "a", "2")), cast.Chain{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	r := rows[0]
	if v, _ := r.Get("id"); v != int64(2) {
		t.Fatalf("id = %v, want last value 2", v)
	}
	if !reflect.DeepEqual(r.Names(), []string{"id", "name"}) || r.Len() != 2 {
		t.Fatalf("names = %v", r.Names())
	}
	if !reflect.DeepEqual(r.Values(), []any{int64(1), "a", int64(2)}) {
		t.Fatalf("values = %v", r.Values())
	}
	b, err := r.MarshalJSON()
	if err != nil || string(b) != `{"id":2,"name":"a"}` {
		t.Fatalf("json = %s, %v", b, err)
	}
}

func TestErrorAbortsRowAndKeepsEarlierRows(t *testing.T) {
	cols := []wire.Column{{Name: "n", Type: wire.TypeLong}, {Name: "s", Type: wire.TypeVarString}}
	src := Packets(cols, wire.FormatText, packet("1", "a"), packet("x", "b"), packet("3", "c"))

	rows, err := Collect(context.Background(), src, cast.Chain{}, Options{})
	if !errors.IsKind(err, errors.Decode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	var e *errors.E
	if !stderrors.As(err, &e) || e.Column != "n" {
		t.Fatalf("error does not name the column: %v", err)
	}
	if got := maps(rows); !reflect.DeepEqual(got, []map[string]any{{"n": int64(1), "s": "a"}}) {
		t.Fatalf("delivered rows = %v", got)
	}
}

func TestOverrideErrorStopsCursor(t *testing.T) {
	boom := stderrors.New("boom")
	chain := cast.Resolve(cast.Custom(func(f *decode.Field, next cast.Next) (any, error) {
		if f.Name == "b2" {
			v, _ := f.Int()
			if v.V == 2 {
				return nil, boom
			}
		}
		return next()
	}), cast.Unset)

	cur := New(tinyTable(), chain, Options{})
	ctx := context.Background()
	n := 0
	for cur.Next(ctx) {
		n++
	}
	if n != 2 || !stderrors.Is(cur.Err(), boom) || !errors.IsKind(cur.Err(), errors.Override) {
		t.Fatalf("n=%d err=%v", n, cur.Err())
	}
	if cur.Next(ctx) {
		t.Fatal("cursor resumed after error")
	}
}

func TestCancellationIsAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cur := New(tinyTable(), cast.Chain{}, Options{})
	if !cur.Next(ctx) {
		t.Fatalf("first row: %v", cur.Err())
	}
	cancel()
	if cur.Next(ctx) {
		t.Fatal("row decoded after cancel")
	}
	if !errors.IsKind(cur.Err(), errors.Canceled) || !stderrors.Is(cur.Err(), context.Canceled) {
		t.Fatalf("err = %v", cur.Err())
	}
}

// reusingSource hands out the same RowBuffer for every row, like a protocol
// layer that recycles its read buffer.
type reusingSource struct {
	cols []wire.Column
	vals []string
	buf  wire.RowBuffer
	i    int
}

func (s *reusingSource) Columns() []wire.Column { return s.cols }

func (s *reusingSource) Next(context.Context) (*wire.RowBuffer, error) {
	if s.i >= len(s.vals) {
		return nil, io.EOF
	}
	s.buf.Reset(wire.FormatText)
	s.buf.AppendString(s.vals[s.i])
	s.buf.AppendString(s.vals[s.i])
	s.i++
	return &s.buf, nil
}

func TestDeliveredRowsSurviveBufferReuse(t *testing.T) {
	src := &reusingSource{
		cols: []wire.Column{{Name: "s", Type: wire.TypeVarString}, {Name: "b", Type: wire.TypeBlob, Flags: wire.FlagBinary}},
		vals: []string{"first", "second", "third"},
	}
	rows, err := Collect(context.Background(), src, cast.Chain{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []map[string]any{
		{"s": "first", "b": []byte("first")},
		{"s": "second", "b": []byte("second")},
		{"s": "third", "b": []byte("third")},
	}
	if got := maps(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestMaterializeCellCountMismatch(t *testing.T) {
	var buf wire.RowBuffer
	buf.AppendString("1")
	_, err := Materialize([]wire.Column{{Name: "a"}, {Name: "b"}}, &buf, cast.Chain{}, Options{})
	if !errors.IsKind(err, errors.Decode) {
		t.Fatalf("err = %v", err)
	}
}

func TestBinaryProtocolRows(t *testing.T) {
	cols := []wire.Column{
		{Name: "b1", Type: wire.TypeTiny, Length: 1},
		{Name: "s", Type: wire.TypeVarString},
	}
	p := []byte{0x00, 0x00, 1}
	p = wire.AppendLenEncString(p, []byte("x"))
	null := []byte{0x00, 1 << 2}
	null = wire.AppendLenEncString(null, []byte("y"))

	got := collect(t, Packets(cols, wire.FormatBinary, p, null), cast.Resolve(cast.Custom(cast.TinyToBool), cast.Unset))
	want := []map[string]any{{"b1": true, "s": "x"}, {"b1": nil, "s": "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestConcurrentResultSetsShareNothing(t *testing.T) {
	chain := cast.Resolve(cast.Custom(cast.TinyToBool), cast.Unset)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := Collect(context.Background(), tinyTable(), chain, Options{})
			if err == nil && len(rows) != 4 {
				err = fmt.Errorf("got %d rows", len(rows))
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
