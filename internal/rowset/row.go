// Package rowset materializes result rows: for every column of a row it binds
// a decode.Field to the row buffer, runs the effective cast, and stores the
// value under the column name.
package rowset

import (
	"bytes"
	"encoding/json"
)

// Row is one materialized result row. Keys keep the column order of the
// result set. When two columns share a name the last one wins: Get and Map
// return the later value, while the key stays at the position where the name
// first appeared. Values still returns every column positionally.
type Row struct {
	names  []string
	index  map[string]int // name -> position in values of the winning column
	values []any
}

func newRow(n int) Row {
	return Row{
		names:  make([]string, 0, n),
		index:  make(map[string]int, n),
		values: make([]any, 0, n),
	}
}

func (r *Row) set(name string, v any) {
	if _, dup := r.index[name]; !dup {
		r.names = append(r.names, name)
	}
	r.index[name] = len(r.values)
	r.values = append(r.values, v)
}

// Get returns the value stored under name.
func (r Row) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Names returns the distinct column names in first-appearance order.
func (r Row) Names() []string { return append([]string(nil), r.names...) }

// Values returns the value of every column in result set order, duplicate
// names included.
func (r Row) Values() []any { return append([]any(nil), r.values...) }

// Len is the number of distinct keys.
func (r Row) Len() int { return len(r.names) }

// Map returns the row as a plain map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.names))
	for _, n := range r.names {
		m[n], _ = r.Get(n)
	}
	return m
}

// MarshalJSON writes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, _ := r.Get(n)
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		b.Write(enc)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
