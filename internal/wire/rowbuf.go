package wire

// Format is the encoding of the cells in a row buffer.
type Format uint8

const (
	// FormatText is the text protocol: every cell is its textual rendering.
	FormatText Format = iota
	// FormatBinary is the binary (prepared statement) protocol: numerics are
	// fixed-width little-endian, temporals are length-prefixed structs.
	FormatBinary
)

func (f Format) String() string {
	if f == FormatBinary {
		return "binary"
	}
	return "text"
}

// Cell is the span of one column inside RowBuffer.Data.
type Cell struct {
	Off, Len int
	Null     bool
}

// RowBuffer is one row as loaded by the protocol layer: a byte buffer and a
// span per column. Views returned by Raw alias Data and are only valid until
// the buffer is reset for the next row.
type RowBuffer struct {
	Format Format
	Data   []byte
	Cells  []Cell
}

// Raw returns the bytes of cell i and whether it is SQL NULL.
func (b *RowBuffer) Raw(i int) ([]byte, bool) {
	c := b.Cells[i]
	if c.Null {
		return nil, true
	}
	return b.Data[c.Off : c.Off+c.Len : c.Off+c.Len], false
}

// Reset empties the buffer, keeping its capacity for the next row.
func (b *RowBuffer) Reset(format Format) {
	b.Format = format
	b.Data = b.Data[:0]
	b.Cells = b.Cells[:0]
}

// AppendCell copies v into the buffer as the next cell.
func (b *RowBuffer) AppendCell(v []byte) {
	b.Cells = append(b.Cells, Cell{Off: len(b.Data), Len: len(v)})
	b.Data = append(b.Data, v...)
}

// AppendString is AppendCell for a string.
func (b *RowBuffer) AppendString(s string) {
	b.Cells = append(b.Cells, Cell{Off: len(b.Data), Len: len(s)})
	b.Data = append(b.Data, s...)
}

// AppendNull adds a SQL NULL cell.
func (b *RowBuffer) AppendNull() {
	b.Cells = append(b.Cells, Cell{Off: len(b.Data), Null: true})
}
