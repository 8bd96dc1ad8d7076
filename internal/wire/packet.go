package wire

import (
	"encoding/binary"

	"github.com/bgunnarsson/bincast/internal/errors"
)

const nullCell = 0xfb

// readLenEnc reads a length-encoded integer at p[i:]. It returns the value,
// the number of bytes consumed and whether the marker was the NULL byte.
func readLenEnc(p []byte, i int) (n uint64, size int, null bool, err error) {
	if i >= len(p) {
		return 0, 0, false, errors.New(errors.Decode, "row packet truncated")
	}
	switch b := p[i]; {
	case b < nullCell:
		return uint64(b), 1, false, nil
	case b == nullCell:
		return 0, 1, true, nil
	case b == 0xfc:
		if i+3 > len(p) {
			break
		}
		return uint64(binary.LittleEndian.Uint16(p[i+1:])), 3, false, nil
	case b == 0xfd:
		if i+4 > len(p) {
			break
		}
		return uint64(p[i+1]) | uint64(p[i+2])<<8 | uint64(p[i+3])<<16, 4, false, nil
	case b == 0xfe:
		if i+9 > len(p) {
			break
		}
		return binary.LittleEndian.Uint64(p[i+1:]), 9, false, nil
	default:
		return 0, 0, false, errors.Newf(errors.Decode, "invalid length-encoded integer prefix 0x%02x", b)
	}
	return 0, 0, false, errors.New(errors.Decode, "row packet truncated")
}

// readLenEncString appends the span of the length-encoded string at p[i:].
func readLenEncString(p []byte, i int) (Cell, int, error) {
	n, size, null, err := readLenEnc(p, i)
	if err != nil {
		return Cell{}, 0, err
	}
	if null {
		return Cell{Off: i + size, Null: true}, size, nil
	}
	start := i + size
	if n > uint64(len(p)-start) {
		return Cell{}, 0, errors.Newf(errors.Decode, "cell length %d exceeds row packet", n)
	}
	return Cell{Off: start, Len: int(n)}, size + int(n), nil
}

// ParseTextRow splits a text protocol row packet into cells. The buffer
// aliases payload; nothing is copied.
func ParseTextRow(cols []Column, payload []byte) (*RowBuffer, error) {
	buf := &RowBuffer{Format: FormatText, Data: payload, Cells: make([]Cell, 0, len(cols))}
	pos := 0
	for range cols {
		cell, n, err := readLenEncString(payload, pos)
		if err != nil {
			return nil, err
		}
		buf.Cells = append(buf.Cells, cell)
		pos += n
	}
	if pos != len(payload) {
		return nil, errors.Newf(errors.Decode, "%d trailing bytes after last cell", len(payload)-pos)
	}
	return buf, nil
}

// BinaryWidth is the fixed cell width of a binary protocol type, or 0 when
// the cell is length-prefixed.
func BinaryWidth(t Type) int {
	switch t {
	case TypeTiny:
		return 1
	case TypeShort, TypeYear:
		return 2
	case TypeLong, TypeInt24, TypeFloat:
		return 4
	case TypeLongLong, TypeDouble:
		return 8
	}
	return 0
}

// ParseBinaryRow splits a binary protocol row packet into cells.
// Temporal cells keep their one-byte length prefix stripped, so a cell of
// length 0 is the zero value of that type.
func ParseBinaryRow(cols []Column, payload []byte) (*RowBuffer, error) {
	if len(payload) == 0 || payload[0] != 0x00 {
		return nil, errors.New(errors.Decode, "binary row packet must start with 0x00")
	}
	bitmapLen := (len(cols) + 7 + 2) / 8
	if len(payload) < 1+bitmapLen {
		return nil, errors.New(errors.Decode, "binary row packet truncated in null bitmap")
	}
	bitmap := payload[1 : 1+bitmapLen]
	pos := 1 + bitmapLen

	buf := &RowBuffer{Format: FormatBinary, Data: payload, Cells: make([]Cell, 0, len(cols))}
	for i, col := range cols {
		bit := i + 2
		if bitmap[bit/8]&(1<<(bit%8)) != 0 || col.Type == TypeNull {
			buf.Cells = append(buf.Cells, Cell{Off: pos, Null: true})
			continue
		}
		switch w := BinaryWidth(col.Type); {
		case w > 0:
			if pos+w > len(payload) {
				return nil, errors.Newf(errors.Decode, "column %q truncated", col.Name)
			}
			buf.Cells = append(buf.Cells, Cell{Off: pos, Len: w})
			pos += w
		case col.Type.IsDate() || col.Type == TypeTime:
			if pos >= len(payload) {
				return nil, errors.Newf(errors.Decode, "column %q truncated", col.Name)
			}
			n := int(payload[pos])
			if pos+1+n > len(payload) {
				return nil, errors.Newf(errors.Decode, "column %q truncated", col.Name)
			}
			buf.Cells = append(buf.Cells, Cell{Off: pos + 1, Len: n})
			pos += 1 + n
		default:
			cell, n, err := readLenEncString(payload, pos)
			if err != nil {
				return nil, errors.WithColumn(err, col.Name)
			}
			buf.Cells = append(buf.Cells, cell)
			pos += n
		}
	}
	if pos != len(payload) {
		return nil, errors.Newf(errors.Decode, "%d trailing bytes after last cell", len(payload)-pos)
	}
	return buf, nil
}

// AppendLenEncString appends s as a length-encoded string.
func AppendLenEncString(dst, s []byte) []byte {
	n := uint64(len(s))
	switch {
	case n < nullCell:
		dst = append(dst, byte(n))
	case n < 1<<16:
		dst = append(dst, 0xfc, byte(n), byte(n>>8))
	case n < 1<<24:
		dst = append(dst, 0xfd, byte(n), byte(n>>8), byte(n>>16))
	default:
		dst = append(dst, 0xfe)
		dst = binary.LittleEndian.AppendUint64(dst, n)
	}
	return append(dst, s...)
}

// AppendTextNull appends the NULL marker of the text protocol.
func AppendTextNull(dst []byte) []byte { return append(dst, nullCell) }
