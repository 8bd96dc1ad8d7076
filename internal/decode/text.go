package decode

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// Text returns the cell as a string. String types are decoded from the column
// charset; binary-charset cells are returned byte for byte. Binary protocol
// numerics and temporals are rendered the way the server renders them in
// text rows. Valid for every wire type.
func (f *Field) Text() (sql.Null[string], error) {
	if f.null {
		return sql.Null[string]{}, nil
	}
	if f.format == wire.FormatBinary && !f.Type.IsString() {
		s, err := f.renderBinary()
		if err != nil {
			return sql.Null[string]{}, err
		}
		return sql.Null[string]{V: s, Valid: true}, nil
	}
	if !f.Type.IsString() || f.Binary() {
		return sql.Null[string]{V: string(f.raw), Valid: true}, nil
	}
	s, err := decodeCharset(wire.LookupCharset(f.Charset), f.raw)
	if err != nil {
		return sql.Null[string]{}, &errors.E{Kind: errors.Charset, Column: f.Name, Err: err}
	}
	return sql.Null[string]{V: s, Valid: true}, nil
}

func decodeCharset(cs wire.Charset, raw []byte) (string, error) {
	if cs.SevenBit {
		for _, b := range raw {
			if b > 0x7f {
				return "", fmt.Errorf("byte 0x%02x is not defined in %s", b, cs.Name)
			}
		}
		return string(raw), nil
	}
	if cs.Encoding == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid %s byte sequence", cs.Name)
		}
		return string(raw), nil
	}
	if cs.Wide > 0 && len(raw)%cs.Wide != 0 {
		return "", fmt.Errorf("%s text of %d bytes is not a multiple of %d", cs.Name, len(raw), cs.Wide)
	}
	if cm, ok := cs.Encoding.(*charmap.Charmap); ok {
		return decodeSingleByte(cs, cm, raw)
	}
	out, err := cs.Encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", cs.Name, err)
	}
	return string(out), nil
}

func decodeSingleByte(cs wire.Charset, cm *charmap.Charmap, raw []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		r := cm.DecodeByte(b)
		if r == utf8.RuneError {
			if !cs.C1 || b < 0x80 || b > 0x9f {
				return "", fmt.Errorf("byte 0x%02x is not defined in %s", b, cs.Name)
			}
			r = rune(b)
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func (f *Field) renderBinary() (string, error) {
	switch {
	case f.Type.IsInteger() && f.Unsigned():
		u, err := f.parseUint()
		return strconv.FormatUint(u, 10), err
	case f.Type.IsInteger():
		v, err := f.parseInt()
		return strconv.FormatInt(v, 10), err
	case f.Type == wire.TypeFloat:
		v, err := f.float(32)
		return strconv.FormatFloat(v.V, 'g', -1, 32), err
	case f.Type == wire.TypeDouble:
		v, err := f.float(64)
		return strconv.FormatFloat(v.V, 'g', -1, 64), err
	case f.Type.IsDate():
		v, err := f.binaryDateTime()
		if err != nil {
			return "", err
		}
		if !v.Valid {
			if f.Type == wire.TypeDate || f.Type == wire.TypeNewDate {
				return "0000-00-00", nil
			}
			return "0000-00-00 00:00:00", nil
		}
		if f.Type == wire.TypeDate || f.Type == wire.TypeNewDate {
			return v.V.Format(dateLayout), nil
		}
		return v.V.Format(dateTimeLayout), nil
	case f.Type == wire.TypeTime:
		v, err := f.binaryTime()
		return formatTime(v.V), err
	}
	return string(f.raw), nil
}
