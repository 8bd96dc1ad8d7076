package db

import (
	"math"

	"github.com/bgunnarsson/bincast/internal/wire"
)

// Number builds a numeric column. Decimals come from the driver's reported
// scale when it has one.
func Number(t wire.Type, info ColumnInfo, unsigned bool) wire.Column {
	c := wire.Column{Type: t, Length: length(info), Charset: wire.CharsetBinary, Flags: wire.FlagNum}
	if unsigned {
		c.Flags |= wire.FlagUnsigned
	}
	if info.HasDecimal && info.Scale >= 0 && info.Scale <= math.MaxUint8 {
		c.Decimals = uint8(info.Scale)
	}
	return c
}

// Text builds a string-class column holding UTF-8 text.
func Text(t wire.Type, info ColumnInfo) wire.Column {
	return wire.Column{Type: t, Length: length(info), Charset: wire.CharsetUTF8MB4}
}

// Bytes builds a string-class column holding binary data.
func Bytes(t wire.Type, info ColumnInfo) wire.Column {
	c := wire.Column{Type: t, Length: length(info), Charset: wire.CharsetBinary, Flags: wire.FlagBinary}
	switch t {
	case wire.TypeTinyBlob, wire.TypeBlob, wire.TypeMediumBlob, wire.TypeLongBlob:
		c.Flags |= wire.FlagBlob
	}
	return c
}

// Temporal builds a DATE, DATETIME, TIMESTAMP, TIME or YEAR column.
func Temporal(t wire.Type, info ColumnInfo) wire.Column {
	return wire.Column{Type: t, Length: length(info), Charset: wire.CharsetBinary}
}

// Bool builds the TINY(1) column booleans travel as.
func Bool() wire.Column {
	return wire.Column{Type: wire.TypeTiny, Length: 1, Charset: wire.CharsetBinary, Flags: wire.FlagNum}
}

func length(info ColumnInfo) uint32 {
	if !info.HasLength || info.Length < 0 {
		return 0
	}
	if info.Length > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(info.Length)
}
