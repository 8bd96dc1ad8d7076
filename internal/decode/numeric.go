package decode

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bgunnarsson/bincast/internal/wire"
)

// Int returns the cell as int64. Unsigned columns are honored: an unsigned
// value above math.MaxInt64 is a decode error, use Uint for those.
func (f *Field) Int() (sql.Null[int64], error) {
	if !f.Type.IsInteger() {
		return sql.Null[int64]{}, f.mismatch("Int")
	}
	if f.null {
		return sql.Null[int64]{}, nil
	}
	if f.Unsigned() {
		u, err := f.parseUint()
		if err != nil {
			return sql.Null[int64]{}, err
		}
		if u > math.MaxInt64 {
			return sql.Null[int64]{}, f.malformed("integer", fmt.Errorf("unsigned value %d overflows int64", u))
		}
		return sql.Null[int64]{V: int64(u), Valid: true}, nil
	}
	v, err := f.parseInt()
	if err != nil {
		return sql.Null[int64]{}, err
	}
	return sql.Null[int64]{V: v, Valid: true}, nil
}

// Uint returns the cell as uint64. A negative value is a decode error.
func (f *Field) Uint() (sql.Null[uint64], error) {
	if !f.Type.IsInteger() {
		return sql.Null[uint64]{}, f.mismatch("Uint")
	}
	if f.null {
		return sql.Null[uint64]{}, nil
	}
	if f.Unsigned() {
		u, err := f.parseUint()
		if err != nil {
			return sql.Null[uint64]{}, err
		}
		return sql.Null[uint64]{V: u, Valid: true}, nil
	}
	v, err := f.parseInt()
	if err != nil {
		return sql.Null[uint64]{}, err
	}
	if v < 0 {
		return sql.Null[uint64]{}, f.malformed("integer", fmt.Errorf("negative value %d for Uint", v))
	}
	return sql.Null[uint64]{V: uint64(v), Valid: true}, nil
}

func (f *Field) parseInt() (int64, error) {
	if f.format == wire.FormatBinary {
		if err := f.checkWidth(); err != nil {
			return 0, err
		}
		switch len(f.raw) {
		case 1:
			return int64(int8(f.raw[0])), nil
		case 2:
			return int64(int16(binary.LittleEndian.Uint16(f.raw))), nil
		case 4:
			v := int32(binary.LittleEndian.Uint32(f.raw))
			return int64(v), nil
		default:
			return int64(binary.LittleEndian.Uint64(f.raw)), nil
		}
	}
	v, err := strconv.ParseInt(string(f.raw), 10, 64)
	if err != nil {
		return 0, f.malformed("integer", err)
	}
	return v, nil
}

func (f *Field) parseUint() (uint64, error) {
	if f.format == wire.FormatBinary {
		if err := f.checkWidth(); err != nil {
			return 0, err
		}
		switch len(f.raw) {
		case 1:
			return uint64(f.raw[0]), nil
		case 2:
			return uint64(binary.LittleEndian.Uint16(f.raw)), nil
		case 4:
			return uint64(binary.LittleEndian.Uint32(f.raw)), nil
		default:
			return binary.LittleEndian.Uint64(f.raw), nil
		}
	}
	v, err := strconv.ParseUint(string(f.raw), 10, 64)
	if err != nil {
		return 0, f.malformed("integer", err)
	}
	return v, nil
}

// checkWidth validates a fixed-width binary cell against its type.
func (f *Field) checkWidth() error {
	want := wire.BinaryWidth(f.Type)
	if want == 0 || len(f.raw) == want {
		return nil
	}
	return f.malformed(f.Type.String(), fmt.Errorf("binary cell is %d bytes, want %d", len(f.raw), want))
}

// Float returns the cell as float32.
func (f *Field) Float() (sql.Null[float32], error) {
	if !f.Type.IsNumeric() {
		return sql.Null[float32]{}, f.mismatch("Float")
	}
	v, err := f.float(32)
	if err != nil || !v.Valid {
		return sql.Null[float32]{}, err
	}
	return sql.Null[float32]{V: float32(v.V), Valid: true}, nil
}

// Double returns the cell as float64.
func (f *Field) Double() (sql.Null[float64], error) {
	if !f.Type.IsNumeric() {
		return sql.Null[float64]{}, f.mismatch("Double")
	}
	return f.float(64)
}

func (f *Field) float(bits int) (sql.Null[float64], error) {
	if f.null {
		return sql.Null[float64]{}, nil
	}
	if f.format == wire.FormatBinary {
		switch {
		case f.Type == wire.TypeFloat:
			if err := f.checkWidth(); err != nil {
				return sql.Null[float64]{}, err
			}
			return sql.Null[float64]{V: float64(math.Float32frombits(binary.LittleEndian.Uint32(f.raw))), Valid: true}, nil
		case f.Type == wire.TypeDouble:
			if err := f.checkWidth(); err != nil {
				return sql.Null[float64]{}, err
			}
			return sql.Null[float64]{V: math.Float64frombits(binary.LittleEndian.Uint64(f.raw)), Valid: true}, nil
		case f.Type.IsInteger():
			return f.intAsFloat()
		}
	}
	v, err := strconv.ParseFloat(string(f.raw), bits)
	if err != nil {
		return sql.Null[float64]{}, f.malformed("floating point number", err)
	}
	return sql.Null[float64]{V: v, Valid: true}, nil
}

func (f *Field) intAsFloat() (sql.Null[float64], error) {
	if f.Unsigned() {
		u, err := f.parseUint()
		return sql.Null[float64]{V: float64(u), Valid: err == nil}, err
	}
	v, err := f.parseInt()
	return sql.Null[float64]{V: float64(v), Valid: err == nil}, err
}

// Decimal returns the cell as an exact decimal. DECIMAL cells are always
// carried as text, so no precision is lost.
func (f *Field) Decimal() (decimal.NullDecimal, error) {
	if !f.Type.IsNumeric() {
		return decimal.NullDecimal{}, f.mismatch("Decimal")
	}
	if f.null {
		return decimal.NullDecimal{}, nil
	}
	if f.format == wire.FormatBinary {
		switch {
		case f.Type == wire.TypeFloat || f.Type == wire.TypeDouble:
			v, err := f.float(64)
			if err != nil {
				return decimal.NullDecimal{}, err
			}
			return decimal.NewNullDecimal(decimal.NewFromFloat(v.V)), nil
		case f.Type.IsInteger() && f.Unsigned():
			u, err := f.parseUint()
			if err != nil {
				return decimal.NullDecimal{}, err
			}
			return decimal.NewNullDecimal(decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)), nil
		case f.Type.IsInteger():
			v, err := f.parseInt()
			if err != nil {
				return decimal.NullDecimal{}, err
			}
			return decimal.NewNullDecimal(decimal.NewFromInt(v)), nil
		}
	}
	d, err := decimal.NewFromString(string(f.raw))
	if err != nil {
		return decimal.NullDecimal{}, f.malformed("decimal", err)
	}
	return decimal.NewNullDecimal(d), nil
}
