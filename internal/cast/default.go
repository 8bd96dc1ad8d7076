// Package cast turns decoded fields into application values. Default is the
// built-in mapping from wire type to Go value; a Setting at query or
// connection scope can replace it with a caller-supplied Func that receives
// the default conversion as a continuation.
package cast

import (
	"github.com/bgunnarsson/bincast/internal/decode"
	"github.com/bgunnarsson/bincast/internal/errors"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// Default converts f with the built-in table:
//
//	TINY SHORT LONG INT24 YEAR          int64
//	LONGLONG                            int64, uint64 when unsigned
//	FLOAT                               float32
//	DOUBLE                              float64
//	DECIMAL NEWDECIMAL                  decimal.Decimal
//	DATE NEWDATE DATETIME TIMESTAMP     time.Time (zero dates are nil)
//	TIME                                time.Duration
//	BIT GEOMETRY                        []byte
//	JSON ENUM SET                       string
//	VARCHAR VAR_STRING STRING *BLOB     string, []byte when binary
//	NULL                                nil
//
// SQL NULL is nil for every type. TINY is never turned into a bool,
// whatever its declared length.
func Default(f *decode.Field) (any, error) {
	if f.IsNull() {
		return nil, nil
	}
	conv, ok := table[f.Type]
	if !ok {
		return nil, &errors.E{Kind: errors.TypeMismatch, Column: f.Name, Message: "no default conversion for " + f.Type.String()}
	}
	return conv(f)
}

type converter func(f *decode.Field) (any, error)

// table is built once and never written again.
var table = map[wire.Type]converter{
	wire.TypeTiny:       toInt,
	wire.TypeShort:      toInt,
	wire.TypeLong:       toInt,
	wire.TypeInt24:      toInt,
	wire.TypeYear:       toInt,
	wire.TypeLongLong:   toLongLong,
	wire.TypeFloat:      toFloat,
	wire.TypeDouble:     toDouble,
	wire.TypeDecimal:    toDecimal,
	wire.TypeNewDecimal: toDecimal,
	wire.TypeDate:       toDate,
	wire.TypeNewDate:    toDate,
	wire.TypeDateTime:   toDateTime,
	wire.TypeTimestamp:  toDateTime,
	wire.TypeTime:       toTime,
	wire.TypeBit:        toBytes,
	wire.TypeGeometry:   toBytes,
	wire.TypeJSON:       toText,
	wire.TypeEnum:       toText,
	wire.TypeSet:        toText,
	wire.TypeVarchar:    toString,
	wire.TypeVarString:  toString,
	wire.TypeString:     toString,
	wire.TypeTinyBlob:   toString,
	wire.TypeMediumBlob: toString,
	wire.TypeLongBlob:   toString,
	wire.TypeBlob:       toString,
	wire.TypeNull:       func(*decode.Field) (any, error) { return nil, nil },
}

func toInt(f *decode.Field) (any, error) {
	v, err := f.Int()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toLongLong(f *decode.Field) (any, error) {
	if !f.Unsigned() {
		return toInt(f)
	}
	v, err := f.Uint()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toFloat(f *decode.Field) (any, error) {
	v, err := f.Float()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toDouble(f *decode.Field) (any, error) {
	v, err := f.Double()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toDecimal(f *decode.Field) (any, error) {
	v, err := f.Decimal()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.Decimal, nil
}

func toDate(f *decode.Field) (any, error) {
	v, err := f.Date()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toDateTime(f *decode.Field) (any, error) {
	v, err := f.DateTime()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toTime(f *decode.Field) (any, error) {
	v, err := f.Time()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toBytes(f *decode.Field) (any, error) {
	return f.Buffer(), nil
}

func toText(f *decode.Field) (any, error) {
	v, err := f.Text()
	if err != nil || !v.Valid {
		return nil, err
	}
	return v.V, nil
}

func toString(f *decode.Field) (any, error) {
	if f.Binary() {
		return toBytes(f)
	}
	return toText(f)
}
