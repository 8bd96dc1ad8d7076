// Package wire holds the column metadata and row buffers handed over by the
// protocol layer: MySQL/MariaDB field type tags, column flags, the charset
// table, and the text/binary row packet formats.
package wire

import "strconv"

// Type is the protocol-level field type tag of a result column.
// See https://mariadb.com/kb/en/result-set-packets/#field-types
type Type uint8

const (
	TypeDecimal    Type = 0
	TypeTiny       Type = 1
	TypeShort      Type = 2
	TypeLong       Type = 3
	TypeFloat      Type = 4
	TypeDouble     Type = 5
	TypeNull       Type = 6
	TypeTimestamp  Type = 7
	TypeLongLong   Type = 8
	TypeInt24      Type = 9
	TypeDate       Type = 10
	TypeTime       Type = 11
	TypeDateTime   Type = 12
	TypeYear       Type = 13
	TypeNewDate    Type = 14
	TypeVarchar    Type = 15
	TypeBit        Type = 16
	TypeJSON       Type = 245
	TypeNewDecimal Type = 246
	TypeEnum       Type = 247
	TypeSet        Type = 248
	TypeTinyBlob   Type = 249
	TypeMediumBlob Type = 250
	TypeLongBlob   Type = 251
	TypeBlob       Type = 252
	TypeVarString  Type = 253
	TypeString     Type = 254
	TypeGeometry   Type = 255
)

var typeNames = map[Type]string{
	TypeDecimal:    "DECIMAL",
	TypeTiny:       "TINY",
	TypeShort:      "SHORT",
	TypeLong:       "LONG",
	TypeFloat:      "FLOAT",
	TypeDouble:     "DOUBLE",
	TypeNull:       "NULL",
	TypeTimestamp:  "TIMESTAMP",
	TypeLongLong:   "LONGLONG",
	TypeInt24:      "INT24",
	TypeDate:       "DATE",
	TypeTime:       "TIME",
	TypeDateTime:   "DATETIME",
	TypeYear:       "YEAR",
	TypeNewDate:    "NEWDATE",
	TypeVarchar:    "VARCHAR",
	TypeBit:        "BIT",
	TypeJSON:       "JSON",
	TypeNewDecimal: "NEWDECIMAL",
	TypeEnum:       "ENUM",
	TypeSet:        "SET",
	TypeTinyBlob:   "TINY_BLOB",
	TypeMediumBlob: "MEDIUM_BLOB",
	TypeLongBlob:   "LONG_BLOB",
	TypeBlob:       "BLOB",
	TypeVarString:  "VAR_STRING",
	TypeString:     "STRING",
	TypeGeometry:   "GEOMETRY",
}

// String returns the protocol name of the tag, e.g. "VAR_STRING".
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// Known reports whether t is a tag the protocol layer can emit.
func Known(t Type) bool {
	_, ok := typeNames[t]
	return ok
}

// Types lists every known tag in ascending order.
func Types() []Type {
	out := make([]Type, 0, len(typeNames))
	for t := 0; t <= 255; t++ {
		if Known(Type(t)) {
			out = append(out, Type(t))
		}
	}
	return out
}

// IsInteger reports integer tags, YEAR included.
func (t Type) IsInteger() bool {
	switch t {
	case TypeTiny, TypeShort, TypeLong, TypeInt24, TypeLongLong, TypeYear:
		return true
	}
	return false
}

// IsNumeric reports integer, floating point and decimal tags.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeFloat, TypeDouble, TypeDecimal, TypeNewDecimal:
		return true
	}
	return t.IsInteger()
}

// IsDate reports tags carrying a calendar date, with or without time of day.
func (t Type) IsDate() bool {
	switch t {
	case TypeDate, TypeNewDate, TypeDateTime, TypeTimestamp:
		return true
	}
	return false
}

// IsString reports character/blob tags whose cells are plain byte strings.
func (t Type) IsString() bool {
	switch t {
	case TypeVarchar, TypeVarString, TypeString,
		TypeTinyBlob, TypeMediumBlob, TypeLongBlob, TypeBlob,
		TypeJSON, TypeEnum, TypeSet:
		return true
	}
	return false
}
