package decode

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/bgunnarsson/bincast/internal/wire"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05.999999"
)

// Date returns the calendar date of the cell at midnight in the field's
// location. MySQL zero dates ("0000-00-00") come back as NULL.
func (f *Field) Date() (sql.Null[time.Time], error) {
	if !f.Type.IsDate() {
		return sql.Null[time.Time]{}, f.mismatch("Date")
	}
	v, err := f.dateTime()
	if err != nil || !v.Valid {
		return v, err
	}
	y, m, d := v.V.Date()
	return sql.Null[time.Time]{V: time.Date(y, m, d, 0, 0, 0, 0, f.loc), Valid: true}, nil
}

// DateTime returns the cell as a point in time in the field's location.
// MySQL zero dates come back as NULL.
func (f *Field) DateTime() (sql.Null[time.Time], error) {
	if !f.Type.IsDate() {
		return sql.Null[time.Time]{}, f.mismatch("DateTime")
	}
	return f.dateTime()
}

func (f *Field) dateTime() (sql.Null[time.Time], error) {
	if f.null {
		return sql.Null[time.Time]{}, nil
	}
	if f.format == wire.FormatBinary {
		return f.binaryDateTime()
	}
	s := string(f.raw)
	if len(s) >= 10 && s[:10] == "0000-00-00" {
		return sql.Null[time.Time]{}, nil
	}
	layout := dateTimeLayout
	if len(s) == len(dateLayout) {
		layout = dateLayout
	}
	t, err := time.ParseInLocation(layout, s, f.loc)
	if err != nil {
		return sql.Null[time.Time]{}, f.malformed(f.Type.String(), err)
	}
	return sql.Null[time.Time]{V: t, Valid: true}, nil
}

// binaryDateTime decodes year(2) month day [hour minute second [micro(4)]].
func (f *Field) binaryDateTime() (sql.Null[time.Time], error) {
	p := f.raw
	switch len(p) {
	case 0:
		return sql.Null[time.Time]{}, nil
	case 4, 7, 11:
	default:
		return sql.Null[time.Time]{}, f.malformed(f.Type.String(), fmt.Errorf("binary cell is %d bytes", len(p)))
	}
	year := int(binary.LittleEndian.Uint16(p))
	month, day := int(p[2]), int(p[3])
	if year == 0 && month == 0 && day == 0 {
		return sql.Null[time.Time]{}, nil
	}
	var hour, minute, sec, micro int
	if len(p) >= 7 {
		hour, minute, sec = int(p[4]), int(p[5]), int(p[6])
	}
	if len(p) == 11 {
		micro = int(binary.LittleEndian.Uint32(p[7:]))
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 || micro > 999999 {
		return sql.Null[time.Time]{}, f.malformed(f.Type.String(), fmt.Errorf("out of range components %v", p))
	}
	return sql.Null[time.Time]{V: time.Date(year, time.Month(month), day, hour, minute, sec, micro*1000, f.loc), Valid: true}, nil
}

// Time returns a TIME cell as a duration. MySQL TIME values range over
// -838:59:59 to 838:59:59, so they are not times of day.
func (f *Field) Time() (sql.Null[time.Duration], error) {
	if f.Type != wire.TypeTime {
		return sql.Null[time.Duration]{}, f.mismatch("Time")
	}
	if f.null {
		return sql.Null[time.Duration]{}, nil
	}
	if f.format == wire.FormatBinary {
		return f.binaryTime()
	}
	d, err := parseTextTime(f.raw)
	if err != nil {
		return sql.Null[time.Duration]{}, f.malformed("TIME", err)
	}
	return sql.Null[time.Duration]{V: d, Valid: true}, nil
}

// parseTextTime parses [-]H+:MM:SS[.ffffff].
func parseTextTime(p []byte) (time.Duration, error) {
	neg := len(p) > 0 && p[0] == '-'
	if neg {
		p = p[1:]
	}
	parts := bytes.Split(p, []byte{':'})
	if len(parts) != 3 {
		return 0, fmt.Errorf("want H:MM:SS, got %q", p)
	}
	secPart, frac, _ := bytes.Cut(parts[2], []byte{'.'})
	h, err := strconv.ParseUint(string(parts[0]), 10, 32)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseUint(string(parts[1]), 10, 8)
	if err != nil || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("bad minutes %q", parts[1])
	}
	s, err := strconv.ParseUint(string(secPart), 10, 8)
	if err != nil || s > 59 || len(secPart) != 2 {
		return 0, fmt.Errorf("bad seconds %q", secPart)
	}
	var micro uint64
	if len(frac) > 0 {
		if len(frac) > 6 {
			return 0, fmt.Errorf("fraction %q has more than 6 digits", frac)
		}
		micro, err = strconv.ParseUint(string(frac), 10, 32)
		if err != nil {
			return 0, err
		}
		for i := len(frac); i < 6; i++ {
			micro *= 10
		}
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(micro)*time.Microsecond
	if neg {
		d = -d
	}
	return d, nil
}

// binaryTime decodes negative(1) days(4) hour minute second [micro(4)].
func (f *Field) binaryTime() (sql.Null[time.Duration], error) {
	p := f.raw
	switch len(p) {
	case 0:
		return sql.Null[time.Duration]{Valid: true}, nil
	case 8, 12:
	default:
		return sql.Null[time.Duration]{}, f.malformed("TIME", fmt.Errorf("binary cell is %d bytes", len(p)))
	}
	days := binary.LittleEndian.Uint32(p[1:])
	d := time.Duration(days)*24*time.Hour +
		time.Duration(p[5])*time.Hour + time.Duration(p[6])*time.Minute + time.Duration(p[7])*time.Second
	if len(p) == 12 {
		d += time.Duration(binary.LittleEndian.Uint32(p[8:])) * time.Microsecond
	}
	if p[0] == 1 {
		d = -d
	}
	return sql.Null[time.Duration]{V: d, Valid: true}, nil
}

// formatTime renders a TIME duration the way the server does in text rows.
func formatTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	us := (d % time.Second) / time.Microsecond
	if us != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d.%06d", sign, h, m, s, us)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
