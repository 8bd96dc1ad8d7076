package cast

import (
	"fmt"
	"strings"

	"github.com/bgunnarsson/bincast/internal/decode"
	"github.com/bgunnarsson/bincast/internal/errors"
)

// Next performs the default conversion of the field being cast.
type Next func() (any, error)

// Func is a caller-supplied cast. It may inspect f, call its accessors, and
// call next zero or more times to get the default conversion. It runs inside
// the row decode step: a Func that blocks stalls the rest of the result set.
type Func func(f *decode.Field, next Next) (any, error)

type mode uint8

const (
	modeUnset mode = iota
	modeDisabled
	modeEnabled
	modeCustom
)

// Setting is the typeCast configuration at one scope. The zero value is
// Unset, meaning "defer to the next scope".
type Setting struct {
	mode mode
	fn   Func
	name string
}

var (
	// Unset defers to the enclosing scope.
	Unset = Setting{}
	// Disabled is typeCast=false: the default table only.
	Disabled = Setting{mode: modeDisabled}
	// Enabled is typeCast=true: the default table, stated explicitly. Used to
	// switch a connection-level override off for one query.
	Enabled = Setting{mode: modeEnabled}
)

// Custom wraps fn as an override. A nil fn is Unset.
func Custom(fn Func) Setting {
	if fn == nil {
		return Unset
	}
	return Setting{mode: modeCustom, fn: fn}
}

// IsSet reports whether the setting was given at its scope.
func (s Setting) IsSet() bool { return s.mode != modeUnset }

func (s Setting) String() string {
	switch s.mode {
	case modeDisabled:
		return "false"
	case modeEnabled:
		return "true"
	case modeCustom:
		if s.name != "" {
			return s.name
		}
		return "custom"
	}
	return ""
}

// ParseSetting reads the textual form used by flags and the config file:
// "" (unset), "true", "false", or the name of a preset.
func ParseSetting(s string) (Setting, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return Unset, nil
	case "true", "1", "on":
		return Enabled, nil
	case "false", "0", "off":
		return Disabled, nil
	default:
		fn, ok := presets[v]
		if !ok {
			return Unset, fmt.Errorf("unknown type cast %q (want true, false or one of %s)", s, strings.Join(PresetNames(), ", "))
		}
		return Setting{mode: modeCustom, fn: fn, name: v}, nil
	}
}

// Chain is the effective cast for one query. It is resolved before the first
// row is decoded and does not change while the result set is read.
type Chain struct {
	override Func
	source   string
}

// Resolve picks the effective cast: the query setting when it is set,
// otherwise the connection setting. Only a Custom setting installs an
// override; Enabled, Disabled and Unset all mean the default table.
func Resolve(query, conn Setting) Chain {
	s := conn
	scope := "connection"
	if query.IsSet() {
		s, scope = query, "query"
	}
	if s.mode != modeCustom {
		return Chain{source: "default"}
	}
	return Chain{override: s.fn, source: scope}
}

// Overridden reports whether a caller-supplied Func is in effect.
func (c Chain) Overridden() bool { return c.override != nil }

// Source names where the effective cast came from: "default", "query" or "connection".
func (c Chain) Source() string {
	if c.source == "" {
		return "default"
	}
	return c.source
}

// Cast converts one field. Without an override this is Default. With one, the
// override gets a next that runs Default for f; next memoizes, so repeated
// calls return the same value and error without decoding twice. Errors
// returned by the override are wrapped as override_error and keep their cause.
func (c Chain) Cast(f *decode.Field) (any, error) {
	if c.override == nil {
		return Default(f)
	}
	var (
		done   bool
		memo   any
		memErr error
	)
	next := func() (any, error) {
		if !done {
			memo, memErr = Default(f)
			done = true
		}
		return memo, memErr
	}
	v, err := c.override(f, next)
	if err != nil {
		return nil, &errors.E{Kind: errors.Override, Column: f.Name, Err: err}
	}
	return v, nil
}
