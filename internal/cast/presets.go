package cast

import (
	"sort"
	"strings"

	"github.com/bgunnarsson/bincast/internal/decode"
	"github.com/bgunnarsson/bincast/internal/wire"
)

// Named overrides selectable from flags and the config file.
var presets = map[string]Func{
	"tinybool":   TinyToBool,
	"changecase": ChangeCase,
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TinyToBool maps TINY columns declared with length 1 (TINYINT(1)) to bool:
// 1 is true, anything else false, NULL stays nil. Every other column gets
// the default conversion.
func TinyToBool(f *decode.Field, next Next) (any, error) {
	if f.Type != wire.TypeTiny || f.Length != 1 {
		return next()
	}
	v, err := f.Int()
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	return v.V == 1, nil
}

// ChangeCase upper-cases VAR_STRING columns whose name starts with "upp" and
// lower-cases those starting with "low". Other text passes through; other
// types get the default conversion.
func ChangeCase(f *decode.Field, next Next) (any, error) {
	if f.Type != wire.TypeVarString {
		return next()
	}
	v, err := f.Text()
	if err != nil || !v.Valid {
		return nil, err
	}
	switch {
	case strings.HasPrefix(f.Name, "upp"):
		return strings.ToUpper(v.V), nil
	case strings.HasPrefix(f.Name, "low"):
		return strings.ToLower(v.V), nil
	}
	return v.V, nil
}
