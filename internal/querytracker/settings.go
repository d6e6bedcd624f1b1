package querytracker

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ytsaurus/ytconsole/internal/numinput"
)

// NumericSettings are the engine settings entered through numeric inputs.
var NumericSettings = map[string]numinput.Field{
	"row_count_limit": {
		Min: numinput.Bound(1),
		Max: numinput.Bound(100000),
		Validator: func(v float64) string {
			if v != math.Trunc(v) {
				return "The value must be an integer"
			}
			return ""
		},
	},
	"memory_limit": {
		Format: numinput.Bytes,
		Min:    numinput.Bound(1 << 20),
	},
	"execution_timeout_sec": {
		Min: numinput.Bound(1),
	},
}

// SettingErrors maps a setting key to its inline validation message.
type SettingErrors map[string]string

// Keys returns the invalid keys in sorted order.
func (e SettingErrors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeSettings validates numeric settings and converts text values
// ("2 GiB", "100") to numbers. Non-numeric settings pass through untouched.
// The returned map is a copy; errors are reported per key, never as an error value.
func NormalizeSettings(settings Settings) (Settings, SettingErrors) {
	out := settings.Clone()
	errs := SettingErrors{}

	for key, field := range NumericSettings {
		raw, ok := out[key]
		if !ok || raw == nil {
			continue
		}

		v, msg := valueOf(field, raw)
		if msg == "" {
			msg = field.Error(v)
		}
		if msg != "" {
			errs[key] = msg
			continue
		}
		if v.Set {
			out[key] = v.V
		} else {
			delete(out, key)
		}
	}

	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}

// ParseSetting parses a single setting typed as text, e.g. in the REPL.
// Known numeric settings go through their input; other values are kept as text
// unless they look like a number or a boolean.
func ParseSetting(key, raw string) (any, string) {
	if field, ok := NumericSettings[key]; ok {
		v := numinput.NewInput(field).Change(raw)
		if v.Error != "" {
			return nil, v.Error
		}
		if !v.Set {
			return nil, ""
		}
		return v.V, ""
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b, ""
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, ""
	}
	return raw, ""
}

// FormatSetting renders a setting value for display.
func FormatSetting(key string, value any) string {
	if field, ok := NumericSettings[key]; ok {
		if f, ok := value.(float64); ok {
			return field.Display(numinput.Of(f))
		}
	}
	return fmt.Sprint(value)
}

func valueOf(field numinput.Field, raw any) (numinput.Value, string) {
	switch v := raw.(type) {
	case float64:
		return numinput.Of(v), ""
	case int:
		return numinput.Of(float64(v)), ""
	case int64:
		return numinput.Of(float64(v)), ""
	case string:
		return field.Parse(v), ""
	default:
		return numinput.Value{}, "wrong format"
	}
}
