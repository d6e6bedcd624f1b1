// Package numinput parses, formats and validates numeric user input.
//
// Input keeps the derived display state of a numeric field (raw text, parsed
// value, validation error, pretty value) and recomputes it through explicit
// calls instead of a rendering lifecycle.
package numinput

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// Format selects how values are parsed and displayed.
type Format string

// Supported formats.
const (
	Number Format = "Number"
	Bytes  Format = "Bytes"
)

// Value is a possibly unset number. NaN marks input that could not be parsed.
type Value struct {
	V     float64
	Set   bool
	Error string // error supplied from outside, takes precedence over validation
}

// Of returns a set Value.
func Of(v float64) Value {
	return Value{V: v, Set: true}
}

// IsNaN reports whether the value is set but not a number.
func (v Value) IsNaN() bool {
	return v.Set && math.IsNaN(v.V)
}

// ParseValue parses raw user input. Empty input yields an unset value,
// whitespace is ignored and unparseable input yields NaN.
func ParseValue(raw string, format Format) Value {
	if raw == "" {
		return Value{}
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if format == Bytes {
		n, err := humanize.ParseBytes(compact)
		if err != nil {
			return Of(math.NaN())
		}
		return Of(float64(n))
	}

	if compact == "" {
		// Number("  ") is 0
		return Of(0)
	}
	f, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return Of(math.NaN())
	}
	return Of(f)
}

// FormatValue renders v for display. Unset and NaN values render as "".
func FormatValue(v Value, format Format, digits int) string {
	if !v.Set || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return ""
	}
	if format == Bytes {
		if v.V < 0 {
			return "-" + humanize.IBytes(uint64(-v.V))
		}
		return humanize.IBytes(uint64(v.V))
	}
	if digits <= 0 {
		digits = 2
	}
	return humanize.CommafWithDigits(v.V, digits)
}

// Field describes the constraints of one numeric input.
type Field struct {
	Format        Format
	DecimalPlaces int
	Min           *float64
	Max           *float64
	// Validator returns an error message or "".
	Validator func(v float64) string
}

// Bound is a convenience for building Min/Max.
func Bound(v float64) *float64 {
	return &v
}

// Error validates v and returns the message to show inline, or "".
// Checks run in order: explicit error, unset, NaN, validator, min, max.
func (f Field) Error(v Value) string {
	if v.Error != "" {
		return v.Error
	}
	if !v.Set {
		return ""
	}
	if math.IsNaN(v.V) {
		return "wrong format"
	}
	if msg := f.runValidator(v.V); msg != "" {
		return msg
	}
	if f.Min != nil && v.V < *f.Min {
		return fmt.Sprintf("The value must be ≥ %s", f.format(*f.Min))
	}
	if f.Max != nil && v.V > *f.Max {
		return fmt.Sprintf("The value must be ≤ %s", f.format(*f.Max))
	}
	return ""
}

func (f Field) runValidator(v float64) (msg string) {
	if f.Validator == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprint(r)
		}
	}()
	return f.Validator(v)
}

func (f Field) format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Parse parses raw input according to the field format.
func (f Field) Parse(raw string) Value {
	return ParseValue(raw, f.Format)
}

// Display renders v according to the field format.
func (f Field) Display(v Value) string {
	return FormatValue(v, f.Format, f.DecimalPlaces)
}

// Input is the derived state of a numeric input box.
type Input struct {
	Field Field

	raw         string
	parsed      Value
	err         string
	formatted   string
	initialized bool
}

// NewInput creates an Input for the field.
func NewInput(f Field) *Input {
	return &Input{Field: f}
}

// Derive recomputes derived state from an externally supplied value.
// Only the first call takes effect: once the input has been initialized or
// edited, the raw text typed by the user is kept.
func (in *Input) Derive(v Value, preciseRaw bool) {
	if in.initialized {
		return
	}
	in.formatted = in.Field.Display(v)
	in.parsed = v
	in.err = in.Field.Error(v)
	if preciseRaw {
		in.raw = rawOf(v)
	} else {
		in.raw = in.formatted
	}
	in.initialized = true
}

// Change applies new raw text and returns the parsed value with its error.
func (in *Input) Change(raw string) Value {
	v := in.Field.Parse(raw)
	in.raw = raw
	in.parsed = v
	in.err = in.Field.Error(v)
	in.formatted = in.Field.Display(v)
	in.initialized = true

	v.Error = in.err
	return v
}

// Raw returns the text as typed.
func (in *Input) Raw() string { return in.raw }

// Value returns the parsed value.
func (in *Input) Value() Value { return in.parsed }

// Err returns the current validation message.
func (in *Input) Err() string { return in.err }

// Text returns what the box shows: raw text while focused, the pretty value otherwise.
func (in *Input) Text(focused bool) string {
	if focused {
		return in.raw
	}
	return in.formatted
}

func rawOf(v Value) string {
	if !v.Set {
		return ""
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}
