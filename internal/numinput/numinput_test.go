package numinput

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		format  Format
		wantSet bool
		wantNaN bool
		want    float64
	}{
		{"empty is unset", "", Number, false, false, 0},
		{"integer", "42", Number, true, false, 42},
		{"spaces stripped", "1 000 000", Number, true, false, 1000000},
		{"float", "3.5", Number, true, false, 3.5},
		{"garbage", "abc", Number, true, true, 0},
		{"bytes", "1 KiB", Bytes, true, false, 1024},
		{"bytes MB", "2MB", Bytes, true, false, 2000000},
		{"bytes garbage", "lots", Bytes, true, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseValue(tt.raw, tt.format)
			assert.Equal(t, tt.wantSet, v.Set)
			assert.Equal(t, tt.wantNaN, v.IsNaN())
			if tt.wantSet && !tt.wantNaN {
				assert.InDelta(t, tt.want, v.V, 0.0001)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(Value{}, Number, 0))
	assert.Equal(t, "", FormatValue(Of(math.NaN()), Number, 0))
	assert.Equal(t, "1,234,567", FormatValue(Of(1234567), Number, 0))
	assert.Equal(t, "1.5", FormatValue(Of(1.5), Number, 2))
	assert.Equal(t, "1.0 KiB", FormatValue(Of(1024), Bytes, 0))
}

func TestField_Error(t *testing.T) {
	field := Field{
		Min: Bound(1),
		Max: Bound(100),
		Validator: func(v float64) string {
			if v == 13 {
				return "unlucky"
			}
			if v == 66 {
				panic("validator exploded")
			}
			return ""
		},
	}

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"explicit error wins", Value{V: 5, Set: true, Error: "from server"}, "from server"},
		{"unset is fine", Value{}, ""},
		{"nan", Of(math.NaN()), "wrong format"},
		{"validator", Of(13), "unlucky"},
		{"validator panic", Of(66), "validator exploded"},
		{"below min", Of(0), "The value must be ≥ 1"},
		{"above max", Of(101), "The value must be ≤ 100"},
		{"ok", Of(50), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, field.Error(tt.value))
		})
	}
}

func TestInput_DeriveOnlyUntilEdited(t *testing.T) {
	in := NewInput(Field{Min: Bound(10)})

	in.Derive(Of(5), false)
	assert.Equal(t, "5", in.Text(false))
	assert.Equal(t, "The value must be ≥ 10", in.Err())

	// A second external value is ignored once initialized.
	in.Derive(Of(50), false)
	assert.Equal(t, float64(5), in.Value().V)

	v := in.Change("12")
	assert.Equal(t, float64(12), v.V)
	assert.Empty(t, v.Error)
	assert.Equal(t, "12", in.Raw())
	assert.Empty(t, in.Err())
}

func TestInput_PreciseRaw(t *testing.T) {
	in := NewInput(Field{Format: Bytes})
	in.Derive(Of(1536), true)

	assert.Equal(t, "1536", in.Text(true))
	assert.Equal(t, "1.5 KiB", in.Text(false))
}

func TestInput_ChangeReportsError(t *testing.T) {
	in := NewInput(Field{})
	v := in.Change("x1")
	assert.True(t, v.IsNaN())
	assert.Equal(t, "wrong format", v.Error)
	assert.Equal(t, "", in.Text(false))
}
