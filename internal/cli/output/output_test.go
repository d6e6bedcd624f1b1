package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{"auto on tty", ModeAuto, true, ModeTable},
		{"auto piped", ModeAuto, false, ModeJSON},
		{"empty means auto", "", false, ModeJSON},
		{"explicit table piped", ModeTable, false, ModeTable},
		{"explicit yaml on tty", ModeYAML, true, ModeYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	v := map[string]any{"id": "q1", "state": "running"}

	t.Run("json", func(t *testing.T) {
		out := &bytes.Buffer{}
		r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeJSON)
		require.NoError(t, r.Render(v, func() { t.Fatal("table must not be used") }))
		assert.JSONEq(t, `{"id":"q1","state":"running"}`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		out := &bytes.Buffer{}
		r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeYAML)
		require.NoError(t, r.Render(v, func() { t.Fatal("table must not be used") }))
		assert.Equal(t, "id: q1\nstate: running\n", out.String())
	})

	t.Run("table", func(t *testing.T) {
		called := false
		r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, true, ModeAuto)
		require.NoError(t, r.Render(v, func() { called = true }))
		assert.True(t, called)
	})
}

func TestRenderer_Table(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeTable)
	version := "23.2.1"

	r.Table([]string{"CLUSTER", "VERSION"}, [][]any{
		{"hahn", &version},
		{"freud", (*string)(nil)},
	})

	text := out.String()
	assert.Contains(t, text, "CLUSTER")
	assert.Contains(t, text, "23.2.1")
	lines := strings.Split(text, "\n")
	var freud string
	for _, l := range lines {
		if strings.Contains(l, "freud") {
			freud = l
		}
	}
	assert.Contains(t, freud, "-", "missing values render as a dash")
}

func TestRenderer_EmptyTable(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeTable)
	r.Table([]string{"A"}, nil)
	assert.Equal(t, "(0 rows)\n", out.String())
}

func TestRenderer_NoANSIWithoutTTY(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	r := NewRendererWithTTY(out, errOut, false, ModeAuto)

	r.Header(1, "Clusters")
	r.Success("done")
	r.Muted("note")
	r.Warning("careful")
	r.Error("broken")

	assert.Equal(t, "Clusters\n✓ done\nnote\n", out.String())
	assert.Equal(t, "! careful\n✗ broken\n", errOut.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestStyles_StatusStyle(t *testing.T) {
	s := NewStyles(&bytes.Buffer{}, false)
	assert.Equal(t, "completed", s.StatusStyle("completed").Render("completed"))
	assert.Equal(t, "x", s.StatusStyle("unknown").Render("x"))
}
