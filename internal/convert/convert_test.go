package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepeaterToURL(t *testing.T) {
	r := NewRegistry()

	rows := []any{
		map[string]any{"url": "http://a"},
		map[string]any{"url": "http://b"},
	}
	assert.Equal(t, "http://a", r.Convert("repeater", "url", rows))

	noURL := []any{map[string]any{"link": "http://c"}}
	assert.Equal(t, noURL, r.Convert("repeater", "url", noURL))

	assert.Equal(t, "plain", r.Convert("repeater", "url", "plain"))
}

func TestRepeaterToURLHook(t *testing.T) {
	r := NewRegistry()
	r.SetRepeaterURLHook(func(v any) (any, bool) {
		rows, ok := v.([]any)
		if !ok || len(rows) == 0 {
			return nil, false
		}
		row, ok := rows[0].(map[string]any)
		if !ok {
			return nil, false
		}
		link, ok := row["link"]
		return link, ok
	})

	assert.Equal(t, "http://c", r.Convert("repeater", "url", []any{map[string]any{"link": "http://c"}}))

	declined := []any{map[string]any{"other": 1}}
	assert.Equal(t, declined, r.Convert("repeater", "url", declined))
}

func TestTextToNumber(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		in   any
		want float64
	}{
		{"42", 42},
		{" 42 ", 42},
		{"-3.5", -3.5},
		{"1e3", 1000},
		{"42abc", 0},
		{"", 0},
		{"0x1A", 0},
		{"Inf", 0},
		{float64(7), 7},
		{int64(9), 9},
		{true, 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Convert("text", "number", tt.in), "input %#v", tt.in)
	}
}

func TestNumberToText(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "42", r.Convert("number", "text", float64(42)))
	assert.Equal(t, "2.5", r.Convert("number", "text", float64(2.5)))
	assert.Equal(t, "7", r.Convert("number", "text", int64(7)))
}

func TestMarkdownToWysiwyg(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "<p><strong>bold</strong> move</p>\n", r.Convert("markdown", "wysiwyg", "**bold** move"))
	assert.Equal(t, 5, r.Convert("markdown", "wysiwyg", 5))
}

func TestUnregisteredPairIsNoop(t *testing.T) {
	r := NewRegistry()
	v := map[string]any{"k": "v"}
	assert.Equal(t, v, r.Convert("image", "select", v))
}

func TestRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register("text", "number", func(any) any { return float64(-1) })
	assert.Equal(t, float64(-1), r.Convert("text", "number", "42"))
}
