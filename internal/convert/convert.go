// Package convert holds the conversions applied when a value moves between two
// managed fields of different types.
package convert

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/yuin/goldmark"
)

// Func converts a value. It must not mutate its input.
type Func func(value any) any

// Hook gets a chance to convert a value the built-in logic could not handle.
// Returning false declines, leaving the value unchanged.
type Hook func(value any) (any, bool)

// Registry looks conversions up by exact "old:new" type pair.
// Unregistered pairs pass values through unchanged.
type Registry struct {
	funcs       map[string]Func
	repeaterURL Hook
	markdown    goldmark.Markdown
}

// NewRegistry returns a registry with the built-in conversions.
func NewRegistry() *Registry {
	r := &Registry{
		funcs:    make(map[string]Func),
		markdown: goldmark.New(),
	}
	r.Register("repeater", "url", r.repeaterToURL)
	r.Register("text", "number", textToNumber)
	r.Register("number", "text", numberToText)
	r.Register("markdown", "wysiwyg", r.markdownToHTML)
	return r
}

func key(from, to string) string {
	return from + ":" + to
}

// Register adds or replaces the conversion for a type pair.
func (r *Registry) Register(from, to string, fn Func) {
	r.funcs[key(from, to)] = fn
}

// SetRepeaterURLHook installs the fallback used by repeater -> url when the first
// row has no url column.
func (r *Registry) SetRepeaterURLHook(h Hook) {
	r.repeaterURL = h
}

// Convert applies the conversion registered for from:to.
func (r *Registry) Convert(from, to string, value any) any {
	fn, ok := r.funcs[key(from, to)]
	if !ok {
		return value
	}
	return fn(value)
}

func (r *Registry) repeaterToURL(value any) any {
	if rows, ok := value.([]any); ok && len(rows) > 0 {
		if first, ok := rows[0].(map[string]any); ok {
			if url, ok := first["url"]; ok {
				return url
			}
		}
	}
	if r.repeaterURL != nil {
		if v, ok := r.repeaterURL(value); ok {
			return v
		}
	}
	return value
}

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// textToNumber returns the numeric value of a strictly numeric string, else 0.
// "42" -> 42, " 42 " -> 42, "42abc" -> 0, "0x1A" -> 0.
func textToNumber(value any) any {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if !numericPattern.MatchString(s) {
			return float64(0)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case bool, nil:
		return float64(0)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return float64(0)
	}
	return f
}

func numberToText(value any) any {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return value
	}
	return s
}

func (r *Registry) markdownToHTML(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(s), &buf); err != nil {
		return value
	}
	return buf.String()
}
