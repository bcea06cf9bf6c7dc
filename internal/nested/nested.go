// Package nested resolves slash-delimited paths into repeater and flexible-content
// field values.
//
// The first path segment names a top-level field read from a fields.Store. Any
// further segments walk into the rows of that field. Rows carrying a "layout"
// discriminator are flexible rows: only rows whose layout equals the next segment
// are visited, and that segment is consumed. Other rows are uniform and every row
// is walked with the full remaining path.
package nested

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fieldshift/fieldshift/internal/fields"
)

// LayoutKey is the discriminator key of flexible rows.
const LayoutKey = "layout"

// Row shapes reported in NotFoundError.
const (
	ShapeFlexible = "flexible"
	ShapeUniform  = "uniform"
)

// ErrEmptyPath is returned for an empty path. It matches fields.ErrNotFound.
var ErrEmptyPath = fmt.Errorf("empty path: %w", fields.ErrNotFound)

// NotFoundError reports that no row resolved the path.
type NotFoundError struct {
	Field string
	Path  string
	Shape string
}

func (e *NotFoundError) Error() string {
	if e.Shape == "" {
		return fmt.Sprintf("field '%s' has no rows to resolve '%s'", e.Field, e.Path)
	}
	return fmt.Sprintf("no %s row of field '%s' resolved '%s'", e.Shape, e.Field, e.Path)
}

// Is makes NotFoundError match fields.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == fields.ErrNotFound
}

// IsPath reports whether key addresses a nested value rather than a plain field.
func IsPath(key string) bool {
	return strings.Contains(key, "/")
}

// Resolve reads path from an entity. With firstOnly the first resolved row value is
// returned; otherwise all resolved values are returned as a []any.
func Resolve(st fields.Store, entityID int64, path string, firstOnly bool) (any, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	segments := strings.Split(path, "/")

	root, err := st.Get(entityID, segments[0])
	if err != nil {
		return nil, err
	}
	return Walk(segments[0], root, segments[1:], firstOnly)
}

// Walk resolves the remaining segments against an already-fetched field value.
func Walk(field string, root any, rest []string, firstOnly bool) (any, error) {
	if len(rest) == 0 {
		return root, nil
	}
	path := field + "/" + strings.Join(rest, "/")

	rows, ok := root.([]any)
	if !ok || len(rows) == 0 {
		return nil, &NotFoundError{Field: field, Path: path}
	}

	shape := ShapeUniform
	if first, ok := rows[0].(map[string]any); ok {
		if _, ok := first[LayoutKey]; ok {
			shape = ShapeFlexible
		}
	}

	var found []any
	for _, row := range rows {
		segs := rest
		if shape == ShapeFlexible {
			m, ok := row.(map[string]any)
			if !ok {
				continue
			}
			if l, ok := m[LayoutKey]; !ok || fmt.Sprint(l) != segs[0] {
				continue
			}
			segs = segs[1:]
		}

		v, err := lookup(row, segs)
		if err != nil {
			continue
		}
		if firstOnly {
			return v, nil
		}
		found = append(found, v)
	}

	if len(found) == 0 {
		return nil, &NotFoundError{Field: field, Path: path, Shape: shape}
	}
	return found, nil
}

var errMissingKey = errors.New("missing key")

// lookup walks segments by successive key lookup. Numeric segments index lists.
func lookup(v any, segments []string) (any, error) {
	cur := v
	for _, seg := range segments {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, errMissingKey
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, errMissingKey
			}
			cur = node[i]
		default:
			return nil, errMissingKey
		}
	}
	return cur, nil
}
