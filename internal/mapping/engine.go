package mapping

import (
	"errors"
	"fmt"

	"github.com/fieldshift/fieldshift/internal/convert"
	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/nested"
	"github.com/fieldshift/fieldshift/internal/notice"
)

// ErrInvalidArgument is returned for calls that cannot run at all.
var ErrInvalidArgument = errors.New("invalid argument")

// Engine applies mapping sets. It holds no state between Map calls.
type Engine struct {
	stores     fields.Set
	converters *convert.Registry

	// DryRun computes results without writing.
	DryRun bool
}

// NewEngine creates an engine over the given stores.
// A nil registry uses the built-in conversions.
func NewEngine(stores fields.Set, converters *convert.Registry) *Engine {
	if converters == nil {
		converters = convert.NewRegistry()
	}
	return &Engine{stores: stores, converters: converters}
}

// Map applies every rule of set from entityID to destID (0 means entityID).
// A failing rule never stops the remaining rules; only an invalid entity ID
// is returned as an error.
func (e *Engine) Map(entityID int64, set Set, merge bool, destID int64) (*Report, error) {
	if entityID <= 0 {
		return nil, fmt.Errorf("%w: source entity id must be positive, got %d", ErrInvalidArgument, entityID)
	}
	if destID < 0 {
		return nil, fmt.Errorf("%w: destination entity id must not be negative, got %d", ErrInvalidArgument, destID)
	}
	if destID == 0 {
		destID = entityID
	}

	report := &Report{SourceID: entityID, DestID: destID}
	for i, rule := range set {
		if rule.From.Key == "" || rule.To.Key == "" {
			report.Notices = append(report.Notices, notice.Warningf("rule %d skipped: empty key", i+1).WithCode(notice.CodeEmptyKey))
			continue
		}

		res, extra := e.apply(rule, entityID, destID, merge)
		report.Notices = append(report.Notices, extra...)
		report.Results = append(report.Results, res)
		report.Notices = append(report.Notices, res.Notice())
	}
	return report, nil
}

func (e *Engine) apply(rule Rule, src, dest int64, merge bool) (Result, []notice.Notice) {
	var extra []notice.Notice

	from, err := e.read(rule.From, src)
	if err != nil {
		if !errors.Is(err, fields.ErrNotFound) {
			extra = append(extra, notice.Warningf("could not read %s on entity %d: %v", rule.From, src, err).WithCode(notice.CodeReadFailed))
		}
		from = ""
	}

	current, err := e.read(rule.To, dest)
	if err != nil {
		current = ""
	}

	if merge && !IsEmpty(current) {
		return Result{Rule: rule, Status: StatusSkippedMerge, Value: current}, extra
	}

	value := from
	if rule.From.Kind == fields.KindManaged && rule.To.Kind == fields.KindManaged {
		fromType, toType := e.subtype(rule.From), e.subtype(rule.To)
		if fromType != toType {
			value = e.converters.Convert(fromType, toType, value)
		}
	}

	if nested.IsPath(rule.To.Key) {
		return Result{Rule: rule, Status: StatusSkippedError, Message: "nested destination keys are not writable"}, extra
	}

	st, err := e.stores.For(rule.To.Kind)
	if err != nil {
		return Result{Rule: rule, Status: StatusSkippedError, Message: err.Error()}, extra
	}

	if e.DryRun {
		return Result{Rule: rule, Status: StatusWritten, Value: value, DryRun: true}, extra
	}
	if err := st.Set(dest, rule.To.Key, value); err != nil {
		return Result{Rule: rule, Status: StatusSkippedError, Message: err.Error()}, extra
	}
	return Result{Rule: rule, Status: StatusWritten, Value: value}, extra
}

// read resolves a field spec on an entity, walking nested paths.
func (e *Engine) read(spec FieldSpec, entityID int64) (any, error) {
	st, err := e.stores.For(spec.Kind)
	if err != nil {
		return nil, err
	}
	if nested.IsPath(spec.Key) {
		return nested.Resolve(st, entityID, spec.Key, !spec.All)
	}
	return st.Get(entityID, spec.Key)
}

// subtype returns the declared type of a field: the spec's subtype, or the
// store's definition for plain keys.
func (e *Engine) subtype(spec FieldSpec) string {
	if spec.Subtype != "" {
		return spec.Subtype
	}
	if nested.IsPath(spec.Key) {
		return ""
	}
	st, err := e.stores.For(spec.Kind)
	if err != nil {
		return ""
	}
	if typed, ok := st.(fields.Typed); ok {
		if t, ok := typed.FieldType(spec.Key); ok {
			return t
		}
	}
	return ""
}

// IsEmpty reports whether a destination value counts as unset for merging:
// nil, "", "0", false, numeric zero, and empty lists or maps.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "0"
	case bool:
		return !x
	case float64:
		return x == 0
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}
