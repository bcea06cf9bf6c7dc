// Package notice defines the one-line status messages every migration step reports.
package notice

import "fmt"

// Status is the severity of a notice.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Codes classify warning and error notices for scripted consumers.
const (
	CodeMergeKept       = "MERGE_KEPT"
	CodeRuleSkipped     = "RULE_SKIPPED"
	CodeEmptyKey        = "EMPTY_KEY"
	CodeReadFailed      = "READ_FAILED"
	CodeTermReused      = "TERM_REUSED"
	CodeTermFailed      = "TERM_FAILED"
	CodeNothingToAssign = "NOTHING_TO_ASSIGN"
	CodeAssignFailed    = "ASSIGN_FAILED"
	CodeUnchanged       = "UNCHANGED"
	CodeEntityFailed    = "ENTITY_FAILED"
)

// Notice is one reportable line: {status, message}, plus a code for
// warnings and errors.
type Notice struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WithCode returns a copy of n carrying code.
func (n Notice) WithCode(code string) Notice {
	n.Code = code
	return n
}

func Successf(format string, args ...any) Notice {
	return Notice{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

func Warningf(format string, args ...any) Notice {
	return Notice{Status: StatusWarning, Message: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...any) Notice {
	return Notice{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Counts tallies notices by status.
func Counts(notices []Notice) (success, warning, errs int) {
	for _, n := range notices {
		switch n.Status {
		case StatusSuccess:
			success++
		case StatusWarning:
			warning++
		case StatusError:
			errs++
		}
	}
	return success, warning, errs
}
