package ui

import (
	"fmt"

	"github.com/fieldshift/fieldshift/internal/notice"
)

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

// Success returns a success message with checkmark symbol
func Success(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

// Successf returns a formatted success message with checkmark symbol
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error returns an error message with X symbol
func Error(msg string) string {
	return fmt.Sprintf("%s %s", SymbolError, msg)
}

// Warning returns a warning message with warning symbol
func Warning(msg string) string {
	return fmt.Sprintf("%s %s", SymbolWarning, msg)
}

// Info returns an info message with info symbol
func Info(msg string) string {
	return fmt.Sprintf("%s %s", SymbolInfo, msg)
}

// Notice renders a notice with the symbol for its status.
func Notice(n notice.Notice) string {
	switch n.Status {
	case notice.StatusSuccess:
		return Success(n.Message)
	case notice.StatusWarning:
		return Warning(n.Message)
	case notice.StatusError:
		return Error(n.Message)
	default:
		return Info(n.Message)
	}
}

// Header returns a styled section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// ID returns an accent-styled entity or term id
func ID(id int64) string {
	return Accent.Render(fmt.Sprintf("#%d", id))
}

// Hint returns muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// count returns a count badge (e.g., "(3 errors)")
func count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("(%d %s)", n, singular)
	}
	return fmt.Sprintf("(%d %s)", n, plural)
}

// ErrorWarningCounts returns a formatted count string like "(3 errors, 2 warnings)"
func ErrorWarningCounts(errors, warnings int) string {
	if errors > 0 && warnings > 0 {
		return fmt.Sprintf("(%d %s, %d %s)",
			errors, pluralize("error", errors),
			warnings, pluralize("warning", warnings))
	} else if errors > 0 {
		return count(errors, "error", "errors")
	}
	return count(warnings, "warning", "warnings")
}

func pluralize(singular string, count int) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}
