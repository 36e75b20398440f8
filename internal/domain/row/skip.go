// Package row describes why an input line was rejected by an import pass.
package row

import "fmt"

// SkipReason classifies a rejected input line.
type SkipReason string

// Skip reasons reported by the import passes.
const (
	ReasonTooFewColumns      SkipReason = "too_few_columns"
	ReasonMissingID          SkipReason = "missing_id"
	ReasonInvalidCoordinates SkipReason = "invalid_coordinates"
	ReasonMissingActivity    SkipReason = "missing_activity"
	ReasonMissingName        SkipReason = "missing_name"
	ReasonLineTooLong        SkipReason = "line_too_long"
)

// SkipError is a rejected line. It never aborts a pass.
type SkipError struct {
	Line   int
	Reason SkipReason
	Detail string
}

// Skip creates a SkipError for the given line.
func Skip(line int, reason SkipReason, format string, args ...any) *SkipError {
	return &SkipError{Line: line, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *SkipError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("line %d skipped: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d skipped: %s: %s", e.Line, e.Reason, e.Detail)
}
