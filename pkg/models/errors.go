package models

import "fmt"

// InputError reports a caller mistake (non-positive usage, negative costs,
// out-of-range factors). It aborts the whole request.
type InputError struct {
	Field  string
	Detail string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// Severity grades an Issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue codes attached to results.
const (
	IssueExternalService      = "external_service"
	IssueNonPositiveSavings   = "non_positive_savings"
	IssuePaybackBeyondHorizon = "payback_beyond_horizon"
	IssueDiscardedDraws       = "discarded_draws"
	IssueNoViableOption       = "no_viable_option"
)

// Issue is a structured warning or error attributed to a result.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Option   string   `json:"option,omitempty"`
}

// Warning builds a warning Issue.
func Warning(code, option, format string, args ...any) Issue {
	return Issue{Code: code, Severity: SeverityWarning, Option: option, Message: fmt.Sprintf(format, args...)}
}

// Failure builds an error Issue.
func Failure(code, option, format string, args ...any) Issue {
	return Issue{Code: code, Severity: SeverityError, Option: option, Message: fmt.Sprintf(format, args...)}
}
