package document

import "fmt"

// TemplateError reports a template that cannot be merged into.
// It is fatal for the whole operation.
type TemplateError struct {
	Reason string
	Cause  error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid template: %s: %v", e.Reason, e.Cause)
	}
	return "invalid template: " + e.Reason
}

func (e *TemplateError) Unwrap() error { return e.Cause }

func templateError(reason string, cause error) error {
	return &TemplateError{Reason: reason, Cause: cause}
}
