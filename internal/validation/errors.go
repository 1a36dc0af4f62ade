package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation is matched by every field-level validation failure.
var ErrValidation = errors.New("validation failed")

// FieldError is a single failed field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Errors maps form field names to the message of their first failing rule.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error { return ErrValidation }

// Form collects the verdicts of one form submission. Every field is checked,
// so the caller can highlight all invalid inputs at once.
type Form struct {
	errs Errors
}

// Check validates value as field and records a failure under key.
func (f *Form) Check(key string, field Field, value, reference string) bool {
	v := Check(field, value, reference)
	if !v.Valid {
		f.Add(key, v.Message)
	}
	return v.Valid
}

// Add records a failure that was decided outside the rule table.
func (f *Form) Add(key, message string) {
	if f.errs == nil {
		f.errs = Errors{}
	}
	if _, exists := f.errs[key]; !exists {
		f.errs[key] = message
	}
}

// Err returns the collected failures, or nil if every check passed.
func (f *Form) Err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}
