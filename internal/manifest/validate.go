package manifest

import (
	"fmt"
	"strings"
)

// Validation error codes (E300-E399)
const (
	ErrNoObjects        = "E300" // manifest has no objects
	ErrMissingName      = "E301" // name is required
	ErrMissingCheck     = "E302" // check or shorthand is required
	ErrConflictingCheck = "E303" // more than one of check/shorthand set
	ErrUnknownKind      = "E304" // kind is not bool, exists or absent
	ErrEmptyMeet        = "E305" // at least one meet statement required
	ErrInvalidColumn    = "E306" // column shorthand must be table.column
	ErrKindShorthand    = "E307" // shorthand only supports kind bool
	ErrBlankStatement   = "E308" // meet statement is blank
)

// ValidationError is a problem with one manifest object.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found in a document.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the document and returns all errors found (does not
// fail-fast). Object names may repeat.
func Validate(d *Document) []ValidationError {
	if len(d.Objects) == 0 {
		return []ValidationError{{
			Field:   "objects",
			Message: "at least one object is required",
			Code:    ErrNoObjects,
		}}
	}

	var errs []ValidationError
	for i := range d.Objects {
		errs = append(errs, validateObject(&d.Objects[i], fmt.Sprintf("objects[%d]", i))...)
	}
	return errs
}

func validateObject(o *Object, path string) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   path + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if strings.TrimSpace(o.Name) == "" {
		add(".name", ErrMissingName, "name is required")
	}

	set := o.shorthands()
	switch {
	case len(set) == 0:
		add("", ErrMissingCheck, "one of check, table, index, view, trigger or column is required")
	case len(set) > 1:
		add("", ErrConflictingCheck, "only one of %s may be set", strings.Join(set, ", "))
	}

	switch o.Kind {
	case "", KindBool:
	case KindExists, KindAbsent:
		if o.Check == "" && len(set) > 0 {
			add(".kind", ErrKindShorthand, "kind %q requires an explicit check query", o.Kind)
		}
	default:
		add(".kind", ErrUnknownKind, "unknown kind %q: must be %s, %s or %s", o.Kind, KindBool, KindExists, KindAbsent)
	}

	if o.Column != "" {
		table, column, ok := strings.Cut(o.Column, ".")
		if !ok || table == "" || column == "" {
			add(".column", ErrInvalidColumn, "column %q must be written table.column", o.Column)
		}
	}

	if len(o.Meet) == 0 {
		add(".meet", ErrEmptyMeet, "at least one statement is required")
	}
	for i, stmt := range o.Meet {
		if strings.TrimSpace(stmt) == "" {
			add(fmt.Sprintf(".meet[%d]", i), ErrBlankStatement, "statement is blank")
		}
	}

	for i := range o.Requires {
		errs = append(errs, validateObject(&o.Requires[i], fmt.Sprintf("%s.requires[%d]", path, i))...)
	}
	return errs
}
