// Package reconerror defines the error taxonomy of a reconciliation run.
// Every error here is fatal to the run that produced it and carries enough
// context (dataset role, file, field) to route the user back to the fix.
package reconerror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is the cause of a ParseError raised for input without a header line.
var ErrEmptyInput = errors.New("input is empty")

// ParseError represents malformed or empty tabular input.
type ParseError struct {
	Role   string
	Source string
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Role != "" {
		fmt.Fprintf(&b, " in %s dataset", e.Role)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " '%s'", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil && e.Err.Error() != e.Reason {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MappingIncompleteError reports required canonical fields without a source column.
type MappingIncompleteError struct {
	Role    string
	Source  string
	Missing []string
}

func (e *MappingIncompleteError) Error() string {
	dataset := e.Role
	if e.Source != "" {
		dataset = fmt.Sprintf("%s ('%s')", e.Role, e.Source)
	}
	return fmt.Sprintf("mapping incomplete for %s dataset: required fields not mapped: %s",
		dataset, strings.Join(e.Missing, ", "))
}

// ReconciliationError reports a run that cannot start because a mandatory dataset is absent.
type ReconciliationError struct {
	Role   string
	Reason string
}

func (e *ReconciliationError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("reconciliation failed: %s", e.Reason)
	}
	return fmt.Sprintf("reconciliation failed: %s dataset %s", e.Role, e.Reason)
}

// InvalidFormatError represents an input file that cannot be read as a dataset.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
	Err            error
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.FilePath, e.Msg, e.ExpectedFormat)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}
