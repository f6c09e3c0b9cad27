package vikor

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDegenerateCriterion = errors.New("degenerate criterion")
)

// InvalidInputError reports a precondition violation. Row and Column are -1 when
// they do not apply.
type InvalidInputError struct {
	Field  string
	Row    int
	Column int
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	msg := "invalid " + e.Field
	switch {
	case e.Row >= 0 && e.Column >= 0:
		msg += fmt.Sprintf(" at row %d, column %d", e.Row, e.Column)
	case e.Row >= 0:
		msg += fmt.Sprintf(" at row %d", e.Row)
	case e.Column >= 0:
		msg += fmt.Sprintf(" at column %d", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (%s)", e.Value)
	}
	return msg + ": " + e.Reason
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field string, row, col int, reason string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{
		Field:  field,
		Row:    row,
		Column: col,
		Reason: fmt.Sprintf(reason, args...),
	}
}

// DegenerateCriterionError reports a criterion whose values are all equal.
type DegenerateCriterionError struct {
	Criterion string
	Column    int
	Value     float64
}

func (e *DegenerateCriterionError) Error() string {
	return fmt.Sprintf("criterion %q (column %d) has zero range: every value is %g", e.Criterion, e.Column, e.Value)
}

func (e *DegenerateCriterionError) Is(target error) bool { return target == ErrDegenerateCriterion }
