package vikor

import (
	"fmt"
	"math"
	"strconv"
)

// resolved is a validated input with labels filled in and criterion types normalized.
type resolved struct {
	alternatives []string
	criteria     []string
	specs        []CriterionSpec
}

// validate checks every precondition before any arithmetic runs.
func validate(matrix DecisionMatrix, specs []CriterionSpec, v float64) (*resolved, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return nil, &InvalidInputError{Field: "v", Row: -1, Column: -1,
			Value: strconv.FormatFloat(v, 'g', -1, 64), Reason: "must be within [0, 1]"}
	}

	rows, cols := matrix.Rows(), matrix.Cols()
	if rows == 0 {
		return nil, invalid("matrix", -1, -1, "at least one alternative is required")
	}
	if cols == 0 {
		return nil, invalid("matrix", -1, -1, "at least one criterion is required")
	}
	for i, row := range matrix.Values {
		if len(row) != cols {
			return nil, invalid("matrix", i, -1, "has %d values, expected %d", len(row), cols)
		}
		for j, x := range row {
			if !finite(x) {
				e := invalid("cell", i, j, "must be a finite number")
				e.Value = strconv.FormatFloat(x, 'g', -1, 64)
				return nil, e
			}
		}
	}

	if len(specs) != cols {
		return nil, invalid("criteria", -1, -1, "got %d criterion specs for %d matrix columns", len(specs), cols)
	}
	normalized := make([]CriterionSpec, cols)
	for j, spec := range specs {
		typ, err := ParseCriterionType(string(spec.Type))
		if err != nil {
			e := invalid("criterion type", -1, j, "must be %q or %q", Benefit, Cost)
			e.Value = string(spec.Type)
			return nil, e
		}
		if !finite(spec.Weight) || spec.Weight < 0 {
			e := invalid("weight", -1, j, "must be a finite number >= 0")
			e.Value = strconv.FormatFloat(spec.Weight, 'g', -1, 64)
			return nil, e
		}
		spec.Type = typ
		normalized[j] = spec
	}

	alternatives := matrix.Alternatives
	switch {
	case len(alternatives) == 0:
		alternatives = make([]string, rows)
		for i := range alternatives {
			alternatives[i] = fmt.Sprintf("A%d", i+1)
		}
	case len(alternatives) != rows:
		return nil, invalid("alternatives", -1, -1, "got %d labels for %d matrix rows", len(alternatives), rows)
	default:
		alternatives = append([]string(nil), alternatives...)
	}

	if len(matrix.Criteria) != 0 && len(matrix.Criteria) != cols {
		return nil, invalid("criteria", -1, -1, "got %d criterion names for %d matrix columns", len(matrix.Criteria), cols)
	}
	criteria := make([]string, cols)
	for j := range criteria {
		switch {
		case len(matrix.Criteria) != 0 && matrix.Criteria[j] != "":
			criteria[j] = matrix.Criteria[j]
		case specs[j].Name != "":
			criteria[j] = specs[j].Name
		default:
			criteria[j] = fmt.Sprintf("C%d", j+1)
		}
	}

	return &resolved{alternatives: alternatives, criteria: criteria, specs: normalized}, nil
}
