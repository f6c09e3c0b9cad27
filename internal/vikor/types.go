package vikor

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// CriterionType is the optimisation direction of a criterion.
type CriterionType string

const (
	Benefit CriterionType = "benefit"
	Cost    CriterionType = "cost"
)

// ParseCriterionType accepts "benefit" or "cost" in any case.
func ParseCriterionType(s string) (CriterionType, error) {
	switch CriterionType(strings.ToLower(strings.TrimSpace(s))) {
	case Benefit:
		return Benefit, nil
	case Cost:
		return Cost, nil
	}
	return "", fmt.Errorf("unknown criterion type %q", s)
}

// CriterionSpec describes one column of the decision matrix.
type CriterionSpec struct {
	Name   string        `json:"name,omitempty"`
	Type   CriterionType `json:"type"`
	Weight float64       `json:"weight"`
}

// DecisionMatrix holds alternatives (rows) scored on criteria (columns).
// Alternatives and Criteria are display labels only.
type DecisionMatrix struct {
	Alternatives []string    `json:"alternatives"`
	Criteria     []string    `json:"criteria,omitempty"`
	Values       [][]float64 `json:"matrix"`
}

// Rows returns the number of alternatives.
func (m DecisionMatrix) Rows() int { return len(m.Values) }

// Cols returns the number of criteria, taken from the first row.
func (m DecisionMatrix) Cols() int {
	if len(m.Values) == 0 {
		return 0
	}
	return len(m.Values[0])
}

// DegeneratePolicy decides what happens to a criterion whose values are all equal.
type DegeneratePolicy string

const (
	// DegenerateZero normalizes every cell of a zero-range column to 0.
	DegenerateZero DegeneratePolicy = "zero"
	// DegenerateFail aborts the computation with a DegenerateCriterionError.
	DegenerateFail DegeneratePolicy = "fail"
)

// ParseDegeneratePolicy maps a config string to a policy. Empty means DegenerateZero.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch DegeneratePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DegenerateZero:
		return DegenerateZero, nil
	case DegenerateFail:
		return DegenerateFail, nil
	}
	return "", fmt.Errorf("unknown degenerate policy %q", s)
}

// Options configures an Engine.
type Options struct {
	// V balances group utility (S) against individual regret (R). Must be in [0, 1].
	V          float64
	Degenerate DegeneratePolicy
	// Trace logs every intermediate stage at debug level.
	Trace bool
}

// DefaultOptions returns v=0.5 with zero-filled degenerate columns.
func DefaultOptions() Options {
	return Options{
		V:          0.5,
		Degenerate: DegenerateZero,
	}
}

// Score is the VIKOR outcome for one alternative.
type Score struct {
	Alternative string  `json:"alternative"`
	S           float64 `json:"s"`
	R           float64 `json:"r"`
	Q           float64 `json:"q"`
	Rank        int     `json:"rank"`
}

// Result is immutable once returned by Compute. Scores keep the input row order.
type Result struct {
	Alternatives []string
	Criteria     []string
	Scores       []Score
	Normalized   *mat.Dense
	Weighted     *mat.Dense
	V            float64
}

// Ranking returns row indices ordered by rank, best first.
func (r *Result) Ranking() []int {
	order := make([]int, len(r.Scores))
	for i, s := range r.Scores {
		order[s.Rank-1] = i
	}
	return order
}

// Best returns the rank 1 score.
func (r *Result) Best() Score {
	return r.Scores[r.Ranking()[0]]
}

// NormalizedRows copies the normalized matrix into row slices.
func (r *Result) NormalizedRows() [][]float64 { return denseRows(r.Normalized) }

// WeightedRows copies the weighted matrix into row slices.
func (r *Result) WeightedRows() [][]float64 { return denseRows(r.Weighted) }

func denseRows(d *mat.Dense) [][]float64 {
	if d == nil {
		return nil
	}
	rows, _ := d.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, d)
	}
	return out
}
