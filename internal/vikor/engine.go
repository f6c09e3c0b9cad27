package vikor

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// epsilon keeps the Q rescaling finite when every S (or every R) is equal.
const epsilon = 1e-9

// Engine runs the VIKOR pipeline. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger discards trace output.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Degenerate == "" {
		opts.Degenerate = DegenerateZero
	}
	return &Engine{opts: opts, logger: logger}
}

// Compute ranks the matrix with default options and the given v.
func Compute(matrix DecisionMatrix, specs []CriterionSpec, v float64) (*Result, error) {
	return NewEngine(DefaultOptions(), nil).ComputeWithV(matrix, specs, v)
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Compute ranks the matrix using the engine's configured v.
func (e *Engine) Compute(matrix DecisionMatrix, specs []CriterionSpec) (*Result, error) {
	return e.ComputeWithV(matrix, specs, e.opts.V)
}

// ComputeWithV ranks the matrix with an explicit compromise weight v.
//
//	Q = v*(S-S*)/(S- - S* + eps) + (1-v)*(R-R*)/(R- - R* + eps)
//
// Lower Q ranks better. Equal Q values keep input order.
func (e *Engine) ComputeWithV(matrix DecisionMatrix, specs []CriterionSpec, v float64) (*Result, error) {
	in, err := validate(matrix, specs, v)
	if err != nil {
		return nil, err
	}
	specs = in.specs

	rows, cols := matrix.Rows(), matrix.Cols()

	norm, err := e.normalize(matrix, specs, in.criteria)
	if err != nil {
		return nil, err
	}
	e.traceMatrix("normalized matrix", norm)

	weighted := mat.NewDense(rows, cols, nil)
	weighted.Apply(func(_, j int, x float64) float64 {
		return x * specs[j].Weight
	}, norm)
	e.traceMatrix("weighted matrix", weighted)

	s := make([]float64, rows)
	r := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := weighted.RawRowView(i)
		s[i] = row[0]
		r[i] = row[0]
		for _, x := range row[1:] {
			s[i] += x
			r[i] = math.Max(r[i], x)
		}
		if !finite(s[i]) {
			ie := invalid("weights", i, -1, "weighted sum for %q overflows", in.alternatives[i])
			ie.Value = strconv.FormatFloat(s[i], 'g', -1, 64)
			return nil, ie
		}
	}

	sMin, sMax := bounds(s)
	rMin, rMax := bounds(r)
	q := make([]float64, rows)
	for i := range q {
		q[i] = v*(s[i]-sMin)/(sMax-sMin+epsilon) + (1-v)*(r[i]-rMin)/(rMax-rMin+epsilon)
		if !finite(q[i]) {
			ie := invalid("q", i, -1, "compromise measure for %q is not finite", in.alternatives[i])
			ie.Value = strconv.FormatFloat(q[i], 'g', -1, 64)
			return nil, ie
		}
	}

	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return q[order[a]] < q[order[b]]
	})

	scores := make([]Score, rows)
	for i := range scores {
		scores[i] = Score{Alternative: in.alternatives[i], S: s[i], R: r[i], Q: q[i]}
	}
	for pos, idx := range order {
		scores[idx].Rank = pos + 1
	}

	if e.opts.Trace {
		e.logger.Debug("vikor aggregates", "s", s, "r", r, "q", q)
		e.logger.Debug("vikor ranking", "order", order, "v", v)
	}

	return &Result{
		Alternatives: in.alternatives,
		Criteria:     in.criteria,
		Scores:       scores,
		Normalized:   norm,
		Weighted:     weighted,
		V:            v,
	}, nil
}

// normalize min-max scales each column according to its direction.
func (e *Engine) normalize(matrix DecisionMatrix, specs []CriterionSpec, criteria []string) (*mat.Dense, error) {
	rows, cols := matrix.Rows(), matrix.Cols()
	norm := mat.NewDense(rows, cols, nil)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = matrix.Values[i][j]
		}
		lo, hi := bounds(col)
		if hi == lo {
			if e.opts.Degenerate == DegenerateFail {
				return nil, &DegenerateCriterionError{Criterion: criteria[j], Column: j, Value: lo}
			}
			e.logger.Debug("zero-range criterion normalized to 0", "criterion", criteria[j], "value", lo)
			continue
		}
		// hi-lo overflows when the column spans most of the float64 range;
		// halving every operand keeps the ratios and stays finite.
		scale := 1.0
		span := hi - lo
		if math.IsInf(span, 0) {
			scale = 0.5
			span = hi*scale - lo*scale
		}
		for i, x := range col {
			switch specs[j].Type {
			case Benefit:
				norm.Set(i, j, (x*scale-lo*scale)/span)
			case Cost:
				norm.Set(i, j, (hi*scale-x*scale)/span)
			}
		}
	}
	return norm, nil
}

func (e *Engine) traceMatrix(stage string, m *mat.Dense) {
	if !e.opts.Trace {
		return
	}
	e.logger.Debug(stage, "values", fmt.Sprintf("%v", mat.Formatted(m, mat.Squeeze())))
}

func bounds(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func finite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }
