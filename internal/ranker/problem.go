package ranker

import (
	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

// CriterionInput is the wire form of one criterion.
type CriterionInput struct {
	Name   string  `json:"name,omitempty"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Problem is one ranking request as received over HTTP or NATS.
type Problem struct {
	RequestID    string           `json:"request_id,omitempty"`
	Alternatives []string         `json:"alternatives"`
	Criteria     []CriterionInput `json:"criteria"`
	Matrix       [][]float64      `json:"matrix"`
	// V overrides the configured compromise weight when set.
	V *float64 `json:"v,omitempty"`
}

// NewProblem wraps parsed engine inputs, carrying column names over from the
// matrix where a criterion has none.
func NewProblem(m vikor.DecisionMatrix, specs []vikor.CriterionSpec) Problem {
	p := Problem{
		Alternatives: m.Alternatives,
		Matrix:       m.Values,
		Criteria:     make([]CriterionInput, len(specs)),
	}
	for j, s := range specs {
		name := s.Name
		if name == "" && j < len(m.Criteria) {
			name = m.Criteria[j]
		}
		p.Criteria[j] = CriterionInput{Name: name, Type: string(s.Type), Weight: s.Weight}
	}
	return p
}

// Inputs converts the problem into engine inputs.
func (p Problem) Inputs() (vikor.DecisionMatrix, []vikor.CriterionSpec) {
	specs := make([]vikor.CriterionSpec, len(p.Criteria))
	for j, c := range p.Criteria {
		specs[j] = vikor.CriterionSpec{Name: c.Name, Type: vikor.CriterionType(c.Type), Weight: c.Weight}
	}
	return vikor.DecisionMatrix{Alternatives: p.Alternatives, Values: p.Matrix}, specs
}
