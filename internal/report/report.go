// Package report turns VIKOR inputs and results into the four named tables
// consumed by display, charting and spreadsheet export, and parses the CSV
// tables that feed the engine.
package report

import (
	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

// Table names, in pipeline order.
const (
	SheetRawData     = "1_RawData"
	SheetNormalized  = "2_Normalized"
	SheetWeighted    = "3_Weighted"
	SheetFinalScores = "4_FinalScores"
)

const labelColumn = "Alternative"

// Table is one pipeline stage keyed by alternative label, rows in input order.
type Table struct {
	Name         string      `json:"name"`
	Columns      []string    `json:"columns"`
	Alternatives []string    `json:"alternatives"`
	Values       [][]float64 `json:"values"`
}

// Header returns the label column followed by the value columns.
func (t Table) Header() []string {
	return append([]string{labelColumn}, t.Columns...)
}

// Report holds every stage of one computation.
type Report struct {
	RawData     Table `json:"raw_data"`
	Normalized  Table `json:"normalized"`
	Weighted    Table `json:"weighted"`
	FinalScores Table `json:"final_scores"`
}

// Build assembles the report for a matrix and the result computed from it.
func Build(matrix vikor.DecisionMatrix, res *vikor.Result) *Report {
	raw := make([][]float64, len(matrix.Values))
	for i, row := range matrix.Values {
		raw[i] = append([]float64(nil), row...)
	}

	final := make([][]float64, len(res.Scores))
	for i, s := range res.Scores {
		final[i] = []float64{s.S, s.R, s.Q, float64(s.Rank)}
	}

	return &Report{
		RawData:     newTable(SheetRawData, res.Criteria, res.Alternatives, raw),
		Normalized:  newTable(SheetNormalized, res.Criteria, res.Alternatives, res.NormalizedRows()),
		Weighted:    newTable(SheetWeighted, res.Criteria, res.Alternatives, res.WeightedRows()),
		FinalScores: newTable(SheetFinalScores, []string{"S", "R", "Q", "Rank"}, res.Alternatives, final),
	}
}

// Tables returns the four tables in pipeline order.
func (r *Report) Tables() []Table {
	return []Table{r.RawData, r.Normalized, r.Weighted, r.FinalScores}
}

func newTable(name string, columns, alternatives []string, values [][]float64) Table {
	return Table{
		Name:         name,
		Columns:      append([]string(nil), columns...),
		Alternatives: append([]string(nil), alternatives...),
		Values:       values,
	}
}
