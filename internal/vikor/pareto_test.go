package vikor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier(t *testing.T) {
	// Weighted rows: A=[0.6, 0.133], B=[0, 0.4], C=[0.2, 0]. C sits below A on both.
	m, specs := goldenMatrix()
	res, err := Compute(m, specs, 0.5)
	require.NoError(t, err)

	frontier := Frontier(res)
	assert.Equal(t, []string{"B", "C"}, frontier)
	for _, alt := range Compromise(res).Alternatives {
		assert.Contains(t, frontier, alt)
	}
}

func TestFrontierCostColumn(t *testing.T) {
	// Weighted rows: Pricey=[0, 0], Cheap=[0, 0.5], Good=[0.5, 0.2].
	res, err := Compute(DecisionMatrix{
		Alternatives: []string{"Pricey", "Cheap", "Good"},
		Values:       [][]float64{{5, 100}, {5, 50}, {9, 80}},
	}, []CriterionSpec{
		{Type: Benefit, Weight: 0.5},
		{Type: Cost, Weight: 0.5},
	}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pricey"}, Frontier(res))
	assert.Equal(t, "Pricey", res.Best().Alternative)
}

func TestFrontierIgnoresZeroWeight(t *testing.T) {
	// The second column carries no weight, so A and B are equal where it counts.
	res, err := Compute(DecisionMatrix{
		Alternatives: []string{"A", "B"},
		Values:       [][]float64{{1, 1}, {1, 2}},
	}, []CriterionSpec{
		{Type: Benefit, Weight: 1},
		{Type: Benefit, Weight: 0},
	}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, Frontier(res))
}

func TestFrontierIdenticalRows(t *testing.T) {
	res, err := Compute(DecisionMatrix{
		Alternatives: []string{"A", "B"},
		Values:       [][]float64{{1, 2}, {1, 2}},
	}, []CriterionSpec{
		{Type: Benefit, Weight: 1},
		{Type: Benefit, Weight: 1},
	}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, Frontier(res))
}

func TestFrontierSingleAlternative(t *testing.T) {
	res, err := Compute(DecisionMatrix{
		Alternatives: []string{"only"},
		Values:       [][]float64{{3, 4}},
	}, []CriterionSpec{
		{Type: Benefit, Weight: 1},
		{Type: Cost, Weight: 1},
	}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"only"}, Frontier(res))
}

func TestFrontierContainsBest(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		rows, cols := 2+rng.Intn(6), 1+rng.Intn(4)
		m := DecisionMatrix{Values: make([][]float64, rows)}
		for i := range m.Values {
			m.Values[i] = make([]float64, cols)
			for j := range m.Values[i] {
				m.Values[i][j] = float64(rng.Intn(10))
			}
		}
		specs := make([]CriterionSpec, cols)
		for j := range specs {
			typ := Benefit
			if rng.Intn(2) == 0 {
				typ = Cost
			}
			specs[j] = CriterionSpec{Type: typ, Weight: 0.1 + rng.Float64()}
		}

		res, err := Compute(m, specs, 0.5)
		require.NoError(t, err)

		frontier := Frontier(res)
		assert.Contains(t, frontier, res.Best().Alternative, "matrix %v", m.Values)
	}
}
