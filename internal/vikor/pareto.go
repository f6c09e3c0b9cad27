package vikor

// Frontier returns the Pareto-optimal alternatives in input order.
// Dominance is read off the weighted matrix with the same orientation the
// ranking uses: a lower weighted value adds less to S and R, so lower is
// better. An alternative is dominated if another is <= on all criteria and
// strictly lower on at least one. A dominated alternative never ranks better
// than the one dominating it when v > 0.
// O(m^2 n) dominance check.
func Frontier(r *Result) []string {
	rows, _ := r.Weighted.Dims()
	if rows <= 1 {
		return append([]string(nil), r.Alternatives...)
	}

	var frontier []string
	for i := 0; i < rows; i++ {
		dominated := false
		for j := 0; j < rows; j++ {
			if i == j {
				continue
			}
			if dominates(r.Weighted.RawRowView(j), r.Weighted.RawRowView(i)) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, r.Alternatives[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b []float64) bool {
	better := false
	for k := range a {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			better = true
		}
	}
	return better
}
