package vikor

// CompromiseSolution is the set of alternatives VIKOR proposes as the compromise.
type CompromiseSolution struct {
	Alternatives []string `json:"alternatives"`
	Indices      []int    `json:"indices"`
	// AcceptableAdvantage holds when Q(a2) - Q(a1) >= DQ.
	AcceptableAdvantage bool `json:"acceptable_advantage"`
	// AcceptableStability holds when a1 is also best by S or by R.
	AcceptableStability bool    `json:"acceptable_stability"`
	DQ                  float64 `json:"dq"`
}

// Compromise applies the acceptable advantage and acceptable stability
// conditions to a computed result. With a single alternative both conditions
// hold trivially.
func Compromise(r *Result) CompromiseSolution {
	order := r.Ranking()
	m := len(order)
	if m == 1 {
		return CompromiseSolution{
			Alternatives:        []string{r.Scores[0].Alternative},
			Indices:             []int{0},
			AcceptableAdvantage: true,
			AcceptableStability: true,
			DQ:                  1,
		}
	}

	dq := 1 / float64(m-1)
	first, second := r.Scores[order[0]], r.Scores[order[1]]

	sol := CompromiseSolution{
		DQ:                  dq,
		AcceptableAdvantage: second.Q-first.Q >= dq,
		AcceptableStability: bestBy(r.Scores, order[0], func(s Score) float64 { return s.S }) ||
			bestBy(r.Scores, order[0], func(s Score) float64 { return s.R }),
	}

	// The rank 1 alternative always belongs to the set.
	var picked []int
	switch {
	case !sol.AcceptableAdvantage:
		picked = []int{order[0]}
		for _, idx := range order[1:] {
			if r.Scores[idx].Q-first.Q < dq {
				picked = append(picked, idx)
			}
		}
	case !sol.AcceptableStability:
		picked = order[:2]
	default:
		picked = order[:1]
	}

	sol.Indices = append([]int(nil), picked...)
	for _, idx := range sol.Indices {
		sol.Alternatives = append(sol.Alternatives, r.Scores[idx].Alternative)
	}
	return sol
}

// bestBy reports whether scores[idx] has the lowest value of the measure.
func bestBy(scores []Score, idx int, measure func(Score) float64) bool {
	v := measure(scores[idx])
	for _, s := range scores {
		if measure(s) < v {
			return false
		}
	}
	return true
}
