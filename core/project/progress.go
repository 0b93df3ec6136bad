package project

import "math"

// Progress computes the completion percentage of a task scope as an integer
// in 0..100, rounded half-up: 100 * sum(weights of approved tasks) /
// sum(all weights). An empty scope (zero total weight) yields 0, never an
// error. The formula is the single source of truth for every aggregation
// scope: per sub-project, per project and per company.
func Progress(tasks []Task, approved map[int]bool) int {
	var total, done float64
	for _, t := range tasks {
		total += t.Weight
		if approved[t.ID] {
			done += t.Weight
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Floor(100*done/total + 0.5))
}
