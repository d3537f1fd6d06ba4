package comparecandidates

import (
	"sort"

	"github.com/google/uuid"

	"assessment-workers/internal/models"
)

// rankDense assigns 1-based dense ranks over a metric: higher values rank
// first, equal values share a rank, the next distinct value gets the next
// consecutive rank. Results whose metric is nil always rank after every
// result that has a value, and share one rank among themselves.
func rankDense(results []*models.TestResult, metric func(*models.TestResult) *float64) map[uuid.UUID]int {
	ordered := make([]*models.TestResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := metric(ordered[i]), metric(ordered[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	ranks := make(map[uuid.UUID]int, len(ordered))
	rank := 0
	var prev *float64
	for i, r := range ordered {
		v := metric(r)
		if i == 0 || !sameValue(prev, v) {
			rank++
		}
		ranks[r.ID] = rank
		prev = v
	}
	return ranks
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
