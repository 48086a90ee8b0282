//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package classify

import (
	"cmp"
	"github.com/e-gun/ScreeningGoServer/internal/rank"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"math"
)

// TopNByConfidence - rows of X by descending |score| (ties to the lower row), minus ignore, capped at
// min(n, available); asking for more than there is just yields less
func (s *LinearSVM) TopNByConfidence(X mat.Matrix, n int, ignore map[int]bool) []rank.Scored {
	return ByConfidence(s.DecisionScore(X), n, ignore)
}

// ByConfidence - TopNByConfidence over scores that were already computed
func ByConfidence(scores []float64, n int, ignore map[int]bool) []rank.Scored {
	pool := make([]rank.Scored, 0, len(scores))
	for i, v := range scores {
		if ignore[i] {
			continue
		}
		pool = append(pool, rank.Scored{Row: i, Score: v})
	}

	slices.SortStableFunc(pool, func(a, b rank.Scored) int {
		return cmp.Compare(math.Abs(b.Score), math.Abs(a.Score))
	})

	if n < 0 {
		n = 0
	}
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}
