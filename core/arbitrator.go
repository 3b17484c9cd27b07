package core

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"
)

// Arbitrator is the winner-selection engine. Given all candidate solutions of
// one auction round it selects the maximal-score pairwise order-disjoint
// subset and computes a reference score per winner.
//
// Arbitration is a pure function of its input: no I/O, no shared state, no
// randomness. Two independent invocations over the same candidate set (same
// fingerprints and scores) produce identical results, which is what lets a
// verifying solver re-run the selection and compare against the coordinator.
type Arbitrator struct {
	// MaxWinners caps how many solutions may win a single round.
	// Zero or negative means no cap.
	MaxWinners int
}

// RankedSolution is one entry of the full candidate ranking. Non-winners are
// retained (Winner=false) for downstream auditing of the selection process.
type RankedSolution struct {
	Solution *Solution
	Winner   bool
}

// Winner is a solution selected for settlement together with its reference
// score: the best total score the remaining candidates could have achieved
// had this solution not competed. Reward attribution downstream is based on
// the winner's own score relative to this counterfactual.
type Winner struct {
	Solution       *Solution
	ReferenceScore *uint256.Int
}

// Ranking is the complete, deterministic output of one arbitration run.
type Ranking struct {
	// Candidates lists every valid solution in canonical order (fingerprint
	// ascending), each flagged as winner or filtered out for overlap.
	Candidates []RankedSolution

	// Winners are ordered by score descending, canonical order on ties.
	// Winners are pairwise order-disjoint.
	Winners []Winner
}

// Arbitrate runs winner selection over the validated candidate solutions.
// An empty candidate set yields an empty ranking; absence of winners is a
// valid, non-error outcome. Arbitrate never fails on well-formed input; it
// panics only on internal invariant violations, which indicate a bug in the
// algorithm rather than bad input.
func (a Arbitrator) Arbitrate(solutions []*Solution) Ranking {
	if len(solutions) == 0 {
		return Ranking{}
	}

	// Greedy-by-score with a disjointness filter. The fingerprint-based
	// canonical order breaks score ties so the walk order is a total order.
	byScore := make([]*Solution, len(solutions))
	copy(byScore, solutions)
	sort.Slice(byScore, func(i, j int) bool {
		return lessByScore(byScore[i], byScore[j])
	})

	isWinner := a.pickWinners(byScore)
	a.assertWinnersDisjoint(byScore, isWinner)

	winners := make([]Winner, 0, a.winnerCap(len(byScore)))
	winnerSet := make(map[*Solution]bool, len(byScore))
	for i, solution := range byScore {
		winnerSet[solution] = isWinner[i]
		if !isWinner[i] {
			continue
		}
		winners = append(winners, Winner{
			Solution:       solution,
			ReferenceScore: a.referenceScore(byScore, i),
		})
	}

	candidates := make([]RankedSolution, 0, len(solutions))
	ordered := make([]*Solution, len(solutions))
	copy(ordered, solutions)
	sort.Slice(ordered, func(i, j int) bool {
		return Compare(ordered[i], ordered[j]) < 0
	})
	for _, solution := range ordered {
		candidates = append(candidates, RankedSolution{
			Solution: solution,
			Winner:   winnerSet[solution],
		})
	}

	return Ranking{
		Candidates: candidates,
		Winners:    winners,
	}
}

// pickWinners walks the score-sorted candidates and greedily accepts each
// solution that does not overlap any already-accepted winner, until the
// winner cap is reached. Returns a per-index winner flag aligned with sorted.
func (a Arbitrator) pickWinners(sorted []*Solution) []bool {
	isWinner := make([]bool, len(sorted))
	accepted := make([]*Solution, 0, a.winnerCap(len(sorted)))

	for i, candidate := range sorted {
		if a.MaxWinners > 0 && len(accepted) >= a.MaxWinners {
			break
		}
		disjoint := true
		for _, winner := range accepted {
			if Overlaps(candidate, winner) {
				disjoint = false
				break
			}
		}
		if disjoint {
			isWinner[i] = true
			accepted = append(accepted, candidate)
		}
	}

	return isWinner
}

// referenceScore re-runs the identical greedy selection with the solution at
// exclude removed and returns the total winning score of that counterfactual
// round. The excluded winner's own score never contributes.
func (a Arbitrator) referenceScore(sorted []*Solution, exclude int) *uint256.Int {
	remaining := make([]*Solution, 0, len(sorted)-1)
	remaining = append(remaining, sorted[:exclude]...)
	remaining = append(remaining, sorted[exclude+1:]...)

	isWinner := a.pickWinners(remaining)

	total := new(uint256.Int)
	for i, solution := range remaining {
		if isWinner[i] {
			saturatingAdd(total, solution.Score)
		}
	}
	return total
}

// assertWinnersDisjoint double-checks the no-double-settlement invariant.
// Reaching the panic means the selection logic itself is broken; producing a
// silently-wrong financial result would be worse than crashing.
func (a Arbitrator) assertWinnersDisjoint(sorted []*Solution, isWinner []bool) {
	var winners []*Solution
	for i, solution := range sorted {
		if isWinner[i] {
			winners = append(winners, solution)
		}
	}
	if a.MaxWinners > 0 && len(winners) > a.MaxWinners {
		panic(fmt.Sprintf("arbitrator selected %d winners, cap is %d", len(winners), a.MaxWinners))
	}
	for i := 0; i < len(winners); i++ {
		for j := i + 1; j < len(winners); j++ {
			if Overlaps(winners[i], winners[j]) {
				panic(fmt.Sprintf(
					"arbitrator selected overlapping winners: solver %s solution %d and solver %s solution %d",
					winners[i].Solver, winners[i].SolutionID,
					winners[j].Solver, winners[j].SolutionID,
				))
			}
		}
	}
}

func (a Arbitrator) winnerCap(candidates int) int {
	if a.MaxWinners > 0 && a.MaxWinners < candidates {
		return a.MaxWinners
	}
	return candidates
}

// lessByScore orders candidates score descending, with the canonical solution
// order (fingerprint ascending) breaking exact score ties.
func lessByScore(a, b *Solution) bool {
	switch a.Score.Cmp(b.Score) {
	case 1:
		return true
	case -1:
		return false
	}
	return Compare(a, b) < 0
}

// saturatingAdd adds x to total in place, clamping at the maximum value
// instead of wrapping on overflow.
func saturatingAdd(total, x *uint256.Int) {
	if x == nil {
		return
	}
	if _, overflow := total.AddOverflow(total, x); overflow {
		total.SetAllOne()
	}
}
