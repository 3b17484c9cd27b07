package core

// RunAuction executes the core competition over validated solutions:
// dedup → canonical ordering → arbitration.
//
// Parameters:
//   - solutions: validated candidate solutions, in submission order
//   - arbitrator: the winner-selection engine for this round
//
// Returns the ranking plus the solutions dropped by deduplication: a solver
// may submit a given solution id only once per round, so later submissions
// with an already-seen (solver, solution id) pair are dropped and reported.
func RunAuction(solutions []*Solution, arbitrator Arbitrator) (Ranking, []*Solution) {
	deduped, duplicates := dedupSolutions(solutions)
	return arbitrator.Arbitrate(deduped), duplicates
}

type solutionKey struct {
	solver     [20]byte
	solutionID uint64
}

// dedupSolutions keeps the first submission for each (solver, solution id)
// pair, preserving submission order.
func dedupSolutions(solutions []*Solution) (kept, duplicates []*Solution) {
	seen := make(map[solutionKey]struct{}, len(solutions))
	kept = make([]*Solution, 0, len(solutions))

	for _, solution := range solutions {
		key := solutionKey{solver: solution.Solver, solutionID: solution.SolutionID}
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, solution)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, solution)
	}

	return kept, duplicates
}
