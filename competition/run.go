// Package competition wires the full auction round together: validation gate,
// deduplication, arbitration and report building. The coordinator and every
// verifying agent run this exact pipeline over the same snapshot, which is
// what makes their results comparable byte for byte.
package competition

import (
	"fmt"

	"github.com/cloudx-io/batchauction/auctionapi"
	"github.com/cloudx-io/batchauction/core"
	"github.com/cloudx-io/batchauction/validation"
)

// Run executes one auction round over an immutable snapshot:
//  1. adapt and validate the auction context
//  2. validate every raw solution, collecting structured rejections
//  3. drop duplicate (solver, solution id) submissions
//  4. arbitrate the surviving candidates
//  5. build the publishable ranking report
//
// Run is deterministic: the snapshot fully determines the report.
func Run(snapshot *auctionapi.AuctionSnapshot, arbitrator core.Arbitrator) (auctionapi.RankingReport, error) {
	ctx, err := validation.ContextFromSnapshot(snapshot)
	if err != nil {
		return auctionapi.RankingReport{}, fmt.Errorf("invalid auction snapshot: %w", err)
	}

	solutions, validationErrors := validation.ValidateAll(ctx, snapshot.Solutions)

	rejections := make([]auctionapi.Rejection, 0, len(validationErrors))
	for _, verr := range validationErrors {
		rejections = append(rejections, auctionapi.Rejection{
			Solver:     verr.Solver,
			SolutionID: verr.SolutionID,
			Reason:     string(verr.Kind),
			Detail:     verr.Detail,
		})
	}

	ranking, duplicates := core.RunAuction(solutions, arbitrator)
	for _, duplicate := range duplicates {
		rejections = append(rejections, auctionapi.Rejection{
			Solver:     duplicate.Solver.Hex(),
			SolutionID: duplicate.SolutionID,
			Reason:     string(validation.ErrDuplicateSolution),
			Detail:     "a solution with this id was already submitted by this solver",
		})
	}

	return auctionapi.NewRankingReport(snapshot.AuctionID, snapshot.DeadlineBlock, ranking, rejections), nil
}
