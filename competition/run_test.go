package competition

import (
	"bytes"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/batchauction/auctionapi"
	"github.com/cloudx-io/batchauction/core"
)

const (
	solverA   = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	solverB   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	solverC   = "0xcccccccccccccccccccccccccccccccccccccccc"
	tokenWETH = "0x1111111111111111111111111111111111111111"
	tokenUSDC = "0x2222222222222222222222222222222222222222"
)

func orderHex(b byte) string {
	const digits = "0123456789abcdef"
	return "0x" + strings.Repeat("00", core.OrderIDLen-1) + string([]byte{digits[b>>4], digits[b&0x0f]})
}

func submission(solver string, solutionID uint64, score string, orders ...byte) auctionapi.RawSolution {
	executions := make([]auctionapi.RawOrderExecution, len(orders))
	for i, order := range orders {
		executions[i] = auctionapi.RawOrderExecution{
			Order:        orderHex(order),
			Side:         "sell",
			SellToken:    tokenWETH,
			BuyToken:     tokenUSDC,
			ExecutedSell: "1000000000000000000",
			ExecutedBuy:  "3000000000",
		}
	}
	return auctionapi.RawSolution{
		Solver:     solver,
		SolutionID: solutionID,
		Orders:     executions,
		Score:      score,
	}
}

func snapshotFixture(solutions ...auctionapi.RawSolution) *auctionapi.AuctionSnapshot {
	return &auctionapi.AuctionSnapshot{
		AuctionID:     42,
		DeadlineBlock: 1000,
		KnownOrders:   []string{orderHex(1), orderHex(2), orderHex(3)},
		ExternalPrices: map[string]string{
			tokenWETH: "3000000000000000000000",
			tokenUSDC: "1000000000000000000",
		},
		Solutions: solutions,
	}
}

func TestRun_FullRound(t *testing.T) {
	snapshot := snapshotFixture(
		submission(solverA, 1, "100", 1, 2), // winner
		submission(solverB, 1, "80", 2, 3),  // overlaps the winner on order 2
		submission(solverC, 1, "60", 9),     // rejected: order 9 is not in the round
	)

	report, err := Run(snapshot, core.Arbitrator{})
	assert.Nil(t, err)

	check.Equal(t, int64(42), report.AuctionID)
	check.Equal(t, uint64(1000), report.DeadlineBlock)

	// The invalid submission never reaches ranking.
	assert.Equal(t, 2, len(report.OrderedCandidates))
	assert.Equal(t, 1, len(report.Rejections))
	check.Equal(t, solverC, report.Rejections[0].Solver)
	check.Equal(t, "unknown_order", report.Rejections[0].Reason)

	assert.Equal(t, 1, len(report.Winners))
	check.Equal(t, "100", report.Winners[0].Score)
	check.Equal(t, "80", report.Winners[0].ReferenceScore)
}

func TestRun_DuplicateSubmissionRejected(t *testing.T) {
	snapshot := snapshotFixture(
		submission(solverA, 7, "100", 1),
		submission(solverA, 7, "999", 2), // same (solver, solution id)
	)

	report, err := Run(snapshot, core.Arbitrator{})
	assert.Nil(t, err)

	assert.Equal(t, 1, len(report.Winners))
	check.Equal(t, "100", report.Winners[0].Score)

	assert.Equal(t, 1, len(report.Rejections))
	check.Equal(t, "duplicate_solution", report.Rejections[0].Reason)
	check.Equal(t, uint64(7), report.Rejections[0].SolutionID)
}

func TestRun_NoSolutions(t *testing.T) {
	report, err := Run(snapshotFixture(), core.Arbitrator{})
	assert.Nil(t, err)

	check.Equal(t, 0, len(report.Winners))
	check.Equal(t, 0, len(report.OrderedCandidates))
	check.Equal(t, 0, len(report.Rejections))
}

func TestRun_InvalidSnapshot(t *testing.T) {
	snapshot := snapshotFixture()
	snapshot.ExternalPrices[tokenWETH] = "0"

	_, err := Run(snapshot, core.Arbitrator{})
	check.NotNil(t, err)
}

func TestRun_ReproducibleBytes(t *testing.T) {
	snapshot := snapshotFixture(
		submission(solverA, 1, "100", 1),
		submission(solverB, 1, "100", 2),
		submission(solverC, 1, "90", 1, 3),
	)

	first, err := Run(snapshot, core.Arbitrator{})
	assert.Nil(t, err)
	second, err := Run(snapshot, core.Arbitrator{})
	assert.Nil(t, err)

	// Two independent runs over the same snapshot must serialize to
	// identical bytes; this is the consensus contract between parties.
	firstBytes, err := auctionapi.EncodeCBOR(&first)
	assert.Nil(t, err)
	secondBytes, err := auctionapi.EncodeCBOR(&second)
	assert.Nil(t, err)
	check.True(t, bytes.Equal(firstBytes, secondBytes))
}
