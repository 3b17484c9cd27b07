package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cloudx-io/batchauction/auctionapi"
	"github.com/cloudx-io/batchauction/competition"
	"github.com/cloudx-io/batchauction/core"
	"github.com/cloudx-io/batchauction/verifier"
)

// ProcessRound runs one auction round over a collected snapshot and returns
// the publishable ranking report. When shadow verification is enabled the
// round is independently recomputed on a separate goroutine and compared
// against the report; a mismatch is logged, never enforced. The returned
// channel closes when that verification finishes (nil when disabled) so the
// caller can drain it before exiting; the report itself is never delayed.
func ProcessRound(
	logger zerolog.Logger,
	cfg *Config,
	snapshot *auctionapi.AuctionSnapshot,
) (auctionapi.RankingReport, <-chan struct{}, error) {
	runID := uuid.New()
	start := time.Now()

	roundLogger := logger.With().
		Stringer("run_id", runID).
		Int64("auction_id", snapshot.AuctionID).
		Logger()

	roundLogger.Info().
		Uint64("deadline_block", snapshot.DeadlineBlock).
		Int("solutions", len(snapshot.Solutions)).
		Int("known_orders", len(snapshot.KnownOrders)).
		Msg("processing auction round")

	arbitrator := core.Arbitrator{MaxWinners: cfg.MaxWinners}

	report, err := competition.Run(snapshot, arbitrator)
	if err != nil {
		roundLogger.Error().Err(err).Msg("auction round failed")
		return auctionapi.RankingReport{}, nil, err
	}

	for _, rejection := range report.Rejections {
		roundLogger.Warn().
			Str("solver", rejection.Solver).
			Uint64("solution_id", rejection.SolutionID).
			Str("reason", rejection.Reason).
			Str("detail", rejection.Detail).
			Msg("solution rejected")
	}

	for _, winner := range report.Winners {
		roundLogger.Info().
			Str("solver", winner.Solver).
			Uint64("solution_id", winner.SolutionID).
			Str("score", winner.Score).
			Str("reference_score", winner.ReferenceScore).
			Msg("winner selected")
	}

	roundLogger.Info().
		Int("candidates", len(report.OrderedCandidates)).
		Int("winners", len(report.Winners)).
		Int("rejections", len(report.Rejections)).
		Dur("elapsed", time.Since(start)).
		Msg("auction round complete")

	var verified <-chan struct{}
	if cfg.ShadowVerify {
		shadow := &verifier.Verifier{
			Arbitrator: arbitrator,
			Logger:     roundLogger.With().Str("component", "shadow-verifier").Logger(),
		}
		verified = shadow.Go(snapshot, &report)
	}

	return report, verified, nil
}
