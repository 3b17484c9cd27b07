// Package verifier implements shadow verification of a published ranking: an
// independent party replays the round's snapshot through the same pipeline
// and compares its result against the coordinator's. A disagreement is a
// consensus mismatch: it is reported for investigation, never enforced, and
// never blocks or alters the authoritative outcome.
package verifier

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cloudx-io/batchauction/auctionapi"
	"github.com/cloudx-io/batchauction/competition"
	"github.com/cloudx-io/batchauction/core"
)

// Mismatch describes a consensus disagreement between the authoritative
// ranking and an independently recomputed one. Both result sets are retained
// so the disagreement can be investigated offline.
type Mismatch struct {
	ReportID      uuid.UUID                `json:"report_id"`
	AuctionID     int64                    `json:"auction_id"`
	Details       []string                 `json:"details"`
	Authoritative auctionapi.RankingReport `json:"authoritative"`
	Local         auctionapi.RankingReport `json:"local"`
}

// Reporter receives consensus mismatches on a side channel.
type Reporter interface {
	ReportMismatch(*Mismatch)
}

// Verifier recomputes rankings from snapshots. It holds no mutable state and
// shares nothing with the authoritative path; a zero Reporter means
// mismatches are only logged.
type Verifier struct {
	Arbitrator core.Arbitrator
	Logger     zerolog.Logger
	Reporter   Reporter
}

// Verify replays the snapshot and compares the recomputed ranking against the
// authoritative one. Returns a Mismatch when they disagree, nil when they
// match, and an error only when the snapshot itself cannot be replayed.
func (v *Verifier) Verify(snapshot *auctionapi.AuctionSnapshot, authoritative *auctionapi.RankingReport) (*Mismatch, error) {
	local, err := competition.Run(snapshot, v.Arbitrator)
	if err != nil {
		return nil, fmt.Errorf("replaying auction %d: %w", snapshot.AuctionID, err)
	}

	details := Compare(authoritative, &local)
	if len(details) == 0 {
		v.Logger.Debug().
			Int64("auction_id", snapshot.AuctionID).
			Msg("shadow verification matched authoritative ranking")
		return nil, nil
	}

	mismatch := &Mismatch{
		ReportID:      uuid.New(),
		AuctionID:     snapshot.AuctionID,
		Details:       details,
		Authoritative: *authoritative,
		Local:         local,
	}

	v.Logger.Warn().
		Stringer("report_id", mismatch.ReportID).
		Int64("auction_id", snapshot.AuctionID).
		Strs("details", details).
		Msg("consensus mismatch between authoritative and recomputed ranking")

	if v.Reporter != nil {
		v.Reporter.ReportMismatch(mismatch)
	}
	return mismatch, nil
}

// Go runs Verify on its own goroutine. The verification takes only immutable
// inputs, so it is safe to run concurrently with the authoritative flow; a
// replay failure is logged and otherwise dropped. The returned channel closes
// when the verification finishes, letting a short-lived caller wait for the
// outcome after publishing without ever blocking publication on it.
func (v *Verifier) Go(snapshot *auctionapi.AuctionSnapshot, authoritative *auctionapi.RankingReport) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := v.Verify(snapshot, authoritative); err != nil {
			v.Logger.Error().Err(err).
				Int64("auction_id", snapshot.AuctionID).
				Msg("shadow verification could not replay snapshot")
		}
	}()
	return done
}

// Compare lists every discrepancy between two ranking reports. An empty
// result means the reports agree on candidates, winners and reference scores.
func Compare(authoritative, local *auctionapi.RankingReport) []string {
	var details []string

	if authoritative.AuctionID != local.AuctionID {
		details = append(details, fmt.Sprintf("auction id: authoritative %d, local %d", authoritative.AuctionID, local.AuctionID))
	}
	if authoritative.DeadlineBlock != local.DeadlineBlock {
		details = append(details, fmt.Sprintf("deadline block: authoritative %d, local %d", authoritative.DeadlineBlock, local.DeadlineBlock))
	}

	if len(authoritative.OrderedCandidates) != len(local.OrderedCandidates) {
		details = append(details, fmt.Sprintf("candidate count: authoritative %d, local %d", len(authoritative.OrderedCandidates), len(local.OrderedCandidates)))
	} else {
		for i := range authoritative.OrderedCandidates {
			if authoritative.OrderedCandidates[i] != local.OrderedCandidates[i] {
				details = append(details, fmt.Sprintf("candidate %d: authoritative %+v, local %+v", i, authoritative.OrderedCandidates[i], local.OrderedCandidates[i]))
			}
		}
	}

	if len(authoritative.Winners) != len(local.Winners) {
		details = append(details, fmt.Sprintf("winner count: authoritative %d, local %d", len(authoritative.Winners), len(local.Winners)))
	} else {
		for i := range authoritative.Winners {
			if authoritative.Winners[i] != local.Winners[i] {
				details = append(details, fmt.Sprintf("winner %d: authoritative %+v, local %+v", i, authoritative.Winners[i], local.Winners[i]))
			}
		}
	}

	return details
}
