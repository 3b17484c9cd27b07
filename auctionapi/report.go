package auctionapi

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/batchauction/core"
)

// RankedEntry is one candidate of the published ranking, in canonical
// fingerprint order. Accepted=false means the solution was valid but filtered
// out because it overlapped a higher-ranked winner.
type RankedEntry struct {
	Fingerprint string `json:"fingerprint"`
	Solver      string `json:"solver"`
	SolutionID  uint64 `json:"solution_id"`
	Score       string `json:"score"`
	Accepted    bool   `json:"accepted"`
}

// WinnerEntry is one winning solution with its reference score.
type WinnerEntry struct {
	Solver         string `json:"solver"`
	SolutionID     uint64 `json:"solution_id"`
	Score          string `json:"score"`
	ReferenceScore string `json:"reference_score"`
}

// RankingReport is the published outcome of one auction round. Any party that
// replays the round's snapshot must arrive at an identical report.
type RankingReport struct {
	AuctionID         int64         `json:"auction_id"`
	DeadlineBlock     uint64        `json:"deadline_block"`
	OrderedCandidates []RankedEntry `json:"ordered_candidates"`
	Winners           []WinnerEntry `json:"winners"`
	Rejections        []Rejection   `json:"rejections,omitempty"`
}

// NewRankingReport converts an arbitration result into its wire form.
func NewRankingReport(auctionID int64, deadlineBlock uint64, ranking core.Ranking, rejections []Rejection) RankingReport {
	candidates := make([]RankedEntry, 0, len(ranking.Candidates))
	for _, candidate := range ranking.Candidates {
		candidates = append(candidates, RankedEntry{
			Fingerprint: candidate.Solution.Fingerprint().Hex(),
			Solver:      candidate.Solution.Solver.Hex(),
			SolutionID:  candidate.Solution.SolutionID,
			Score:       candidate.Solution.Score.Dec(),
			Accepted:    candidate.Winner,
		})
	}

	winners := make([]WinnerEntry, 0, len(ranking.Winners))
	for _, winner := range ranking.Winners {
		winners = append(winners, WinnerEntry{
			Solver:         winner.Solution.Solver.Hex(),
			SolutionID:     winner.Solution.SolutionID,
			Score:          winner.Solution.Score.Dec(),
			ReferenceScore: winner.ReferenceScore.Dec(),
		})
	}

	return RankingReport{
		AuctionID:         auctionID,
		DeadlineBlock:     deadlineBlock,
		OrderedCandidates: candidates,
		Winners:           winners,
		Rejections:        rejections,
	}
}

// detEncMode is the deterministic CBOR encoding used for cross-party
// exchange: map keys sorted, shortest-form integers, no floating point
// ambiguity. Two processes encoding the same report produce identical bytes.
var detEncMode cbor.EncMode

func init() {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("building deterministic CBOR mode: %v", err))
	}
	detEncMode = mode
}

// EncodeCBOR serializes v with the deterministic CBOR mode.
func EncodeCBOR(v any) ([]byte, error) {
	return detEncMode.Marshal(v)
}

// DecodeCBOR deserializes deterministic CBOR produced by EncodeCBOR.
func DecodeCBOR(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// EncodeJSON serializes v as indented JSON for human-facing output.
func EncodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// DecodeJSON deserializes JSON input.
func DecodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
