// Package auctionapi defines the wire types exchanged between the auctioneer,
// solvers and verifying agents: the auction snapshot consumed by a round, the
// raw solutions submitted by solvers, and the ranking report published after
// arbitration.
//
// Scalars use the venue's canonical text encodings: addresses and order ids
// are 0x-prefixed hex, 256-bit amounts are decimal strings. JSON is the
// human-facing format; deterministic CBOR is used wherever two parties must
// derive identical bytes from identical content.
package auctionapi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/cloudx-io/batchauction/core"
)

// RawSolution is one solver's submission for a round, exactly as received.
// It is adapted into a core.Solution by the validation gate; nothing here is
// trusted until that gate accepts it.
type RawSolution struct {
	Solver     string              `json:"solver"`
	SolutionID uint64              `json:"solution_id"`
	Orders     []RawOrderExecution `json:"orders"`
	Score      string              `json:"score"`
	// ClearingPrices maps token address to the uniform price used for this
	// batch. Carried through for settlement, unused by ranking.
	ClearingPrices map[string]string `json:"clearing_prices"`
	// DeadlineBlock optionally echoes the block deadline the solver computed
	// against. When present it must match the round's deadline.
	DeadlineBlock uint64 `json:"deadline_block,omitempty"`
}

// RawOrderExecution is the wire form of one order fill within a solution.
type RawOrderExecution struct {
	Order        string `json:"order"`
	Side         string `json:"side"`
	SellToken    string `json:"sell_token"`
	BuyToken     string `json:"buy_token"`
	ExecutedSell string `json:"executed_sell"`
	ExecutedBuy  string `json:"executed_buy"`
	Fee          string `json:"fee,omitempty"`
}

// FeePolicyDTO is the wire form of a per-order fee policy.
type FeePolicyDTO struct {
	Kind            string `json:"kind"`
	Factor          string `json:"factor"`
	MaxVolumeFactor string `json:"max_volume_factor,omitempty"`
}

// AuctionSnapshot is the immutable input of one auction round: the round
// parameters plus every solution submitted before the collection deadline.
// The same snapshot is what a verifying agent replays to cross-check the
// coordinator's ranking.
type AuctionSnapshot struct {
	AuctionID      int64                     `json:"auction_id"`
	DeadlineBlock  uint64                    `json:"deadline_block"`
	KnownOrders    []string                  `json:"known_orders"`
	ExternalPrices map[string]string         `json:"external_prices"`
	FeePolicies    map[string][]FeePolicyDTO `json:"fee_policies,omitempty"`
	Solutions      []RawSolution             `json:"solutions"`
}

// Rejection reports one solution dropped by the validation gate. The rest of
// the round proceeds unaffected.
type Rejection struct {
	Solver     string `json:"solver"`
	SolutionID uint64 `json:"solution_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

// ParseAddress parses a 0x-prefixed 20-byte hex address. The prefix is
// required: addresses arrive in exactly one form on the wire.
func ParseAddress(s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("not a valid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a non-negative 256-bit decimal amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("amount is negative: %q", s)
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("not a valid amount: %q: %w", s, err)
	}
	return amount, nil
}

// ParseOptionalAmount is ParseAmount treating the empty string as zero,
// for fields that may be omitted on the wire.
func ParseOptionalAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	return ParseAmount(s)
}

// ParseSide parses an order side ("buy" or "sell").
func ParseSide(s string) (core.Side, error) {
	switch s {
	case "buy":
		return core.SideBuy, nil
	case "sell":
		return core.SideSell, nil
	default:
		return 0, fmt.Errorf("not a valid side: %q", s)
	}
}

// FormatSide is the inverse of ParseSide.
func FormatSide(side core.Side) string {
	return side.String()
}
