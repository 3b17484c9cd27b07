package core

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// OrderIDLen is the byte length of an order identifier: the order owner
// (20 bytes), the order digest (32 bytes) and the validity timestamp (4 bytes).
const OrderIDLen = 56

// OrderID uniquely identifies an order across the whole venue.
type OrderID [OrderIDLen]byte

// OrderIDFromHex parses a 0x-prefixed hex order identifier.
func OrderIDFromHex(s string) (OrderID, error) {
	var id OrderID
	if !strings.HasPrefix(s, "0x") {
		return id, fmt.Errorf("order id missing 0x prefix: %q", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return id, fmt.Errorf("order id is not valid hex: %w", err)
	}
	if len(raw) != OrderIDLen {
		return id, fmt.Errorf("order id must be %d bytes, got %d", OrderIDLen, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (id OrderID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Cmp compares two order identifiers lexicographically.
func (id OrderID) Cmp(other OrderID) int {
	return bytes.Compare(id[:], other[:])
}

// Side indicates whether an order sells a fixed amount or buys a fixed amount.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// OrderExecution records one order being (partially or fully) filled within a
// solution. Immutable once attached to a solution.
type OrderExecution struct {
	Order        OrderID
	Side         Side
	SellToken    common.Address
	BuyToken     common.Address
	ExecutedSell *uint256.Int
	ExecutedBuy  *uint256.Int
	Fee          *uint256.Int
}

// Solution is one solver's complete proposed batch: a set of order executions
// with a uniform clearing price per token and a claimed score.
//
// Solutions are immutable after construction. The touched-order set and the
// content fingerprint are computed once by NewSolution so that pairwise
// overlap checks and ranking tie-breaks never recompute them.
type Solution struct {
	Solver     common.Address
	SolutionID uint64

	// Orders is kept sorted by order id. An order id appears at most once.
	Orders []OrderExecution

	// Score is the claimed surplus denominated in the native asset. Never
	// negative: the validation gate rejects unparseable or negative scores
	// before a Solution is constructed.
	Score *uint256.Int

	// ClearingPrices is carried through for downstream settlement; the
	// ranking algorithm itself never reads it.
	ClearingPrices map[common.Address]*uint256.Int

	touched     map[OrderID]struct{}
	fingerprint common.Hash
}

// NewSolution canonicalizes the order executions (sorted by order id) and
// precomputes the touched-order set and fingerprint. It returns an error if
// the same order id appears more than once.
func NewSolution(
	solver common.Address,
	solutionID uint64,
	orders []OrderExecution,
	score *uint256.Int,
	clearingPrices map[common.Address]*uint256.Int,
) (*Solution, error) {
	if score == nil {
		score = new(uint256.Int)
	}

	sorted := make([]OrderExecution, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Order.Cmp(sorted[j].Order) < 0
	})

	touched := make(map[OrderID]struct{}, len(sorted))
	for _, execution := range sorted {
		if _, ok := touched[execution.Order]; ok {
			return nil, fmt.Errorf("order %s appears more than once", execution.Order)
		}
		touched[execution.Order] = struct{}{}
	}

	return &Solution{
		Solver:         solver,
		SolutionID:     solutionID,
		Orders:         sorted,
		Score:          score,
		ClearingPrices: clearingPrices,
		touched:        touched,
		fingerprint:    ComputeFingerprint(sorted),
	}, nil
}

// Fingerprint returns the canonical content digest of the solution's
// economically relevant content. See ComputeFingerprint.
func (s *Solution) Fingerprint() common.Hash {
	return s.fingerprint
}

// TouchedOrders returns the set of order ids this solution executes.
// The returned map must not be mutated.
func (s *Solution) TouchedOrders() map[OrderID]struct{} {
	return s.touched
}

// Compare defines the canonical total order over solutions used for all
// deterministic bookkeeping: fingerprint ascending, then solver address,
// then solver-local solution id. Two distinct submissions always compare
// unequal because (solver, solution id) pairs are unique within a round.
func Compare(a, b *Solution) int {
	if c := bytes.Compare(a.fingerprint[:], b.fingerprint[:]); c != 0 {
		return c
	}
	if c := bytes.Compare(a.Solver[:], b.Solver[:]); c != 0 {
		return c
	}
	switch {
	case a.SolutionID < b.SolutionID:
		return -1
	case a.SolutionID > b.SolutionID:
		return 1
	}
	return 0
}
