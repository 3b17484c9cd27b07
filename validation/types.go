package validation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/batchauction/core"
)

// PolicyKind identifies how a protocol fee is taken from an order execution.
type PolicyKind string

const (
	PolicySurplus          PolicyKind = "surplus"
	PolicyPriceImprovement PolicyKind = "priceImprovement"
	PolicyVolume           PolicyKind = "volume"
)

// FeePolicy is one fee rule attached to an order for the round. Factors are
// decimal fractions; exact decimal arithmetic avoids float drift when the
// same policy is checked by independent parties.
type FeePolicy struct {
	Kind            PolicyKind
	Factor          decimal.Decimal
	MaxVolumeFactor decimal.Decimal
}

// validate checks the policy is well formed: a known kind and factors in
// [0, 1). A factor of 1 would make the fee formula divide by zero downstream.
func (p FeePolicy) validate() error {
	switch p.Kind {
	case PolicySurplus, PolicyPriceImprovement, PolicyVolume:
	default:
		return fmt.Errorf("unknown fee policy kind %q", p.Kind)
	}
	one := decimal.NewFromInt(1)
	if p.Factor.IsNegative() || p.Factor.Cmp(one) >= 0 {
		return fmt.Errorf("fee factor %s out of range [0, 1)", p.Factor)
	}
	if p.MaxVolumeFactor.IsNegative() || p.MaxVolumeFactor.Cmp(one) >= 0 {
		return fmt.Errorf("max volume factor %s out of range [0, 1)", p.MaxVolumeFactor)
	}
	return nil
}

// AuctionContext is the read-only snapshot of auction-wide parameters a round
// is arbitrated against. It is passed by pointer into validation and never
// mutated; there is no process-wide auction state.
type AuctionContext struct {
	AuctionID     int64
	DeadlineBlock uint64

	// KnownOrders is the set of order ids eligible for this round.
	KnownOrders map[core.OrderID]struct{}

	// ExternalPrices maps every token tradable this round to its price in the
	// native asset. Ranking does not read prices, but downstream surplus and
	// fee accounting does, so a solution referencing an unpriced token is
	// rejected up front.
	ExternalPrices map[common.Address]*uint256.Int

	// FeePolicies per order, for all orders in the round.
	FeePolicies map[core.OrderID][]FeePolicy
}

// Validate checks the context itself is well formed before any solution is
// validated against it: prices present and non-zero, fee policies in range.
func (c *AuctionContext) Validate() error {
	for token, price := range c.ExternalPrices {
		if price == nil || price.IsZero() {
			return fmt.Errorf("token %s has no usable external price", token.Hex())
		}
	}
	for order, policies := range c.FeePolicies {
		if _, ok := c.KnownOrders[order]; !ok {
			return fmt.Errorf("fee policy for unknown order %s", order)
		}
		for _, policy := range policies {
			if err := policy.validate(); err != nil {
				return fmt.Errorf("order %s: %w", order, err)
			}
		}
	}
	return nil
}

// ErrorKind tags why a solution was rejected.
type ErrorKind string

const (
	ErrUnknownOrder      ErrorKind = "unknown_order"
	ErrUnknownToken      ErrorKind = "unknown_token"
	ErrNegativeScore     ErrorKind = "negative_score"
	ErrUnparseableScore  ErrorKind = "unparseable_score"
	ErrMalformedAmount   ErrorKind = "malformed_amount"
	ErrMalformedAddress  ErrorKind = "malformed_address"
	ErrMalformedOrderID  ErrorKind = "malformed_order_id"
	ErrMalformedSide     ErrorKind = "malformed_side"
	ErrDuplicateOrder    ErrorKind = "duplicate_order"
	ErrEmptySolution     ErrorKind = "empty_solution"
	ErrDeadlineMismatch  ErrorKind = "deadline_mismatch"
	ErrDuplicateSolution ErrorKind = "duplicate_solution"
)

// ValidationError is a per-solution rejection, tagged with the offending
// submission so it can be reported back to the solver. It never aborts the
// ranking of the remaining valid solutions.
type ValidationError struct {
	Solver     string
	SolutionID uint64
	Kind       ErrorKind
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("solution %d from %s rejected (%s): %s", e.SolutionID, e.Solver, e.Kind, e.Detail)
}
