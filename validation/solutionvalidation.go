// Package validation is the gate between raw solver submissions and the
// arbitrator: it adapts wire solutions into canonical core solutions and
// rejects anything the round cannot account for. The arbitrator can assume
// well-formed input and stay a pure combinatorial function because nothing
// reaches it without passing this gate.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/batchauction/auctionapi"
	"github.com/cloudx-io/batchauction/core"
)

// ValidateSolution checks a raw solution against the auction context and
// adapts it into a core.Solution. Validation is idempotent: the same raw
// solution against the same context always yields the same decision.
//
// Checks, in order:
//   - solver address and score are parseable, score is non-negative
//   - the solver's deadline assumption, when present, matches the round
//   - the solution executes at least one order
//   - every order id is well formed, unique within the solution, and known
//     to the round
//   - every referenced token has an external price
//   - executed amounts and fees are parseable non-negative 256-bit values
//   - clearing price entries are well formed and priced tokens
func ValidateSolution(ctx *AuctionContext, raw *auctionapi.RawSolution) (*core.Solution, *ValidationError) {
	reject := func(kind ErrorKind, format string, args ...any) (*core.Solution, *ValidationError) {
		return nil, &ValidationError{
			Solver:     raw.Solver,
			SolutionID: raw.SolutionID,
			Kind:       kind,
			Detail:     fmt.Sprintf(format, args...),
		}
	}

	solver, err := auctionapi.ParseAddress(raw.Solver)
	if err != nil {
		return reject(ErrMalformedAddress, "solver: %v", err)
	}

	score, kind, err := parseScore(raw.Score)
	if err != nil {
		return reject(kind, "%v", err)
	}

	if raw.DeadlineBlock != 0 && raw.DeadlineBlock != ctx.DeadlineBlock {
		return reject(ErrDeadlineMismatch, "solution computed for block %d, round deadline is %d", raw.DeadlineBlock, ctx.DeadlineBlock)
	}

	if len(raw.Orders) == 0 {
		return reject(ErrEmptySolution, "solution executes no orders")
	}

	executions := make([]core.OrderExecution, 0, len(raw.Orders))
	seen := make(map[core.OrderID]struct{}, len(raw.Orders))
	for _, rawOrder := range raw.Orders {
		orderID, err := core.OrderIDFromHex(rawOrder.Order)
		if err != nil {
			return reject(ErrMalformedOrderID, "%v", err)
		}
		if _, ok := seen[orderID]; ok {
			return reject(ErrDuplicateOrder, "order %s executed twice", orderID)
		}
		seen[orderID] = struct{}{}

		if _, ok := ctx.KnownOrders[orderID]; !ok {
			return reject(ErrUnknownOrder, "order %s is not part of this auction", orderID)
		}

		side, err := auctionapi.ParseSide(rawOrder.Side)
		if err != nil {
			return reject(ErrMalformedSide, "order %s: %v", orderID, err)
		}

		sellToken, err := parsePricedToken(ctx, rawOrder.SellToken)
		if err != nil {
			return reject(tokenErrorKind(err), "order %s sell token: %v", orderID, err)
		}
		buyToken, err := parsePricedToken(ctx, rawOrder.BuyToken)
		if err != nil {
			return reject(tokenErrorKind(err), "order %s buy token: %v", orderID, err)
		}

		executedSell, err := auctionapi.ParseAmount(rawOrder.ExecutedSell)
		if err != nil {
			return reject(ErrMalformedAmount, "order %s executed sell: %v", orderID, err)
		}
		executedBuy, err := auctionapi.ParseAmount(rawOrder.ExecutedBuy)
		if err != nil {
			return reject(ErrMalformedAmount, "order %s executed buy: %v", orderID, err)
		}
		fee, err := auctionapi.ParseOptionalAmount(rawOrder.Fee)
		if err != nil {
			return reject(ErrMalformedAmount, "order %s fee: %v", orderID, err)
		}

		executions = append(executions, core.OrderExecution{
			Order:        orderID,
			Side:         side,
			SellToken:    sellToken,
			BuyToken:     buyToken,
			ExecutedSell: executedSell,
			ExecutedBuy:  executedBuy,
			Fee:          fee,
		})
	}

	clearingPrices := make(map[common.Address]*uint256.Int, len(raw.ClearingPrices))
	for rawToken, rawPrice := range raw.ClearingPrices {
		token, err := parsePricedToken(ctx, rawToken)
		if err != nil {
			return reject(tokenErrorKind(err), "clearing price token: %v", err)
		}
		price, err := auctionapi.ParseAmount(rawPrice)
		if err != nil {
			return reject(ErrMalformedAmount, "clearing price for %s: %v", token.Hex(), err)
		}
		clearingPrices[token] = price
	}

	solution, err := core.NewSolution(solver, raw.SolutionID, executions, score, clearingPrices)
	if err != nil {
		// NewSolution only fails on duplicate orders, which the loop above
		// already caught; keep the guard in case the invariant moves.
		return reject(ErrDuplicateOrder, "%v", err)
	}
	return solution, nil
}

// ValidateAll validates every raw solution of a round, partitioning them into
// adapted solutions (in submission order) and structured rejections.
func ValidateAll(ctx *AuctionContext, raws []auctionapi.RawSolution) ([]*core.Solution, []*ValidationError) {
	solutions := make([]*core.Solution, 0, len(raws))
	var rejections []*ValidationError

	for i := range raws {
		solution, verr := ValidateSolution(ctx, &raws[i])
		if verr != nil {
			rejections = append(rejections, verr)
			continue
		}
		solutions = append(solutions, solution)
	}

	return solutions, rejections
}

// ContextFromSnapshot adapts a wire snapshot into a validated AuctionContext.
func ContextFromSnapshot(snapshot *auctionapi.AuctionSnapshot) (*AuctionContext, error) {
	knownOrders := make(map[core.OrderID]struct{}, len(snapshot.KnownOrders))
	for _, rawID := range snapshot.KnownOrders {
		orderID, err := core.OrderIDFromHex(rawID)
		if err != nil {
			return nil, fmt.Errorf("known order: %w", err)
		}
		knownOrders[orderID] = struct{}{}
	}

	prices := make(map[common.Address]*uint256.Int, len(snapshot.ExternalPrices))
	for rawToken, rawPrice := range snapshot.ExternalPrices {
		token, err := auctionapi.ParseAddress(rawToken)
		if err != nil {
			return nil, fmt.Errorf("external price token: %w", err)
		}
		price, err := auctionapi.ParseAmount(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("external price for %s: %w", token.Hex(), err)
		}
		prices[token] = price
	}

	feePolicies := make(map[core.OrderID][]FeePolicy, len(snapshot.FeePolicies))
	for rawID, rawPolicies := range snapshot.FeePolicies {
		orderID, err := core.OrderIDFromHex(rawID)
		if err != nil {
			return nil, fmt.Errorf("fee policy order: %w", err)
		}
		policies := make([]FeePolicy, 0, len(rawPolicies))
		for _, rawPolicy := range rawPolicies {
			policy, err := parseFeePolicy(rawPolicy)
			if err != nil {
				return nil, fmt.Errorf("fee policy for %s: %w", orderID, err)
			}
			policies = append(policies, policy)
		}
		feePolicies[orderID] = policies
	}

	ctx := &AuctionContext{
		AuctionID:      snapshot.AuctionID,
		DeadlineBlock:  snapshot.DeadlineBlock,
		KnownOrders:    knownOrders,
		ExternalPrices: prices,
		FeePolicies:    feePolicies,
	}
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func parseFeePolicy(raw auctionapi.FeePolicyDTO) (FeePolicy, error) {
	factor, err := decimal.NewFromString(raw.Factor)
	if err != nil {
		return FeePolicy{}, fmt.Errorf("factor %q: %w", raw.Factor, err)
	}
	maxVolume := decimal.Zero
	if raw.MaxVolumeFactor != "" {
		maxVolume, err = decimal.NewFromString(raw.MaxVolumeFactor)
		if err != nil {
			return FeePolicy{}, fmt.Errorf("max volume factor %q: %w", raw.MaxVolumeFactor, err)
		}
	}
	return FeePolicy{
		Kind:            PolicyKind(raw.Kind),
		Factor:          factor,
		MaxVolumeFactor: maxVolume,
	}, nil
}

// parseScore distinguishes negative scores from otherwise unparseable ones so
// the rejection reason is precise.
func parseScore(raw string) (*uint256.Int, ErrorKind, error) {
	if strings.HasPrefix(raw, "-") {
		return nil, ErrNegativeScore, fmt.Errorf("score %q is negative", raw)
	}
	score, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, ErrUnparseableScore, fmt.Errorf("score %q: %w", raw, err)
	}
	return score, "", nil
}

type unknownTokenError struct {
	token common.Address
}

func (e *unknownTokenError) Error() string {
	return fmt.Sprintf("token %s has no external price in this auction", e.token.Hex())
}

// parsePricedToken parses a token address and confirms the round prices it.
func parsePricedToken(ctx *AuctionContext, raw string) (common.Address, error) {
	token, err := auctionapi.ParseAddress(raw)
	if err != nil {
		return common.Address{}, err
	}
	if _, ok := ctx.ExternalPrices[token]; !ok {
		return common.Address{}, &unknownTokenError{token: token}
	}
	return token, nil
}

// tokenErrorKind maps a token parse failure to its rejection kind.
func tokenErrorKind(err error) ErrorKind {
	var unknown *unknownTokenError
	if errors.As(err, &unknown) {
		return ErrUnknownToken
	}
	return ErrMalformedAddress
}
