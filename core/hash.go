package core

import (
	"encoding/binary"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Encoded width of one order execution: order id, side byte, two token
// addresses and three 32-byte big-endian amounts.
const executionEncodedLen = OrderIDLen + 1 + 2*common.AddressLength + 3*32

// ComputeFingerprint computes the canonical 256-bit content digest of a set of
// order executions. Two solutions with identical economic content hash
// identically regardless of submission order, solver identity or solver-local
// solution id.
//
// The encoding is fixed-width and big-endian so that independent
// implementations agree byte for byte:
//
//	keccak256(
//	    u64_be(len(orders))
//	    for each order execution, sorted by order id:
//	        order_id (56 bytes)
//	        side (1 byte: buy=0, sell=1)
//	        sell_token (20 bytes) | buy_token (20 bytes)
//	        executed_sell (32 bytes be) | executed_buy (32 bytes be)
//	        fee (32 bytes be)
//	)
//
// The digest deliberately excludes the solver address, the solution id and
// the clearing price vector: those are transient metadata, and the ranking
// tie-break must treat economically identical solutions as equal content.
func ComputeFingerprint(orders []OrderExecution) common.Hash {
	sorted := make([]OrderExecution, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Order.Cmp(sorted[j].Order) < 0
	})

	buf := make([]byte, 0, 8+len(sorted)*executionEncodedLen)
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(sorted)))

	for i := range sorted {
		execution := &sorted[i]
		buf = append(buf, execution.Order[:]...)
		buf = append(buf, byte(execution.Side))
		buf = append(buf, execution.SellToken[:]...)
		buf = append(buf, execution.BuyToken[:]...)
		buf = appendU256(buf, execution.ExecutedSell)
		buf = appendU256(buf, execution.ExecutedBuy)
		buf = appendU256(buf, execution.Fee)
	}

	return crypto.Keccak256Hash(buf)
}

// appendU256 appends the 32-byte big-endian encoding of x. A nil amount
// encodes as zero.
func appendU256(buf []byte, x *uint256.Int) []byte {
	if x == nil {
		x = new(uint256.Int)
	}
	b32 := x.Bytes32()
	return append(buf, b32[:]...)
}
