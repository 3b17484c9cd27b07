package core

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

func testOrderID(b byte) OrderID {
	var id OrderID
	id[0] = b
	return id
}

var (
	testTokenA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTokenB = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func testExecution(order byte, sell, buy, fee uint64) OrderExecution {
	return OrderExecution{
		Order:        testOrderID(order),
		Side:         SideSell,
		SellToken:    testTokenA,
		BuyToken:     testTokenB,
		ExecutedSell: uint256.NewInt(sell),
		ExecutedBuy:  uint256.NewInt(buy),
		Fee:          uint256.NewInt(fee),
	}
}

func TestComputeFingerprint_Deterministic(t *testing.T) {
	orders := []OrderExecution{
		testExecution(1, 100, 200, 3),
		testExecution(2, 50, 75, 1),
	}

	fp1 := ComputeFingerprint(orders)
	fp2 := ComputeFingerprint(orders)
	if fp1 != fp2 {
		t.Errorf("ComputeFingerprint() not deterministic")
	}
}

func TestComputeFingerprint_OrderInsensitive(t *testing.T) {
	a := testExecution(1, 100, 200, 3)
	b := testExecution(2, 50, 75, 1)

	fp1 := ComputeFingerprint([]OrderExecution{a, b})
	fp2 := ComputeFingerprint([]OrderExecution{b, a})
	if fp1 != fp2 {
		t.Errorf("Reordering order executions must not change the fingerprint")
	}
}

func TestComputeFingerprint_ContentSensitive(t *testing.T) {
	base := []OrderExecution{testExecution(1, 100, 200, 3)}
	baseFP := ComputeFingerprint(base)

	mutations := map[string][]OrderExecution{
		"order id":      {testExecution(9, 100, 200, 3)},
		"executed sell": {testExecution(1, 101, 200, 3)},
		"executed buy":  {testExecution(1, 100, 201, 3)},
		"fee":           {testExecution(1, 100, 200, 4)},
		"extra order":   {testExecution(1, 100, 200, 3), testExecution(2, 1, 1, 0)},
	}
	for name, mutated := range mutations {
		if ComputeFingerprint(mutated) == baseFP {
			t.Errorf("Changing %s must change the fingerprint", name)
		}
	}

	sideFlipped := testExecution(1, 100, 200, 3)
	sideFlipped.Side = SideBuy
	if ComputeFingerprint([]OrderExecution{sideFlipped}) == baseFP {
		t.Errorf("Changing the side must change the fingerprint")
	}

	tokenFlipped := testExecution(1, 100, 200, 3)
	tokenFlipped.SellToken, tokenFlipped.BuyToken = tokenFlipped.BuyToken, tokenFlipped.SellToken
	if ComputeFingerprint([]OrderExecution{tokenFlipped}) == baseFP {
		t.Errorf("Swapping tokens must change the fingerprint")
	}
}

func TestComputeFingerprint_IgnoresTransientMetadata(t *testing.T) {
	orders := []OrderExecution{testExecution(1, 100, 200, 3)}

	s1, err := NewSolution(common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 1, orders, uint256.NewInt(10), nil)
	if err != nil {
		t.Fatalf("NewSolution() error: %v", err)
	}
	s2, err := NewSolution(common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), 7, orders, uint256.NewInt(99), map[common.Address]*uint256.Int{
		testTokenA: uint256.NewInt(1),
	})
	if err != nil {
		t.Fatalf("NewSolution() error: %v", err)
	}

	// Same economic content from different solvers with different ids,
	// scores and clearing prices must hash identically.
	if s1.Fingerprint() != s2.Fingerprint() {
		t.Errorf("Fingerprint must only depend on order execution content")
	}
}

func TestComputeFingerprint_Encoding(t *testing.T) {
	execution := testExecution(5, 100, 200, 3)

	// Rebuild the canonical encoding by hand and verify the digest.
	buf := binary.BigEndian.AppendUint64(nil, 1)
	buf = append(buf, execution.Order[:]...)
	buf = append(buf, byte(SideSell))
	buf = append(buf, testTokenA[:]...)
	buf = append(buf, testTokenB[:]...)
	for _, amount := range []*uint256.Int{uint256.NewInt(100), uint256.NewInt(200), uint256.NewInt(3)} {
		b32 := amount.Bytes32()
		buf = append(buf, b32[:]...)
	}
	expected := crypto.Keccak256Hash(buf)

	got := ComputeFingerprint([]OrderExecution{execution})
	if got != expected {
		t.Errorf("ComputeFingerprint() = %s, want %s", got.Hex(), expected.Hex())
	}
}

func TestComputeFingerprint_NilAmountsEncodeAsZero(t *testing.T) {
	withNil := testExecution(1, 0, 0, 0)
	withNil.ExecutedSell = nil
	withNil.ExecutedBuy = nil
	withNil.Fee = nil

	withZero := testExecution(1, 0, 0, 0)

	if ComputeFingerprint([]OrderExecution{withNil}) != ComputeFingerprint([]OrderExecution{withZero}) {
		t.Errorf("nil amounts must encode as zero")
	}
}

func TestComputeFingerprint_Empty(t *testing.T) {
	fp := ComputeFingerprint(nil)
	expected := crypto.Keccak256Hash(binary.BigEndian.AppendUint64(nil, 0))
	if fp != expected {
		t.Errorf("ComputeFingerprint(nil) = %s, want %s", fp.Hex(), expected.Hex())
	}
}
