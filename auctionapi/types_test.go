package auctionapi

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/batchauction/core"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x1111111111111111111111111111111111111111")
	assert.Nil(t, err)
	check.Equal(t, "0x1111111111111111111111111111111111111111", addr.Hex())

	// A bare 40-hex-char string without the 0x prefix is rejected too.
	for _, bad := range []string{"", "0x1234", "not an address", "0x11111111111111111111111111111111111111zz", "1111111111111111111111111111111111111111"} {
		if _, err := ParseAddress(bad); err == nil {
			t.Errorf("ParseAddress(%q) should fail", bad)
		}
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("1000000000000000000")
	assert.Nil(t, err)
	check.Equal(t, "1000000000000000000", amount.Dec())

	zero, err := ParseAmount("0")
	assert.Nil(t, err)
	check.True(t, zero.IsZero())

	for _, bad := range []string{"", "-1", "1.5", "0x10", "many"} {
		if _, err := ParseAmount(bad); err == nil {
			t.Errorf("ParseAmount(%q) should fail", bad)
		}
	}
}

func TestParseOptionalAmount(t *testing.T) {
	amount, err := ParseOptionalAmount("")
	assert.Nil(t, err)
	check.True(t, amount.IsZero())

	amount, err = ParseOptionalAmount("42")
	assert.Nil(t, err)
	check.Equal(t, "42", amount.Dec())

	_, err = ParseOptionalAmount("-42")
	check.NotNil(t, err)
}

func TestParseSide(t *testing.T) {
	buy, err := ParseSide("buy")
	assert.Nil(t, err)
	check.Equal(t, core.SideBuy, buy)

	sell, err := ParseSide("sell")
	assert.Nil(t, err)
	check.Equal(t, core.SideSell, sell)

	_, err = ParseSide("Buy")
	check.NotNil(t, err)

	check.Equal(t, "buy", FormatSide(core.SideBuy))
	check.Equal(t, "sell", FormatSide(core.SideSell))
}
