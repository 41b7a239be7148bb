// internal/quote/quote_test.go
package quote

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

func TestAmountConversionRoundTrip(t *testing.T) {
	amount := uint64(1_500_000_000)
	display := AmountToDecimal(amount, SolDecimals)
	assert.Equal(t, "1.5", display.String())
	assert.Equal(t, amount, DecimalToAmount(display, SolDecimals))
}

func TestDecimalToAmountRejectsFractional(t *testing.T) {
	// One digit finer than a lamport.
	tooFine := decimal.RequireFromString("0.0000000001").Div(decimal.NewFromInt(10))
	assert.Equal(t, uint64(0), DecimalToAmount(tooFine, SolDecimals))
	assert.Equal(t, uint64(0), DecimalToAmount(decimal.NewFromInt(-1), SolDecimals))
}

func TestDecimalToAmountFullUint64Range(t *testing.T) {
	// Values between MaxInt64 and MaxUint64 must not truncate.
	max := decimal.NewFromUint64(math.MaxUint64)
	assert.Equal(t, uint64(math.MaxUint64), DecimalToAmount(max, 0))

	aboveInt64 := decimal.NewFromUint64(uint64(math.MaxInt64) + 1)
	assert.Equal(t, uint64(math.MaxInt64)+1, DecimalToAmount(aboveInt64, 0))

	// One past the representable range maps to zero, not a wrapped value.
	over := max.Add(decimal.NewFromInt(1))
	assert.Equal(t, uint64(0), DecimalToAmount(over, 0))
}

func TestQuoteFromPool(t *testing.T) {
	pool := &launch.LaunchPool{
		TokenSymbol:         "TEST",
		BasePrice:           1_000_000_000,
		Slope:               0,
		TokensSoldCurve:     42_000_000,
		CurveFundsCollected: 50_000_000_000,
		GraduationThreshold: 100_000_000_000,
		Phase:               launch.BondingCurve,
		BuyerCount:          7,
	}

	q := FromPool(pool)
	assert.Equal(t, "TEST", q.Symbol)
	assert.Equal(t, "bonding_curve", q.Phase)
	assert.Equal(t, "1", q.SpotPrice.String())
	assert.Equal(t, "50", q.FundsRaised.String())
	assert.Equal(t, "42", q.TokensSold.String())
	assert.Equal(t, "50", q.ProgressPct.String())
	assert.Equal(t, uint32(7), q.BuyerCount)
}

func TestQuoteProgressCapped(t *testing.T) {
	pool := &launch.LaunchPool{
		TokenSymbol:         "OVER",
		BasePrice:           1000,
		CurveFundsCollected: 200,
		GraduationThreshold: 100,
		Phase:               launch.Graduated,
	}

	q := FromPool(pool)
	assert.True(t, q.ProgressPct.Equal(decimal.NewFromInt(100)))
}

func TestQuotePresaleUsesTotalFunds(t *testing.T) {
	pool := &launch.LaunchPool{
		TokenSymbol:         "PRE",
		BasePrice:           1000,
		TotalFundsCollected: 3_000_000_000,
		Phase:               launch.Presale,
	}

	q := FromPool(pool)
	assert.Equal(t, "3", q.FundsRaised.String())
}
