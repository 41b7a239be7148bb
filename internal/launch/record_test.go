package launch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageEntryPrice(t *testing.T) {
	// No position yet: price 0 means "nothing to protect".
	r := &BuyerRecord{}
	entry, err := r.AverageEntryPrice()
	require.NoError(t, err)
	assert.Zero(t, entry)

	// Presale leg only: 10_000 funds for 10 tokens.
	r = &BuyerRecord{SolDeposited: 10_000, TokensAllocated: 10}
	entry, err = r.AverageEntryPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), entry)

	// Curve leg added at a higher price pulls the average up.
	require.NoError(t, r.AddCurvePurchase(10, 30_000))
	assert.Equal(t, uint64(2000), r.EntryPrice)
}

func TestAddCurvePurchaseWeighting(t *testing.T) {
	r := &BuyerRecord{SolDeposited: 3000, TokensAllocated: 3, EntryPrice: 1000}

	// Buying cheaper on the curve lowers the weighted average, but only
	// through an explicit purchase, never implicitly.
	require.NoError(t, r.AddCurvePurchase(3, 1500))
	assert.Equal(t, uint64(750), r.EntryPrice)
	assert.Equal(t, uint64(6), r.TotalTokens())
}

func TestAvailable(t *testing.T) {
	r := &BuyerRecord{TokensAllocated: 100, CurveTokensBought: 50}
	assert.Equal(t, uint64(150), r.Available())

	require.NoError(t, r.AddSale(120))
	assert.Equal(t, uint64(30), r.Available())
}

func TestCheckedAccumulationOverflow(t *testing.T) {
	r := &BuyerRecord{SolDeposited: math.MaxUint64}
	assert.ErrorIs(t, r.AddPresaleDeposit(1), ErrMathOverflow)
	// No partial mutation on failure.
	assert.Equal(t, uint64(math.MaxUint64), r.SolDeposited)

	r = &BuyerRecord{CurveSolSpent: math.MaxUint64}
	assert.ErrorIs(t, r.AddCurvePurchase(1, 1), ErrMathOverflow)
	assert.Zero(t, r.CurveTokensBought)

	r = &BuyerRecord{TokensSold: math.MaxUint64}
	assert.ErrorIs(t, r.AddSale(1), ErrMathOverflow)
}

func TestEntryPriceRollbackOnOverflow(t *testing.T) {
	// Each leg fits in uint64 but their sum does not: the purchase must
	// roll back entirely.
	r := &BuyerRecord{SolDeposited: math.MaxUint64 - 10, TokensAllocated: 1}
	err := r.AddCurvePurchase(1, 100)
	assert.ErrorIs(t, err, ErrMathOverflow)
	assert.Zero(t, r.CurveSolSpent)
	assert.Zero(t, r.CurveTokensBought)
}
