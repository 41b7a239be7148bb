// internal/quote/quote.go
package quote

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/sames-engine/internal/curve"
	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

// Lamports per SOL and base units per launch token. Display only: the
// engine itself never leaves integer arithmetic.
const (
	SolDecimals   = 9
	TokenDecimals = 6
)

// AmountToDecimal converts a raw integer amount into display units.
func AmountToDecimal(amount uint64, decimals uint8) decimal.Decimal {
	multiplier := decimal.New(1, int32(decimals))
	return decimal.NewFromUint64(amount).Div(multiplier)
}

// DecimalToAmount converts a display amount back to raw units. Zero
// when the value does not map to a whole raw amount or does not fit in
// uint64.
func DecimalToAmount(amount decimal.Decimal, decimals uint8) uint64 {
	multiplier := decimal.New(1, int32(decimals))
	result := amount.Mul(multiplier)
	if !result.IsInteger() || result.IsNegative() {
		return 0
	}
	if result.GreaterThan(decimal.NewFromUint64(math.MaxUint64)) {
		return 0
	}
	// IntPart would truncate through int64 above MaxInt64.
	return result.BigInt().Uint64()
}

// Quote is a display-ready snapshot of a launch's pricing state.
type Quote struct {
	Symbol      string
	Phase       string
	SpotPrice   decimal.Decimal
	FundsRaised decimal.Decimal
	TokensSold  decimal.Decimal
	ProgressPct decimal.Decimal
	BuyerCount  uint32
}

// FromPool derives a quote from a pool snapshot.
func FromPool(pool *launch.LaunchPool) Quote {
	spot := curve.SpotPrice(pool.BasePrice, pool.Slope, pool.TokensSoldCurve)

	funds := pool.TotalFundsCollected
	if pool.Phase != launch.Presale {
		funds = pool.CurveFundsCollected
	}

	progress := decimal.Zero
	if pool.GraduationThreshold > 0 {
		progress = decimal.NewFromUint64(pool.CurveFundsCollected).
			Div(decimal.NewFromUint64(pool.GraduationThreshold)).
			Mul(decimal.NewFromInt(100))
		if progress.GreaterThan(decimal.NewFromInt(100)) {
			progress = decimal.NewFromInt(100)
		}
	}

	return Quote{
		Symbol:      pool.TokenSymbol,
		Phase:       pool.Phase.String(),
		SpotPrice:   AmountToDecimal(spot, SolDecimals),
		FundsRaised: AmountToDecimal(funds, SolDecimals),
		TokensSold:  AmountToDecimal(pool.TokensSoldCurve, TokenDecimals),
		ProgressPct: progress,
		BuyerCount:  pool.BuyerCount,
	}
}

// String renders the quote for logs and terminal output.
func (q Quote) String() string {
	return fmt.Sprintf("%s [%s] spot=%s raised=%s progress=%s%% buyers=%d",
		q.Symbol, q.Phase,
		q.SpotPrice.StringFixed(SolDecimals),
		q.FundsRaised.StringFixed(SolDecimals),
		q.ProgressPct.StringFixed(2),
		q.BuyerCount)
}
