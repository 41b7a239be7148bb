// internal/launch/record.go
package launch

import (
	"math/bits"

	"github.com/gagliardetto/solana-go"
)

// BuyerRecord tracks one participant's cost basis and remaining inventory
// for a single launch. Created on the first deposit in either phase,
// mutated by every subsequent buy or sell, never deleted: it is the
// permanent sell-eligibility record for the price floor.
type BuyerRecord struct {
	Mint  solana.PublicKey
	Buyer solana.PublicKey

	// Presale leg.
	SolDeposited    uint64
	TokensAllocated uint64
	Finalized       bool

	// Bonding curve leg.
	CurveSolSpent     uint64
	CurveTokensBought uint64

	// Cumulative across both phases.
	TokensSold uint64

	// EntryPrice is the funds-weighted average acquisition price. Locked
	// to the presale price at finalization; recomputed on every curve buy.
	EntryPrice uint64
}

// TotalTokens returns all tokens ever acquired across both phases.
func (r *BuyerRecord) TotalTokens() uint64 {
	// Both legs are individually bounded by total supply, so this cannot wrap.
	return r.TokensAllocated + r.CurveTokensBought
}

// Available returns tokens still held and eligible to sell.
func (r *BuyerRecord) Available() uint64 {
	total := r.TotalTokens()
	if r.TokensSold > total {
		return 0
	}
	return total - r.TokensSold
}

// AverageEntryPrice recomputes the funds-weighted average price across the
// presale and curve legs:
//
//	(SolDeposited + CurveSolSpent) / (TokensAllocated + CurveTokensBought)
//
// Returns 0 when the participant holds no position yet.
func (r *BuyerRecord) AverageEntryPrice() (uint64, error) {
	tokens := r.TotalTokens()
	if tokens == 0 {
		return 0, nil
	}
	funds, err := checkedAdd(r.SolDeposited, r.CurveSolSpent)
	if err != nil {
		return 0, err
	}
	return funds / tokens, nil
}

// AddPresaleDeposit accumulates a presale deposit with overflow checking.
func (r *BuyerRecord) AddPresaleDeposit(amount uint64) error {
	sum, err := checkedAdd(r.SolDeposited, amount)
	if err != nil {
		return err
	}
	r.SolDeposited = sum
	return nil
}

// AddCurvePurchase accumulates a curve-phase purchase and recomputes the
// weighted entry price. Either everything applies or nothing does.
func (r *BuyerRecord) AddCurvePurchase(tokens, cost uint64) error {
	spent, err := checkedAdd(r.CurveSolSpent, cost)
	if err != nil {
		return err
	}
	bought, err := checkedAdd(r.CurveTokensBought, tokens)
	if err != nil {
		return err
	}

	saved := *r
	r.CurveSolSpent = spent
	r.CurveTokensBought = bought

	entry, err := r.AverageEntryPrice()
	if err != nil {
		*r = saved
		return err
	}
	r.EntryPrice = entry
	return nil
}

// AddSale accumulates sold tokens.
func (r *BuyerRecord) AddSale(amount uint64) error {
	sold, err := checkedAdd(r.TokensSold, amount)
	if err != nil {
		return err
	}
	r.TokensSold = sold
	return nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}
