// internal/curve/curve.go
package curve

import (
	"errors"
	"math"
	"math/big"
)

// SlopeScale is the fixed-point scale applied to the slope parameter.
// A slope of 1_000_000_000 raises the price by one funds unit per token sold.
const SlopeScale = 1_000_000_000

// ErrMathOverflow is returned when a result does not fit in uint64.
var ErrMathOverflow = errors.New("curve: math overflow")

var (
	maxUint64  = new(big.Int).SetUint64(math.MaxUint64)
	slopeScale = big.NewInt(SlopeScale)
	two        = big.NewInt(2)
)

// Cost returns the funds required to buy amount tokens on a linear curve
// price(s) = basePrice + slope*s/SlopeScale, starting at cumulative sold.
//
// Closed form of the integral:
//
//	cost = basePrice*amount + slope*amount*(2*sold + amount) / (2*SlopeScale)
//
// Intermediates are computed in big.Int so the multiplications cannot
// overflow; the final result must fit in uint64 or ErrMathOverflow is
// returned. Division floors.
func Cost(basePrice, slope, sold, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, nil
	}

	amt := new(big.Int).SetUint64(amount)

	// basePrice * amount
	cost := new(big.Int).Mul(new(big.Int).SetUint64(basePrice), amt)

	if slope > 0 {
		// slope * amount * (2*sold + amount) / (2*SlopeScale)
		span := new(big.Int).Mul(new(big.Int).SetUint64(sold), two)
		span.Add(span, amt)

		slopePart := new(big.Int).Mul(new(big.Int).SetUint64(slope), amt)
		slopePart.Mul(slopePart, span)
		slopePart.Div(slopePart, new(big.Int).Mul(slopeScale, two))

		cost.Add(cost, slopePart)
	}

	return toUint64(cost)
}

// TokensForFunds returns the largest whole number of tokens purchasable
// with funds, starting at cumulative sold. It is the floor inverse of
// Cost: Cost(result) <= funds always holds.
//
// With slope == 0 the curve is flat and the inverse degenerates to plain
// division. Otherwise the quadratic formula applies; multiplying through
// by 2*SlopeScale keeps everything in integers:
//
//	slope*x^2 + (2*SlopeScale*basePrice + 2*slope*sold)*x - 2*SlopeScale*funds <= 0
//	x = (sqrt(b^2 + 8*SlopeScale*slope*funds) - b) / (2*slope)
//
// Returns 0 (not an error) when funds cannot buy a single token.
func TokensForFunds(basePrice, slope, sold, funds uint64) (uint64, error) {
	if funds == 0 {
		return 0, nil
	}

	if slope == 0 {
		if basePrice == 0 {
			return 0, ErrMathOverflow
		}
		return funds / basePrice, nil
	}

	// b = 2*SlopeScale*basePrice + 2*slope*sold
	b := new(big.Int).Mul(new(big.Int).SetUint64(basePrice), slopeScale)
	b.Mul(b, two)
	soldTerm := new(big.Int).Mul(new(big.Int).SetUint64(slope), new(big.Int).SetUint64(sold))
	soldTerm.Mul(soldTerm, two)
	b.Add(b, soldTerm)

	// disc = b^2 + 8*SlopeScale*slope*funds
	disc := new(big.Int).Mul(b, b)
	fundsTerm := new(big.Int).Mul(new(big.Int).SetUint64(slope), new(big.Int).SetUint64(funds))
	fundsTerm.Mul(fundsTerm, slopeScale)
	fundsTerm.Mul(fundsTerm, big.NewInt(8))
	disc.Add(disc, fundsTerm)

	// x = (isqrt(disc) - b) / (2*slope)
	x := isqrt(disc)
	x.Sub(x, b)
	if x.Sign() <= 0 {
		return 0, nil
	}
	x.Div(x, new(big.Int).Mul(new(big.Int).SetUint64(slope), two))

	return toUint64(x)
}

// SpotPrice returns the current marginal price after sold cumulative
// tokens. Saturates at the maximum representable price instead of
// overflowing.
func SpotPrice(basePrice, slope, sold uint64) uint64 {
	if slope == 0 {
		return basePrice
	}

	price := new(big.Int).Mul(new(big.Int).SetUint64(slope), new(big.Int).SetUint64(sold))
	price.Div(price, slopeScale)
	price.Add(price, new(big.Int).SetUint64(basePrice))

	if price.Cmp(maxUint64) > 0 {
		return math.MaxUint64
	}
	return price.Uint64()
}

// isqrt computes the integer square root (floor of the true root) using
// Newton's method. Deterministic: the iteration strictly decreases until
// it crosses the root, then stops.
func isqrt(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return big.NewInt(0)
	}

	// Initial guess: 2^(bits/2 + 1), always >= sqrt(n).
	x := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/2+1))
	for {
		// y = (x + n/x) / 2
		y := new(big.Int).Div(n, x)
		y.Add(y, x)
		y.Rsh(y, 1)
		if y.Cmp(x) >= 0 {
			return x
		}
		x = y
	}
}

func toUint64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 || v.Cmp(maxUint64) > 0 {
		return 0, ErrMathOverflow
	}
	return v.Uint64(), nil
}
