// internal/launch/pool.go
package launch

import (
	"github.com/gagliardetto/solana-go"
)

// Phase is the launch lifecycle state. Transitions are monotonic and
// one-directional: Presale -> BondingCurve -> Graduated, with Closed as
// a terminal cancellation state reachable only from Presale.
type Phase uint8

const (
	// Presale: fixed-price window is open, buyers deposit funds.
	Presale Phase = iota
	// BondingCurve: presale finalized, algorithmic curve trading is live
	// and the price floor is enforced.
	BondingCurve
	// Graduated: curve funding passed the threshold; the floor is lifted.
	Graduated
	// Closed: launch cancelled during presale. Terminal, no economic effect
	// beyond halting further operations.
	Closed
)

func (p Phase) String() string {
	switch p {
	case Presale:
		return "presale"
	case BondingCurve:
		return "bonding_curve"
	case Graduated:
		return "graduated"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	// MaxNameLen and MaxSymbolLen bound the launch metadata strings (bytes, UTF-8).
	MaxNameLen   = 32
	MaxSymbolLen = 10

	// Presale window bounds in seconds. The default matches the classic
	// 30-second launch; the range is configurable per launch.
	MinPresaleWindow     = 10
	MaxPresaleWindow     = 120
	DefaultPresaleWindow = 30
)

// LaunchPool is the per-launch aggregate: identity, pricing parameters,
// timing window, totals and lifecycle phase. One pool exists per mint.
type LaunchPool struct {
	Creator     solana.PublicKey
	Mint        solana.PublicKey
	TokenName   string
	TokenSymbol string

	// Economics. BasePrice is the fixed presale price and the curve base;
	// Slope is fixed-point, scaled by 1e9 (0 means a flat curve).
	TotalSupply         uint64
	BasePrice           uint64
	Slope               uint64
	TokensSoldCurve     uint64
	CurveFundsCollected uint64
	GraduationThreshold uint64

	// Presale window (unix seconds).
	StartTime int64
	EndTime   int64

	// Presale aggregates.
	TotalFundsCollected uint64
	BuyerCount          uint32

	Phase Phase
}

// PoolParams carries the creator-supplied launch parameters.
type PoolParams struct {
	Creator             solana.PublicKey
	Mint                solana.PublicKey
	TokenName           string
	TokenSymbol         string
	TotalSupply         uint64
	BasePrice           uint64
	Slope               uint64
	GraduationThreshold uint64
	WindowSeconds       int64
}

// NewPool validates the parameters and returns a pool in the Presale
// phase with the window anchored at now.
func NewPool(p PoolParams, now int64) (*LaunchPool, error) {
	if len(p.TokenName) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if len(p.TokenSymbol) > MaxSymbolLen {
		return nil, ErrSymbolTooLong
	}
	if p.TotalSupply == 0 {
		return nil, ErrZeroSupply
	}
	if p.BasePrice == 0 {
		return nil, ErrZeroPrice
	}
	if p.WindowSeconds < MinPresaleWindow || p.WindowSeconds > MaxPresaleWindow {
		return nil, ErrInvalidPresaleWindow
	}

	return &LaunchPool{
		Creator:             p.Creator,
		Mint:                p.Mint,
		TokenName:           p.TokenName,
		TokenSymbol:         p.TokenSymbol,
		TotalSupply:         p.TotalSupply,
		BasePrice:           p.BasePrice,
		Slope:               p.Slope,
		GraduationThreshold: p.GraduationThreshold,
		StartTime:           now,
		EndTime:             now + p.WindowSeconds,
		Phase:               Presale,
	}, nil
}

// IsPresaleActive reports whether deposits are currently accepted.
func (p *LaunchPool) IsPresaleActive(now int64) bool {
	return p.Phase == Presale && now >= p.StartTime && now < p.EndTime
}

// IsPresaleOver reports whether the presale window has elapsed.
func (p *LaunchPool) IsPresaleOver(now int64) bool {
	return now >= p.EndTime
}

// ShouldGraduate reports whether cumulative curve funding has reached the
// graduation threshold. Exact equality counts.
func (p *LaunchPool) ShouldGraduate() bool {
	return p.Phase == BondingCurve && p.CurveFundsCollected >= p.GraduationThreshold
}

// Advance moves the pool to the next phase, enforcing the one-way state
// machine. No phase is ever revisited.
func (p *LaunchPool) Advance(next Phase) error {
	switch {
	case p.Phase == Presale && next == BondingCurve:
	case p.Phase == Presale && next == Closed:
	case p.Phase == BondingCurve && next == Graduated:
	default:
		return ErrPhaseTransition
	}
	p.Phase = next
	return nil
}
