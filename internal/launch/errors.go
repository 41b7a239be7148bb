// internal/launch/errors.go
package launch

import (
	"errors"

	"github.com/rovshanmuradov/sames-engine/internal/curve"
)

// ErrMathOverflow aborts the enclosing operation with no partial state
// change. Shared with the curve package so callers match one sentinel.
var ErrMathOverflow = curve.ErrMathOverflow

// Validation errors, rejected before any mutation.
var (
	ErrZeroSupply           = errors.New("total supply must be greater than zero")
	ErrZeroPrice            = errors.New("price must be greater than zero")
	ErrZeroDeposit          = errors.New("deposit amount must be greater than zero")
	ErrZeroSellAmount       = errors.New("sell amount must be greater than zero")
	ErrNameTooLong          = errors.New("token name too long (max 32 bytes)")
	ErrSymbolTooLong        = errors.New("token symbol too long (max 10 bytes)")
	ErrInvalidPresaleWindow = errors.New("presale window outside the valid range")
)

// Temporal errors: operation attempted outside its valid window or phase.
var (
	ErrPresaleNotStarted  = errors.New("presale window has not started yet")
	ErrPresaleEnded       = errors.New("presale window has already ended")
	ErrPresaleStillActive = errors.New("presale window is still active")
	ErrAlreadyFinalized   = errors.New("already finalized")
	ErrNotFinalized       = errors.New("launch has not been finalized yet")
	ErrNotBondingCurve    = errors.New("not in bonding curve phase")
	ErrNotReadyToGraduate = errors.New("graduation threshold not reached yet")
	ErrLaunchClosed       = errors.New("launch has been closed")
	ErrPhaseTransition    = errors.New("illegal phase transition")
)

// Economic invariant errors, rejected with no mutation.
var (
	ErrSellBelowEntry      = errors.New("sell price below entry price")
	ErrHookSellBelowEntry  = errors.New("transfer hook: sell price below entry price")
	ErrInsufficientBalance = errors.New("insufficient token balance")
)

// Authorization and lookup errors.
var (
	ErrUnauthorizedCreator = errors.New("only the launch creator can call this")
	ErrNoBuyerRecord       = errors.New("no buyer record found")
	ErrInvalidMint         = errors.New("no launch pool for this mint")
	ErrInvalidMarket       = errors.New("invalid market account")
	ErrLaunchExists        = errors.New("launch pool already exists for this mint")
)
