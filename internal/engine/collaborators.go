// internal/engine/collaborators.go
package engine

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ProgramID anchors authority derivation. The same seeds always resolve
// to the same vault and mint authority for a given launch.
var ProgramID = solana.MustPublicKeyFromBase58("3Sew3pFCTkvFZ8Ayj2CgrL2cr9FBTR5ChNytPmUMi5mu")

// ErrInsufficientFunds is returned by a funds custody when the payer
// cannot cover the requested amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// LaunchAuthority is the capability to move funds and mint/burn tokens
// "as the launch". Derived once at launch creation from the mint and
// handed to collaborators instead of being re-derived per call.
type LaunchAuthority struct {
	Mint    solana.PublicKey
	Address solana.PublicKey
	Bump    uint8
}

// DeriveLaunchAuthority resolves the deterministic authority address for
// a launch mint.
func DeriveLaunchAuthority(mint solana.PublicKey) (LaunchAuthority, error) {
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte("launch_pool"), mint.Bytes()},
		ProgramID,
	)
	if err != nil {
		return LaunchAuthority{}, err
	}
	return LaunchAuthority{Mint: mint, Address: addr, Bump: bump}, nil
}

// FundsCustody moves the settlement currency. Transfers are atomic and
// all-or-nothing: on error no balance has changed. A transfer from a
// payer without sufficient balance fails with ErrInsufficientFunds.
type FundsCustody interface {
	Transfer(ctx context.Context, from, to solana.PublicKey, amount uint64) error
	Balance(ctx context.Context, owner solana.PublicKey) (uint64, error)
}

// TokenIssuer mints, burns and transfers the launched token. Mint and
// burn require the launch authority capability. All operations are
// atomic and never partially applied.
type TokenIssuer interface {
	MintTo(ctx context.Context, auth LaunchAuthority, to solana.PublicKey, amount uint64) error
	Burn(ctx context.Context, auth LaunchAuthority, from solana.PublicKey, amount uint64) error
	Transfer(ctx context.Context, mint, from, to solana.PublicKey, amount uint64) error
	Balance(ctx context.Context, mint, owner solana.PublicKey) (uint64, error)
}
