// internal/engine/memory.go
package engine

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

// MemoryBank is an in-memory FundsCustody used by tests and the local
// runner. Balances live in a map guarded by a single mutex; every
// transfer is atomic.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[solana.PublicKey]uint64
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[solana.PublicKey]uint64)}
}

// Deposit seeds an account balance. Test/bootstrap helper.
func (b *MemoryBank) Deposit(owner solana.PublicKey, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[owner] += amount
}

func (b *MemoryBank) Transfer(_ context.Context, from, to solana.PublicKey, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[from] < amount {
		return ErrInsufficientFunds
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

func (b *MemoryBank) Balance(_ context.Context, owner solana.PublicKey) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[owner], nil
}

type tokenKey struct {
	mint  solana.PublicKey
	owner solana.PublicKey
}

// MemoryIssuer is an in-memory TokenIssuer. Mint and burn verify the
// caller presents the authority derived for the token's mint.
type MemoryIssuer struct {
	mu       sync.Mutex
	balances map[tokenKey]uint64
}

func NewMemoryIssuer() *MemoryIssuer {
	return &MemoryIssuer{balances: make(map[tokenKey]uint64)}
}

func (i *MemoryIssuer) MintTo(_ context.Context, auth LaunchAuthority, to solana.PublicKey, amount uint64) error {
	if err := i.checkAuthority(auth); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.balances[tokenKey{auth.Mint, to}] += amount
	return nil
}

func (i *MemoryIssuer) Burn(_ context.Context, auth LaunchAuthority, from solana.PublicKey, amount uint64) error {
	if err := i.checkAuthority(auth); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	key := tokenKey{auth.Mint, from}
	if i.balances[key] < amount {
		return launch.ErrInsufficientBalance
	}
	i.balances[key] -= amount
	return nil
}

func (i *MemoryIssuer) Transfer(_ context.Context, mint, from, to solana.PublicKey, amount uint64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	fromKey := tokenKey{mint, from}
	if i.balances[fromKey] < amount {
		return launch.ErrInsufficientBalance
	}
	i.balances[fromKey] -= amount
	i.balances[tokenKey{mint, to}] += amount
	return nil
}

func (i *MemoryIssuer) Balance(_ context.Context, mint, owner solana.PublicKey) (uint64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.balances[tokenKey{mint, owner}], nil
}

func (i *MemoryIssuer) checkAuthority(auth LaunchAuthority) error {
	derived, err := DeriveLaunchAuthority(auth.Mint)
	if err != nil {
		return err
	}
	if !derived.Address.Equals(auth.Address) {
		return launch.ErrUnauthorizedCreator
	}
	return nil
}
