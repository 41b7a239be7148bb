// internal/launch/registry.go
package launch

import (
	"github.com/gagliardetto/solana-go"
)

// MaxMarkets bounds the registry size.
const MaxMarkets = 16

// MarketRegistry is the per-launch whitelist of destinations treated as
// market/DEX endpoints. Transfers to a registered destination are
// sell-equivalent and price-checked; everything else is a private
// transfer. Append-only, mutated only by its authority.
type MarketRegistry struct {
	Mint      solana.PublicKey
	Authority solana.PublicKey
	Markets   []solana.PublicKey
}

// NewRegistry returns an empty registry owned by authority.
func NewRegistry(mint, authority solana.PublicKey) *MarketRegistry {
	return &MarketRegistry{Mint: mint, Authority: authority}
}

// Register appends a market destination. Rejects callers other than the
// authority, duplicates, and registration past capacity.
func (m *MarketRegistry) Register(authority, market solana.PublicKey) error {
	if !m.Authority.Equals(authority) {
		return ErrUnauthorizedCreator
	}
	if len(m.Markets) >= MaxMarkets {
		return ErrInvalidMarket
	}
	if m.IsMarket(market) {
		return ErrInvalidMarket
	}
	m.Markets = append(m.Markets, market)
	return nil
}

// IsMarket reports whether id is a registered market destination.
// Linear scan, bounded by MaxMarkets.
func (m *MarketRegistry) IsMarket(id solana.PublicKey) bool {
	for _, market := range m.Markets {
		if market.Equals(id) {
			return true
		}
	}
	return false
}
