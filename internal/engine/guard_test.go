package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/curve"
	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

func guardPool(phase launch.Phase, basePrice, slope, sold uint64) *launch.LaunchPool {
	return &launch.LaunchPool{
		Mint:            solana.NewWallet().PublicKey(),
		BasePrice:       basePrice,
		Slope:           slope,
		TokensSoldCurve: sold,
		Phase:           phase,
	}
}

func TestGuardPhaseScoping(t *testing.T) {
	g := NewPriceFloorGuard(zap.NewNop())
	market := solana.NewWallet().PublicKey()
	registry := launch.NewRegistry(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, registry.Register(registry.Authority, market))

	// Deep underwater: entry far above spot.
	record := &launch.BuyerRecord{EntryPrice: 1_000_000}

	for _, phase := range []launch.Phase{launch.Presale, launch.Graduated, launch.Closed} {
		pool := guardPool(phase, 1000, 0, 0)
		assert.NoError(t, g.Evaluate(pool, registry, record, nil, market), phase.String())
	}

	pool := guardPool(launch.BondingCurve, 1000, 0, 0)
	assert.ErrorIs(t, g.Evaluate(pool, registry, record, nil, market), launch.ErrHookSellBelowEntry)
}

func TestGuardNonMarketDestination(t *testing.T) {
	g := NewPriceFloorGuard(zap.NewNop())
	market := solana.NewWallet().PublicKey()
	registry := launch.NewRegistry(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, registry.Register(registry.Authority, market))

	pool := guardPool(launch.BondingCurve, 1000, 0, 0)
	record := &launch.BuyerRecord{EntryPrice: 1_000_000}

	// A wallet-to-wallet transfer is not a sell.
	friend := solana.NewWallet().PublicKey()
	assert.NoError(t, g.Evaluate(pool, registry, record, nil, friend))
}

func TestGuardNoRecordOrUnreadable(t *testing.T) {
	g := NewPriceFloorGuard(zap.NewNop())
	market := solana.NewWallet().PublicKey()
	registry := launch.NewRegistry(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, registry.Register(registry.Authority, market))

	pool := guardPool(launch.BondingCurve, 1000, 0, 0)

	// No cost basis to protect.
	assert.NoError(t, g.Evaluate(pool, registry, nil, launch.ErrNoBuyerRecord, market))

	// A record that cannot be read fails open.
	assert.NoError(t, g.Evaluate(pool, registry, nil, errors.New("corrupt record"), market))

	// A record with no position yet has no floor.
	assert.NoError(t, g.Evaluate(pool, registry, &launch.BuyerRecord{}, nil, market))
}

func TestGuardSpotAtEntryAllowed(t *testing.T) {
	g := NewPriceFloorGuard(zap.NewNop())
	market := solana.NewWallet().PublicKey()
	registry := launch.NewRegistry(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, registry.Register(registry.Authority, market))

	pool := guardPool(launch.BondingCurve, 1000, 0, 0)

	// Exact equality is at the floor, not below it.
	assert.NoError(t, g.Evaluate(pool, registry, &launch.BuyerRecord{EntryPrice: 1000}, nil, market))
	assert.ErrorIs(t,
		g.Evaluate(pool, registry, &launch.BuyerRecord{EntryPrice: 1001}, nil, market),
		launch.ErrHookSellBelowEntry)
}

func TestCheckTransferLifecycle(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	params := f.startCurve(t, launch.PoolParams{
		TotalSupply:         1_000_000,
		BasePrice:           1000,
		Slope:               curve.SlopeScale,
		GraduationThreshold: 50_000,
	})

	market := solana.NewWallet().PublicKey()
	require.NoError(t, f.eng.RegisterMarket(ctx, params.Mint, params.Creator, market))

	holder := f.fundedBuyer(1_000_000)
	_, _, err := f.eng.BuyCurve(ctx, params.Mint, holder, 105_000)
	require.NoError(t, err)

	// Spot 1100 >= entry 1050: market-bound transfer goes through.
	assert.NoError(t, f.eng.CheckTransfer(ctx, params.Mint, holder, market, 10))

	// Drop spot below the holder's entry.
	_, err = f.eng.SellCurve(ctx, params.Mint, holder, 80)
	require.NoError(t, err)

	err = f.eng.CheckTransfer(ctx, params.Mint, holder, market, 10)
	assert.ErrorIs(t, err, launch.ErrHookSellBelowEntry)

	// Private transfers stay unaffected.
	assert.NoError(t, f.eng.CheckTransfer(ctx, params.Mint, holder, solana.NewWallet().PublicKey(), 10))

	// Graduation lifts the floor entirely.
	buyer := f.fundedBuyer(1_000_000)
	_, _, err = f.eng.BuyCurve(ctx, params.Mint, buyer, 120_000)
	require.NoError(t, err)
	require.NoError(t, f.eng.Graduate(ctx, params.Mint))
	assert.NoError(t, f.eng.CheckTransfer(ctx, params.Mint, holder, market, 10))
}

func TestCheckTransferUnknownMint(t *testing.T) {
	f := newFixture(t, 0)

	// Mints the engine does not manage are never intercepted.
	err := f.eng.CheckTransfer(context.Background(), solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), 10)
	assert.NoError(t, err)
}
