// internal/engine/guard.go
package engine

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/curve"
	"github.com/rovshanmuradov/sames-engine/internal/events"
	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

// PriceFloorGuard enforces the no-sell-below-entry policy at the
// transfer-interception boundary. The same rule the explicit sell path
// applies, observed on every token movement toward a registered market.
type PriceFloorGuard struct {
	logger *zap.Logger
}

func NewPriceFloorGuard(logger *zap.Logger) *PriceFloorGuard {
	return &PriceFloorGuard{logger: logger.Named("price_floor")}
}

// Evaluate decides whether a transfer may proceed.
//
// Order matters:
//  1. Outside the BondingCurve phase there is no floor to enforce.
//  2. Destinations not in the market registry are private transfers.
//  3. A sender without a buyer record has no cost basis to protect.
//  4. Otherwise the current spot price must be at or above the sender's
//     entry price.
//
// A record that exists but cannot be read allows the transfer: failing
// closed here would brick transfers for well-formed non-presale holders.
// Intentional fail-open.
func (g *PriceFloorGuard) Evaluate(
	pool *launch.LaunchPool,
	registry *launch.MarketRegistry,
	record *launch.BuyerRecord,
	recordErr error,
	destination solana.PublicKey,
) error {
	if pool.Phase != launch.BondingCurve {
		return nil
	}
	if !registry.IsMarket(destination) {
		return nil
	}

	if recordErr != nil {
		if !errors.Is(recordErr, launch.ErrNoBuyerRecord) {
			g.logger.Warn("Unreadable buyer record at transfer hook, allowing transfer",
				zap.String("mint", pool.Mint.String()),
				zap.Error(recordErr))
		}
		return nil
	}
	if record == nil || record.EntryPrice == 0 {
		return nil
	}

	spot := curve.SpotPrice(pool.BasePrice, pool.Slope, pool.TokensSoldCurve)
	if spot < record.EntryPrice {
		return launch.ErrHookSellBelowEntry
	}
	return nil
}

// CheckTransfer is the interception entry point: it observes a token
// movement for a launch and either allows it (nil) or rejects it with
// ErrHookSellBelowEntry. Transfers of mints the engine does not manage
// are always allowed.
func (e *Engine) CheckTransfer(ctx context.Context, mint, sender, destination solana.PublicKey, amount uint64) error {
	ls, err := e.launchState(mint)
	if err != nil {
		// Not one of ours; nothing to enforce.
		return nil
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	rec := ls.records[sender]
	var recordErr error
	if rec == nil {
		recordErr = launch.ErrNoBuyerRecord
	}

	if err := e.guard.Evaluate(ls.pool, ls.registry, rec, recordErr, destination); err != nil {
		spot := curve.SpotPrice(ls.pool.BasePrice, ls.pool.Slope, ls.pool.TokensSoldCurve)
		e.logger.Warn("Transfer blocked by price floor",
			zap.String("mint", mint.String()),
			zap.String("sender", sender.String()),
			zap.String("destination", destination.String()),
			zap.Uint64("amount", amount),
			zap.Uint64("spot_price", spot),
			zap.Uint64("entry_price", rec.EntryPrice))

		e.publish(events.NewTransferBlocked(mint, sender, destination, spot, rec.EntryPrice))
		return err
	}
	return nil
}
