// internal/storage/journal.go
package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/events"
	"github.com/rovshanmuradov/sames-engine/internal/storage/models"
)

// Journal subscribes to the event bus and persists every launch
// lifecycle event. Persistence failures are logged, never propagated:
// the journal observes the engine, it does not gate it.
type Journal struct {
	store  Storage
	logger *zap.Logger
	subs   []events.Subscription
}

func NewJournal(store Storage, logger *zap.Logger) *Journal {
	return &Journal{store: store, logger: logger.Named("journal")}
}

// Attach registers the journal's handlers on the bus.
func (j *Journal) Attach(bus *events.Bus) {
	j.subs = append(j.subs,
		bus.SubscribeFunc(events.LaunchCreated, j.onLaunchCreated),
		bus.SubscribeFunc(events.PhaseChanged, j.onPhaseChanged),
		bus.SubscribeFunc(events.PresalePurchase, j.onPresalePurchase),
		bus.SubscribeFunc(events.CurveTrade, j.onCurveTrade),
		bus.SubscribeFunc(events.TransferBlocked, j.onTransferBlocked),
	)
}

// Detach removes every handler registered by Attach.
func (j *Journal) Detach() {
	for _, sub := range j.subs {
		sub.Unsubscribe()
	}
	j.subs = nil
}

func (j *Journal) onLaunchCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LaunchCreatedEvent)
	if !ok {
		return nil
	}
	endsAt := time.Unix(e.EndTime, 0).UTC()
	err := j.store.SaveLaunch(ctx, &models.LaunchInfo{
		Mint:          e.Mint.String(),
		Creator:       e.Creator.String(),
		TokenSymbol:   e.TokenSymbol,
		TotalSupply:   e.TotalSupply,
		BasePrice:     e.BasePrice,
		Phase:         "presale",
		PresaleEndsAt: &endsAt,
	})
	if err != nil {
		j.logger.Error("Failed to persist launch", zap.String("mint", e.Mint.String()), zap.Error(err))
	}
	return nil
}

func (j *Journal) onPhaseChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.PhaseChangedEvent)
	if !ok {
		return nil
	}
	mint := e.Mint.String()
	if err := j.store.UpdateLaunchPhase(ctx, mint, e.To); err != nil {
		j.logger.Error("Failed to update launch phase", zap.String("mint", mint), zap.Error(err))
	}
	err := j.store.SavePhaseChange(ctx, &models.PhaseChange{
		Mint:      mint,
		FromPhase: e.From,
		ToPhase:   e.To,
	})
	if err != nil {
		j.logger.Error("Failed to persist phase change", zap.String("mint", mint), zap.Error(err))
	}
	return nil
}

func (j *Journal) onPresalePurchase(ctx context.Context, event events.Event) error {
	e, ok := event.(events.PresalePurchaseEvent)
	if !ok {
		return nil
	}
	err := j.store.SavePresaleDeposit(ctx, &models.PresaleDeposit{
		Mint:         e.Mint.String(),
		Buyer:        e.Buyer.String(),
		Funds:        e.Funds,
		TotalDeposit: e.TotalDeposit,
	})
	if err != nil {
		j.logger.Error("Failed to persist presale deposit", zap.String("mint", e.Mint.String()), zap.Error(err))
	}
	return nil
}

func (j *Journal) onCurveTrade(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CurveTradeEvent)
	if !ok {
		return nil
	}
	err := j.store.SaveTrade(ctx, &models.Trade{
		Mint:      e.Mint.String(),
		Trader:    e.Trader.String(),
		Side:      string(e.Side),
		Tokens:    e.Tokens,
		Funds:     e.Funds,
		SpotPrice: e.SpotPrice,
	})
	if err != nil {
		j.logger.Error("Failed to persist trade", zap.String("mint", e.Mint.String()), zap.Error(err))
	}
	return nil
}

func (j *Journal) onTransferBlocked(ctx context.Context, event events.Event) error {
	e, ok := event.(events.TransferBlockedEvent)
	if !ok {
		return nil
	}
	err := j.store.SaveBlockedTransfer(ctx, &models.BlockedTransfer{
		Mint:        e.Mint.String(),
		Sender:      e.Sender.String(),
		Destination: e.Destination.String(),
		SpotPrice:   e.SpotPrice,
		EntryPrice:  e.EntryPrice,
	})
	if err != nil {
		j.logger.Error("Failed to persist blocked transfer", zap.String("mint", e.Mint.String()), zap.Error(err))
	}
	return nil
}
