// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of event.
type EventType string

const (
	LaunchCreated   EventType = "launch.created"
	PhaseChanged    EventType = "launch.phase_changed"
	PresalePurchase EventType = "presale.purchase"
	BuyerFinalized  EventType = "presale.finalized"
	CurveTrade      EventType = "curve.trade"
	PriceUpdated    EventType = "price.updated"
	MarketAdded     EventType = "market.registered"
	TransferBlocked EventType = "transfer.blocked"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// LaunchCreatedEvent is emitted when a launch pool is initialized.
type LaunchCreatedEvent struct {
	BaseEvent
	Mint        solana.PublicKey
	Creator     solana.PublicKey
	TokenSymbol string
	TotalSupply uint64
	BasePrice   uint64
	EndTime     int64
}

func NewLaunchCreated(mint, creator solana.PublicKey, symbol string, supply, basePrice uint64, endTime int64) LaunchCreatedEvent {
	return LaunchCreatedEvent{
		BaseEvent:   newBase(LaunchCreated),
		Mint:        mint,
		Creator:     creator,
		TokenSymbol: symbol,
		TotalSupply: supply,
		BasePrice:   basePrice,
		EndTime:     endTime,
	}
}

// PhaseChangedEvent is emitted on every launch phase transition,
// including cancellation and graduation.
type PhaseChangedEvent struct {
	BaseEvent
	Mint solana.PublicKey
	From string
	To   string
}

func NewPhaseChanged(mint solana.PublicKey, from, to string) PhaseChangedEvent {
	return PhaseChangedEvent{BaseEvent: newBase(PhaseChanged), Mint: mint, From: from, To: to}
}

// PresalePurchaseEvent is emitted when a buyer deposits during presale.
type PresalePurchaseEvent struct {
	BaseEvent
	Mint         solana.PublicKey
	Buyer        solana.PublicKey
	Funds        uint64
	TotalDeposit uint64
}

func NewPresalePurchase(mint, buyer solana.PublicKey, funds, totalDeposit uint64) PresalePurchaseEvent {
	return PresalePurchaseEvent{
		BaseEvent:    newBase(PresalePurchase),
		Mint:         mint,
		Buyer:        buyer,
		Funds:        funds,
		TotalDeposit: totalDeposit,
	}
}

// BuyerFinalizedEvent is emitted when a presale buyer receives their
// proportional allocation.
type BuyerFinalizedEvent struct {
	BaseEvent
	Mint       solana.PublicKey
	Buyer      solana.PublicKey
	Tokens     uint64
	EntryPrice uint64
}

func NewBuyerFinalized(mint, buyer solana.PublicKey, tokens, entryPrice uint64) BuyerFinalizedEvent {
	return BuyerFinalizedEvent{
		BaseEvent:  newBase(BuyerFinalized),
		Mint:       mint,
		Buyer:      buyer,
		Tokens:     tokens,
		EntryPrice: entryPrice,
	}
}

// TradeSide distinguishes curve buys from sells.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// CurveTradeEvent is emitted for every bonding curve buy or sell.
type CurveTradeEvent struct {
	BaseEvent
	Mint      solana.PublicKey
	Trader    solana.PublicKey
	Side      TradeSide
	Tokens    uint64
	Funds     uint64
	SpotPrice uint64
}

func NewCurveTrade(mint, trader solana.PublicKey, side TradeSide, tokens, funds, spot uint64) CurveTradeEvent {
	return CurveTradeEvent{
		BaseEvent: newBase(CurveTrade),
		Mint:      mint,
		Trader:    trader,
		Side:      side,
		Tokens:    tokens,
		Funds:     funds,
		SpotPrice: spot,
	}
}

// PriceUpdatedEvent is emitted when the reference price changes.
type PriceUpdatedEvent struct {
	BaseEvent
	Mint     solana.PublicKey
	OldPrice uint64
	NewPrice uint64
}

func NewPriceUpdated(mint solana.PublicKey, oldPrice, newPrice uint64) PriceUpdatedEvent {
	return PriceUpdatedEvent{BaseEvent: newBase(PriceUpdated), Mint: mint, OldPrice: oldPrice, NewPrice: newPrice}
}

// MarketAddedEvent is emitted when a market destination is registered.
type MarketAddedEvent struct {
	BaseEvent
	Mint   solana.PublicKey
	Market solana.PublicKey
}

func NewMarketAdded(mint, market solana.PublicKey) MarketAddedEvent {
	return MarketAddedEvent{BaseEvent: newBase(MarketAdded), Mint: mint, Market: market}
}

// TransferBlockedEvent is emitted when the price floor rejects a
// transfer at the interception boundary.
type TransferBlockedEvent struct {
	BaseEvent
	Mint        solana.PublicKey
	Sender      solana.PublicKey
	Destination solana.PublicKey
	SpotPrice   uint64
	EntryPrice  uint64
}

func NewTransferBlocked(mint, sender, dest solana.PublicKey, spot, entry uint64) TransferBlockedEvent {
	return TransferBlockedEvent{
		BaseEvent:   newBase(TransferBlocked),
		Mint:        mint,
		Sender:      sender,
		Destination: dest,
		SpotPrice:   spot,
		EntryPrice:  entry,
	}
}
