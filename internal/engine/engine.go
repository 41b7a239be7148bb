// internal/engine/engine.go
package engine

import (
	"context"
	"math/big"
	"math/bits"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/curve"
	"github.com/rovshanmuradov/sames-engine/internal/events"
	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

// Publisher receives launch lifecycle events. Satisfied by *events.Bus.
type Publisher interface {
	Publish(event events.Event) error
}

// Options configures an Engine.
type Options struct {
	// FeeBasisPoints is the platform fee taken from the raw refund on
	// every curve sell.
	FeeBasisPoints uint64
	// FeeRecipient receives the platform fee.
	FeeRecipient solana.PublicKey
	// Clock supplies the current unix time. Defaults to time.Now.
	Clock func() int64
	// Publisher receives lifecycle events. Optional.
	Publisher Publisher
}

// launchState bundles everything owned by one launch behind a single
// mutex: operations on a launch are serialized, so no caller ever
// observes a partially updated pool or record.
type launchState struct {
	mu        sync.Mutex
	pool      *launch.LaunchPool
	registry  *launch.MarketRegistry
	authority LaunchAuthority
	records   map[solana.PublicKey]*launch.BuyerRecord
}

// vault is the funds escrow address for this launch.
func (ls *launchState) vault() solana.PublicKey {
	return ls.authority.Address
}

// Engine is the launch pricing and accounting core. It owns the keyed
// stores of launch pools and buyer records and orchestrates the curve
// math, ledger and price floor guard. Funds and token movement are
// delegated to the custody and issuer collaborators; each operation is
// all-or-nothing.
type Engine struct {
	mu       sync.RWMutex
	launches map[solana.PublicKey]*launchState

	custody FundsCustody
	issuer  TokenIssuer
	logger  *zap.Logger
	clock   func() int64
	guard   *PriceFloorGuard

	feeBasisPoints uint64
	feeRecipient   solana.PublicKey
	publisher      Publisher
}

// New creates an engine backed by the given collaborators.
func New(custody FundsCustody, issuer TokenIssuer, logger *zap.Logger, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}
	e := &Engine{
		launches:       make(map[solana.PublicKey]*launchState),
		custody:        custody,
		issuer:         issuer,
		logger:         logger.Named("engine"),
		clock:          clock,
		feeBasisPoints: opts.FeeBasisPoints,
		feeRecipient:   opts.FeeRecipient,
		publisher:      opts.Publisher,
	}
	e.guard = NewPriceFloorGuard(e.logger)
	return e
}

// CreateLaunch initializes a new launch pool and its market registry in
// the Presale phase. The mint identifies the launch.
func (e *Engine) CreateLaunch(ctx context.Context, params launch.PoolParams) (*launch.LaunchPool, error) {
	pool, err := launch.NewPool(params, e.clock())
	if err != nil {
		return nil, err
	}

	authority, err := DeriveLaunchAuthority(params.Mint)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if _, exists := e.launches[params.Mint]; exists {
		e.mu.Unlock()
		return nil, launch.ErrLaunchExists
	}
	e.launches[params.Mint] = &launchState{
		pool:      pool,
		registry:  launch.NewRegistry(params.Mint, params.Creator),
		authority: authority,
		records:   make(map[solana.PublicKey]*launch.BuyerRecord),
	}
	e.mu.Unlock()

	e.logger.Info("Launch created",
		zap.String("mint", params.Mint.String()),
		zap.String("symbol", params.TokenSymbol),
		zap.Uint64("total_supply", params.TotalSupply),
		zap.Uint64("base_price", params.BasePrice),
		zap.Int64("presale_end", pool.EndTime))

	e.publish(events.NewLaunchCreated(params.Mint, params.Creator, params.TokenSymbol,
		params.TotalSupply, params.BasePrice, pool.EndTime))

	snapshot := *pool
	return &snapshot, nil
}

// BuyPresale deposits funds at the fixed presale price. Repeat buys by
// the same participant accumulate into a single record.
func (e *Engine) BuyPresale(ctx context.Context, mint, buyer solana.PublicKey, funds uint64) error {
	if funds == 0 {
		return launch.ErrZeroDeposit
	}

	ls, err := e.launchState(mint)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	pool := ls.pool
	now := e.clock()
	switch {
	case pool.Phase == launch.Closed:
		return launch.ErrLaunchClosed
	case pool.Phase != launch.Presale:
		return launch.ErrPresaleEnded
	case now < pool.StartTime:
		return launch.ErrPresaleNotStarted
	case now >= pool.EndTime:
		return launch.ErrPresaleEnded
	}

	rec, isNew := ls.records[buyer], false
	if rec == nil {
		isNew = true
		rec = &launch.BuyerRecord{Mint: mint, Buyer: buyer, EntryPrice: pool.BasePrice}
	}

	// All arithmetic is checked before any funds move.
	newDeposit, err := checkedAdd(rec.SolDeposited, funds)
	if err != nil {
		return err
	}
	newTotal, err := checkedAdd(pool.TotalFundsCollected, funds)
	if err != nil {
		return err
	}

	if err := e.custody.Transfer(ctx, buyer, ls.vault(), funds); err != nil {
		return err
	}

	rec.SolDeposited = newDeposit
	pool.TotalFundsCollected = newTotal
	if isNew {
		ls.records[buyer] = rec
		pool.BuyerCount++
	}

	e.logger.Debug("Presale deposit",
		zap.String("mint", mint.String()),
		zap.String("buyer", buyer.String()),
		zap.Uint64("funds", funds),
		zap.Uint64("total_deposit", rec.SolDeposited),
		zap.Uint32("buyer_count", pool.BuyerCount))

	e.publish(events.NewPresalePurchase(mint, buyer, funds, rec.SolDeposited))
	return nil
}

// Finalize computes one participant's proportional presale allocation
// and mints it. Per-participant so large launches can be finalized
// incrementally; the launch-wide phase flip is a separate, explicit
// creator action (StartBondingCurve).
func (e *Engine) Finalize(ctx context.Context, mint, buyer solana.PublicKey) (uint64, error) {
	ls, err := e.launchState(mint)
	if err != nil {
		return 0, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	// Late settlement is fine in any phase except Closed: the presale
	// allocation is independent of curve activity.
	pool := ls.pool
	switch {
	case pool.Phase == launch.Closed:
		return 0, launch.ErrLaunchClosed
	case !pool.IsPresaleOver(e.clock()):
		return 0, launch.ErrPresaleStillActive
	}

	rec := ls.records[buyer]
	if rec == nil {
		return 0, launch.ErrNoBuyerRecord
	}
	if rec.Finalized {
		return 0, launch.ErrAlreadyFinalized
	}
	if rec.SolDeposited == 0 {
		return 0, launch.ErrZeroDeposit
	}

	// tokens = deposit * total_supply / total_funds, double-width intermediate.
	tokens := new(big.Int).SetUint64(rec.SolDeposited)
	tokens.Mul(tokens, new(big.Int).SetUint64(pool.TotalSupply))
	tokens.Div(tokens, new(big.Int).SetUint64(pool.TotalFundsCollected))
	if !tokens.IsUint64() {
		return 0, launch.ErrMathOverflow
	}
	allocated := tokens.Uint64()

	if err := e.issuer.MintTo(ctx, ls.authority, buyer, allocated); err != nil {
		return 0, err
	}

	rec.TokensAllocated = allocated
	rec.Finalized = true
	rec.EntryPrice = pool.BasePrice

	e.logger.Info("Buyer finalized",
		zap.String("mint", mint.String()),
		zap.String("buyer", buyer.String()),
		zap.Uint64("tokens", allocated),
		zap.Uint64("entry_price", rec.EntryPrice))

	e.publish(events.NewBuyerFinalized(mint, buyer, allocated, rec.EntryPrice))
	return allocated, nil
}

// StartBondingCurve flips the launch to algorithmic curve trading.
// Creator-only, once the presale window has elapsed.
func (e *Engine) StartBondingCurve(ctx context.Context, mint, creator solana.PublicKey) error {
	ls, err := e.launchState(mint)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	pool := ls.pool
	if !pool.Creator.Equals(creator) {
		return launch.ErrUnauthorizedCreator
	}
	if pool.Phase == launch.Presale && !pool.IsPresaleOver(e.clock()) {
		return launch.ErrPresaleStillActive
	}
	return e.advancePhase(ls, launch.BondingCurve)
}

// BuyCurve purchases tokens against the bonding curve. The number of
// tokens is the floor inverse of the curve integral; only the exact cost
// is debited, any overpayment stays with the buyer.
func (e *Engine) BuyCurve(ctx context.Context, mint, buyer solana.PublicKey, funds uint64) (tokens, cost uint64, err error) {
	if funds == 0 {
		return 0, 0, launch.ErrZeroDeposit
	}

	ls, err := e.launchState(mint)
	if err != nil {
		return 0, 0, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	pool := ls.pool
	if pool.Phase != launch.BondingCurve {
		return 0, 0, launch.ErrNotBondingCurve
	}

	tokens, err = curve.TokensForFunds(pool.BasePrice, pool.Slope, pool.TokensSoldCurve, funds)
	if err != nil {
		return 0, 0, err
	}
	// The curve never sells past the supply cap.
	remaining := pool.TotalSupply - pool.TokensSoldCurve
	if remaining == 0 {
		return 0, 0, launch.ErrInsufficientBalance
	}
	if tokens > remaining {
		tokens = remaining
	}
	if tokens == 0 {
		return 0, 0, ErrInsufficientFunds
	}

	cost, err = curve.Cost(pool.BasePrice, pool.Slope, pool.TokensSoldCurve, tokens)
	if err != nil {
		return 0, 0, err
	}
	if cost > funds {
		return 0, 0, ErrInsufficientFunds
	}

	newFunds, err := checkedAdd(pool.CurveFundsCollected, cost)
	if err != nil {
		return 0, 0, err
	}

	rec := ls.records[buyer]
	if rec == nil {
		rec = &launch.BuyerRecord{Mint: mint, Buyer: buyer}
	}
	updated := *rec
	if err := updated.AddCurvePurchase(tokens, cost); err != nil {
		return 0, 0, err
	}

	if err := e.custody.Transfer(ctx, buyer, ls.vault(), cost); err != nil {
		return 0, 0, err
	}
	if err := e.issuer.MintTo(ctx, ls.authority, buyer, tokens); err != nil {
		// Undo the debit so the operation stays all-or-nothing.
		if rbErr := e.custody.Transfer(ctx, ls.vault(), buyer, cost); rbErr != nil {
			e.logger.Error("Failed to roll back curve buy debit",
				zap.String("mint", mint.String()),
				zap.String("buyer", buyer.String()),
				zap.Error(rbErr))
		}
		return 0, 0, err
	}

	*rec = updated
	if ls.records[buyer] == nil {
		ls.records[buyer] = rec
		pool.BuyerCount++
	}
	pool.TokensSoldCurve += tokens
	pool.CurveFundsCollected = newFunds

	spot := curve.SpotPrice(pool.BasePrice, pool.Slope, pool.TokensSoldCurve)
	e.logger.Debug("Curve buy",
		zap.String("mint", mint.String()),
		zap.String("buyer", buyer.String()),
		zap.Uint64("tokens", tokens),
		zap.Uint64("cost", cost),
		zap.Uint64("spot_price", spot),
		zap.Uint64("entry_price", rec.EntryPrice))

	e.publish(events.NewCurveTrade(mint, buyer, events.SideBuy, tokens, cost, spot))
	return tokens, cost, nil
}

// SellCurve sells tokens back to the curve. Hard-rejects when the
// current spot price is below the seller's entry price. The refund is
// the cost to re-buy the same slice, minus the platform fee.
func (e *Engine) SellCurve(ctx context.Context, mint, seller solana.PublicKey, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, launch.ErrZeroSellAmount
	}

	ls, err := e.launchState(mint)
	if err != nil {
		return 0, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	pool := ls.pool
	if pool.Phase != launch.BondingCurve {
		return 0, launch.ErrNotBondingCurve
	}

	rec := ls.records[seller]
	if rec == nil {
		return 0, launch.ErrNoBuyerRecord
	}
	// A presale deposit that was never settled holds no sellable tokens.
	if !rec.Finalized && rec.SolDeposited > 0 {
		return 0, launch.ErrNotFinalized
	}
	if amount > rec.Available() {
		return 0, launch.ErrInsufficientBalance
	}

	spot := curve.SpotPrice(pool.BasePrice, pool.Slope, pool.TokensSoldCurve)
	if spot < rec.EntryPrice {
		e.logger.Warn("Sell blocked below entry price",
			zap.String("mint", mint.String()),
			zap.String("seller", seller.String()),
			zap.Uint64("spot_price", spot),
			zap.Uint64("entry_price", rec.EntryPrice))
		return 0, launch.ErrSellBelowEntry
	}

	// The refund prices the slice as if re-buying it: the curve cannot
	// pay out more than it has taken in.
	if amount > pool.TokensSoldCurve {
		return 0, launch.ErrInsufficientBalance
	}
	newSold := pool.TokensSoldCurve - amount

	refundRaw, err := curve.Cost(pool.BasePrice, pool.Slope, newSold, amount)
	if err != nil {
		return 0, err
	}
	if refundRaw > pool.CurveFundsCollected {
		return 0, ErrInsufficientFunds
	}

	fee := refundRaw * e.feeBasisPoints / 10_000
	net := refundRaw - fee

	updated := *rec
	if err := updated.AddSale(amount); err != nil {
		return 0, err
	}

	if err := e.issuer.Burn(ctx, ls.authority, seller, amount); err != nil {
		return 0, err
	}
	if err := e.custody.Transfer(ctx, ls.vault(), seller, net); err != nil {
		if rbErr := e.issuer.MintTo(ctx, ls.authority, seller, amount); rbErr != nil {
			e.logger.Error("Failed to roll back curve sell burn",
				zap.String("mint", mint.String()),
				zap.String("seller", seller.String()),
				zap.Error(rbErr))
		}
		return 0, err
	}
	if fee > 0 {
		if err := e.custody.Transfer(ctx, ls.vault(), e.feeRecipient, fee); err != nil {
			e.logger.Error("Failed to pay platform fee",
				zap.String("mint", mint.String()),
				zap.Uint64("fee", fee),
				zap.Error(err))
		}
	}

	*rec = updated
	pool.TokensSoldCurve = newSold
	pool.CurveFundsCollected -= refundRaw

	e.logger.Debug("Curve sell",
		zap.String("mint", mint.String()),
		zap.String("seller", seller.String()),
		zap.Uint64("tokens", amount),
		zap.Uint64("refund_raw", refundRaw),
		zap.Uint64("refund_net", net),
		zap.Uint64("fee", fee))

	e.publish(events.NewCurveTrade(mint, seller, events.SideSell, amount, net, spot))
	return net, nil
}

// Graduate lifts the price floor once cumulative curve funding has
// reached the threshold. Callable by anyone.
func (e *Engine) Graduate(ctx context.Context, mint solana.PublicKey) error {
	ls, err := e.launchState(mint)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	pool := ls.pool
	if pool.Phase != launch.BondingCurve {
		return launch.ErrNotBondingCurve
	}
	if !pool.ShouldGraduate() {
		return launch.ErrNotReadyToGraduate
	}
	return e.advancePhase(ls, launch.Graduated)
}

// CloseLaunch cancels a launch during presale. Terminal: no further
// economic operations are accepted.
func (e *Engine) CloseLaunch(ctx context.Context, mint, creator solana.PublicKey) error {
	ls, err := e.launchState(mint)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.pool.Creator.Equals(creator) {
		return launch.ErrUnauthorizedCreator
	}
	return e.advancePhase(ls, launch.Closed)
}

// UpdatePrice overwrites the reference price: the presale display price
// and the initial curve base. Creator/oracle only, and only while the
// launch is still in Presale: once the curve is live the price comes
// from the curve itself.
func (e *Engine) UpdatePrice(ctx context.Context, mint, authority solana.PublicKey, newPrice uint64) error {
	if newPrice == 0 {
		return launch.ErrZeroPrice
	}

	ls, err := e.launchState(mint)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	pool := ls.pool
	if !pool.Creator.Equals(authority) {
		return launch.ErrUnauthorizedCreator
	}
	if pool.Phase != launch.Presale {
		return launch.ErrPresaleEnded
	}

	old := pool.BasePrice
	pool.BasePrice = newPrice

	e.logger.Info("Reference price updated",
		zap.String("mint", mint.String()),
		zap.Uint64("old_price", old),
		zap.Uint64("new_price", newPrice))

	e.publish(events.NewPriceUpdated(mint, old, newPrice))
	return nil
}

// RegisterMarket adds a market/DEX destination to the launch whitelist.
func (e *Engine) RegisterMarket(ctx context.Context, mint, authority, market solana.PublicKey) error {
	ls, err := e.launchState(mint)
	if err != nil {
		return err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ls.registry.Register(authority, market); err != nil {
		return err
	}

	e.logger.Info("Market registered",
		zap.String("mint", mint.String()),
		zap.String("market", market.String()))

	e.publish(events.NewMarketAdded(mint, market))
	return nil
}

// Pool returns a snapshot of the launch pool.
func (e *Engine) Pool(mint solana.PublicKey) (*launch.LaunchPool, error) {
	ls, err := e.launchState(mint)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	snapshot := *ls.pool
	return &snapshot, nil
}

// Record returns a snapshot of a participant's buyer record.
func (e *Engine) Record(mint, buyer solana.PublicKey) (*launch.BuyerRecord, error) {
	ls, err := e.launchState(mint)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	rec := ls.records[buyer]
	if rec == nil {
		return nil, launch.ErrNoBuyerRecord
	}
	snapshot := *rec
	return &snapshot, nil
}

// SpotPrice returns the current marginal curve price for the launch.
func (e *Engine) SpotPrice(mint solana.PublicKey) (uint64, error) {
	ls, err := e.launchState(mint)
	if err != nil {
		return 0, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	pool := ls.pool
	return curve.SpotPrice(pool.BasePrice, pool.Slope, pool.TokensSoldCurve), nil
}

// advancePhase applies a phase transition and publishes it. Caller holds
// the launch lock.
func (e *Engine) advancePhase(ls *launchState, next launch.Phase) error {
	from := ls.pool.Phase
	if err := ls.pool.Advance(next); err != nil {
		return err
	}

	e.logger.Info("Phase changed",
		zap.String("mint", ls.pool.Mint.String()),
		zap.String("from", from.String()),
		zap.String("to", next.String()))

	e.publish(events.NewPhaseChanged(ls.pool.Mint, from.String(), next.String()))
	return nil
}

func (e *Engine) launchState(mint solana.PublicKey) (*launchState, error) {
	e.mu.RLock()
	ls := e.launches[mint]
	e.mu.RUnlock()
	if ls == nil {
		return nil, launch.ErrInvalidMint
	}
	return ls, nil
}

func (e *Engine) publish(event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, launch.ErrMathOverflow
	}
	return sum, nil
}
