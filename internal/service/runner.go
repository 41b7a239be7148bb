// internal/service/runner.go
package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/config"
	"github.com/rovshanmuradov/sames-engine/internal/engine"
	"github.com/rovshanmuradov/sames-engine/internal/events"
	"github.com/rovshanmuradov/sames-engine/internal/launch"
	"github.com/rovshanmuradov/sames-engine/internal/oracle"
	"github.com/rovshanmuradov/sames-engine/internal/quote"
	"github.com/rovshanmuradov/sames-engine/internal/storage"
	"github.com/rovshanmuradov/sames-engine/internal/storage/postgres"
	"github.com/rovshanmuradov/sames-engine/internal/utils"
)

// Runner wires the engine, event bus, journal and price cranker into a
// single process with graceful shutdown.
type Runner struct {
	logger     *zap.Logger
	config     *config.Config
	engine     *engine.Engine
	bank       *engine.MemoryBank
	bus        *events.Bus
	journal    *storage.Journal
	cranker    *oracle.Cranker
	finalizer  *oracle.Finalizer
	shutdownCh chan os.Signal
	metricSubs []events.Subscription
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		logger:     logger,
		config:     cfg,
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Initialize builds every component from the configuration. Postgres is
// optional: without a DSN the journal is skipped and events stay
// in-process.
func (r *Runner) Initialize(priceSource oracle.PriceSource, crankAuthority solana.PublicKey) error {
	r.bus = events.NewBus(r.logger, r.config.EventBuffer)

	bank := engine.NewMemoryBank()
	issuer := engine.NewMemoryIssuer()
	r.bank = bank
	r.engine = engine.New(bank, issuer, r.logger, engine.Options{
		FeeBasisPoints: r.config.FeeBasisPoints,
		FeeRecipient:   r.config.FeeRecipientKey(),
		Publisher:      r.bus,
	})

	if r.config.PostgresURL != "" {
		store, err := postgres.NewStorage(r.config.PostgresURL, r.logger)
		if err != nil {
			return fmt.Errorf("failed to open journal storage: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("failed to migrate journal storage: %w", err)
		}
		r.journal = storage.NewJournal(store, r.logger)
		r.journal.Attach(r.bus)
		r.logger.Info("📒 Journal attached", zap.String("backend", "postgres"))
	}

	if priceSource != nil {
		r.cranker = oracle.NewCranker(
			priceSource,
			r.engine,
			crankAuthority,
			r.logger,
			time.Duration(r.config.PriceDelay)*time.Millisecond,
			uint(r.config.Retries),
		)
	}

	r.finalizer = oracle.NewFinalizer(r.engine, r.logger, r.config.Workers)

	r.attachMetrics()
	return nil
}

// attachMetrics mirrors enforcement and lifecycle events into the
// process counters.
func (r *Runner) attachMetrics() {
	r.metricSubs = append(r.metricSubs,
		r.bus.SubscribeFunc(events.TransferBlocked, func(ctx context.Context, event events.Event) error {
			utils.RecordBlockedTransfer()
			return nil
		}),
		r.bus.SubscribeFunc(events.PhaseChanged, func(ctx context.Context, event events.Event) error {
			if e, ok := event.(events.PhaseChangedEvent); ok {
				utils.RecordPhaseTransition(e.To)
			}
			return nil
		}),
	)
}

// Engine exposes the wired engine for embedding callers.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Finalizer exposes the batch settlement worker.
func (r *Runner) Finalizer() *oracle.Finalizer {
	return r.finalizer
}

// Bank exposes the funds custody for deposit bootstrapping.
func (r *Runner) Bank() *engine.MemoryBank {
	return r.bank
}

// CreateLaunch fills unset parameters from the configuration, creates
// the launch and enrolls it with the price cranker.
func (r *Runner) CreateLaunch(ctx context.Context, params launch.PoolParams) (*launch.LaunchPool, error) {
	if params.WindowSeconds == 0 {
		params.WindowSeconds = r.config.PresaleWindow
	}
	if params.GraduationThreshold == 0 {
		params.GraduationThreshold = r.config.GraduationThreshold
	}

	pool, err := r.engine.CreateLaunch(ctx, params)
	if err != nil {
		return nil, err
	}
	r.Track(params.Mint)
	return pool, nil
}

// Track adds a launch to the price crank set.
func (r *Runner) Track(mint solana.PublicKey) {
	if r.cranker != nil {
		r.cranker.Track(mint)
	}
}

// BuyCurve wraps the engine call with trade instrumentation.
func (r *Runner) BuyCurve(ctx context.Context, mint, buyer solana.PublicKey, funds uint64) (tokens, cost uint64, err error) {
	mErr := utils.MeasureTradeDuration("buy", func() error {
		tokens, cost, err = r.engine.BuyCurve(ctx, mint, buyer, funds)
		return err
	})
	return tokens, cost, mErr
}

// SellCurve wraps the engine call with trade instrumentation.
func (r *Runner) SellCurve(ctx context.Context, mint, seller solana.PublicKey, amount uint64) (refund uint64, err error) {
	mErr := utils.MeasureTradeDuration("sell", func() error {
		refund, err = r.engine.SellCurve(ctx, mint, seller, amount)
		return err
	})
	return refund, mErr
}

// Quote returns a display snapshot for a launch.
func (r *Runner) Quote(mint solana.PublicKey) (quote.Quote, error) {
	pool, err := r.engine.Pool(mint)
	if err != nil {
		return quote.Quote{}, err
	}
	return quote.FromPool(pool), nil
}

// Pool proxies the engine's pool snapshot.
func (r *Runner) Pool(mint solana.PublicKey) (*launch.LaunchPool, error) {
	return r.engine.Pool(mint)
}

// Run blocks until the context is cancelled or a shutdown signal
// arrives.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sig := <-r.shutdownCh
		r.logger.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	if r.cranker != nil {
		go func() {
			if err := r.cranker.Run(runCtx); err != nil && runCtx.Err() == nil {
				r.logger.Error("Price cranker stopped", zap.Error(err))
			}
		}()
	}

	r.logger.Info("🚀 Launch engine running")
	<-runCtx.Done()
	return r.Shutdown()
}

// Shutdown tears everything down in reverse wiring order.
func (r *Runner) Shutdown() error {
	r.logger.Info("👋 Launch engine shutting down gracefully")

	for _, sub := range r.metricSubs {
		sub.Unsubscribe()
	}
	r.metricSubs = nil

	if r.journal != nil {
		r.journal.Detach()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.bus.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("Event bus did not drain in time", zap.Error(err))
	}

	if err := r.logger.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
	return nil
}
