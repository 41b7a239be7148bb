// internal/oracle/cranker.go
package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

// PriceSource supplies an external reference price for a launch token.
type PriceSource interface {
	ReferencePrice(ctx context.Context, mint solana.PublicKey) (uint64, error)
}

// Pricer is the slice of the engine the cranker drives.
type Pricer interface {
	UpdatePrice(ctx context.Context, mint, authority solana.PublicKey, newPrice uint64) error
	Pool(mint solana.PublicKey) (*launch.LaunchPool, error)
}

// Cranker periodically pulls a reference price from an external source
// and pushes it into presale-phase launches. A launch past presale is
// silently dropped from the crank set: the curve owns the price then.
type Cranker struct {
	source    PriceSource
	pricer    Pricer
	authority solana.PublicKey
	logger    *zap.Logger
	interval  time.Duration
	maxTries  uint

	// mu guards mints: Track is called by embedding callers while Run
	// iterates from its own goroutine.
	mu    sync.Mutex
	mints []solana.PublicKey
}

func NewCranker(source PriceSource, pricer Pricer, authority solana.PublicKey, logger *zap.Logger, interval time.Duration, maxTries uint) *Cranker {
	if maxTries == 0 {
		maxTries = 3
	}
	return &Cranker{
		source:    source,
		pricer:    pricer,
		authority: authority,
		logger:    logger.Named("cranker"),
		interval:  interval,
		maxTries:  maxTries,
	}
}

// Track adds a launch to the crank set. Safe to call while Run is
// active.
func (c *Cranker) Track(mint solana.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mints = append(c.mints, mint)
}

// tracked returns a snapshot of the crank set.
func (c *Cranker) tracked() []solana.PublicKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]solana.PublicKey(nil), c.mints...)
}

func (c *Cranker) drop(mint solana.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, m := range c.mints {
		if m.Equals(mint) {
			c.mints = append(c.mints[:i], c.mints[i+1:]...)
			return
		}
	}
}

// Run cranks until the context is cancelled.
func (c *Cranker) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.crankAll(ctx)
		}
	}
}

func (c *Cranker) crankAll(ctx context.Context) {
	for _, mint := range c.tracked() {
		pool, err := c.pricer.Pool(mint)
		if err != nil {
			c.drop(mint)
			continue
		}
		if pool.Phase != launch.Presale {
			c.logger.Debug("Dropping launch from crank set",
				zap.String("mint", mint.String()),
				zap.String("phase", pool.Phase.String()))
			c.drop(mint)
			continue
		}
		if err := c.crankOne(ctx, mint); err != nil {
			c.logger.Error("Failed to crank price",
				zap.String("mint", mint.String()),
				zap.Error(err))
		}
	}
}

func (c *Cranker) crankOne(ctx context.Context, mint solana.PublicKey) error {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 100 * time.Millisecond
	backoffPolicy.MaxInterval = time.Second

	notify := func(err error, duration time.Duration) {
		c.logger.Info("Retrying price fetch after error", zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (uint64, error) {
		price, err := c.source.ReferencePrice(ctx, mint)
		if err != nil {
			return 0, err
		}
		if price == 0 {
			return 0, backoff.Permanent(launch.ErrZeroPrice)
		}
		return price, nil
	}

	price, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return err
	}

	return c.pricer.UpdatePrice(ctx, mint, c.authority, price)
}
