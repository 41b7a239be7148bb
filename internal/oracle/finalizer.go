// internal/oracle/finalizer.go
package oracle

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/sames-engine/internal/launch"
)

// Allocator is the slice of the engine the finalizer drives.
type Allocator interface {
	Finalize(ctx context.Context, mint, buyer solana.PublicKey) (uint64, error)
}

// Finalizer settles presale allocations for a batch of buyers with
// bounded parallelism. Each buyer settles independently; one failed
// allocation never blocks the rest.
type Finalizer struct {
	allocator Allocator
	logger    *zap.Logger
	workers   int
}

func NewFinalizer(allocator Allocator, logger *zap.Logger, workers int) *Finalizer {
	if workers <= 0 {
		workers = 5
	}
	return &Finalizer{
		allocator: allocator,
		logger:    logger.Named("finalizer"),
		workers:   workers,
	}
}

// FinalizeAll settles every buyer in the batch. Already-finalized
// buyers are skipped without error so the batch can be retried as a
// whole. Returns the number of buyers settled in this pass.
func (f *Finalizer) FinalizeAll(ctx context.Context, mint solana.PublicKey, buyers []solana.PublicKey) (int, error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	settled := make(chan struct{}, len(buyers))
	for _, buyer := range buyers {
		buyer := buyer
		g.Go(func() error {
			tokens, err := f.allocator.Finalize(gCtx, mint, buyer)
			if err != nil {
				if errors.Is(err, launch.ErrAlreadyFinalized) {
					return nil
				}
				f.logger.Error("Failed to finalize buyer",
					zap.String("mint", mint.String()),
					zap.String("buyer", buyer.String()),
					zap.Error(err))
				return err
			}
			f.logger.Debug("Buyer settled",
				zap.String("mint", mint.String()),
				zap.String("buyer", buyer.String()),
				zap.Uint64("tokens", tokens))
			settled <- struct{}{}
			return nil
		})
	}

	err := g.Wait()
	close(settled)
	return len(settled), err
}
