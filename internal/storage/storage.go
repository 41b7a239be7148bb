// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/rovshanmuradov/sames-engine/internal/storage/models"
)

// Storage is the persistence boundary for the launch journal.
type Storage interface {
	// Launches
	SaveLaunch(ctx context.Context, info *models.LaunchInfo) error
	GetLaunch(ctx context.Context, mint string) (*models.LaunchInfo, error)
	UpdateLaunchPhase(ctx context.Context, mint string, phase string) error
	SavePhaseChange(ctx context.Context, change *models.PhaseChange) error

	// Trades and deposits
	SaveTrade(ctx context.Context, trade *models.Trade) error
	ListTrades(ctx context.Context, mint string, limit, offset int) ([]*models.Trade, error)
	SavePresaleDeposit(ctx context.Context, deposit *models.PresaleDeposit) error

	// Enforcement
	SaveBlockedTransfer(ctx context.Context, blocked *models.BlockedTransfer) error

	// Migrations
	RunMigrations() error
}
