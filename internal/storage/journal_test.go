// internal/storage/journal_test.go
package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/sames-engine/internal/events"
	"github.com/rovshanmuradov/sames-engine/internal/storage/models"
)

type mockStorage struct {
	mu        sync.Mutex
	launches  []*models.LaunchInfo
	phases    []*models.PhaseChange
	trades    []*models.Trade
	deposits  []*models.PresaleDeposit
	blocked   []*models.BlockedTransfer
	phaseCols map[string]string
}

func newMockStorage() *mockStorage {
	return &mockStorage{phaseCols: make(map[string]string)}
}

func (m *mockStorage) SaveLaunch(_ context.Context, info *models.LaunchInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launches = append(m.launches, info)
	return nil
}

func (m *mockStorage) GetLaunch(_ context.Context, mint string) (*models.LaunchInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.launches {
		if info.Mint == mint {
			return info, nil
		}
	}
	return nil, nil
}

func (m *mockStorage) UpdateLaunchPhase(_ context.Context, mint string, phase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseCols[mint] = phase
	return nil
}

func (m *mockStorage) SavePhaseChange(_ context.Context, change *models.PhaseChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases = append(m.phases, change)
	return nil
}

func (m *mockStorage) SaveTrade(_ context.Context, trade *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, trade)
	return nil
}

func (m *mockStorage) ListTrades(_ context.Context, mint string, limit, offset int) ([]*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Trade(nil), m.trades...), nil
}

func (m *mockStorage) SavePresaleDeposit(_ context.Context, deposit *models.PresaleDeposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deposits = append(m.deposits, deposit)
	return nil
}

func (m *mockStorage) SaveBlockedTransfer(_ context.Context, blocked *models.BlockedTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked = append(m.blocked, blocked)
	return nil
}

func (m *mockStorage) RunMigrations() error { return nil }

func TestJournalPersistsLifecycle(t *testing.T) {
	store := newMockStorage()
	bus := events.NewBus(zaptest.NewLogger(t), 10)
	defer bus.Shutdown(context.Background())

	journal := NewJournal(store, zaptest.NewLogger(t))
	journal.Attach(bus)

	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()
	buyer := solana.NewWallet().PublicKey()

	require.NoError(t, bus.PublishSync(ctx, events.NewLaunchCreated(mint, creator, "TEST", 1000, 1000, 1_700_000_030)))
	require.NoError(t, bus.PublishSync(ctx, events.NewPresalePurchase(mint, buyer, 100, 100)))
	require.NoError(t, bus.PublishSync(ctx, events.NewPhaseChanged(mint, "presale", "bonding_curve")))
	require.NoError(t, bus.PublishSync(ctx, events.NewCurveTrade(mint, buyer, events.SideBuy, 10, 10_000, 1000)))
	require.NoError(t, bus.PublishSync(ctx, events.NewTransferBlocked(mint, buyer, solana.NewWallet().PublicKey(), 900, 1000)))

	require.Len(t, store.launches, 1)
	assert.Equal(t, mint.String(), store.launches[0].Mint)
	assert.Equal(t, "presale", store.launches[0].Phase)

	require.Len(t, store.deposits, 1)
	assert.Equal(t, uint64(100), store.deposits[0].Funds)

	require.Len(t, store.phases, 1)
	assert.Equal(t, "bonding_curve", store.phaseCols[mint.String()])

	require.Len(t, store.trades, 1)
	assert.Equal(t, "buy", store.trades[0].Side)

	require.Len(t, store.blocked, 1)
	assert.Equal(t, uint64(900), store.blocked[0].SpotPrice)
}

func TestJournalDetach(t *testing.T) {
	store := newMockStorage()
	bus := events.NewBus(zaptest.NewLogger(t), 10)
	defer bus.Shutdown(context.Background())

	journal := NewJournal(store, zaptest.NewLogger(t))
	journal.Attach(bus)
	journal.Detach()

	mint := solana.NewWallet().PublicKey()
	require.NoError(t, bus.PublishSync(context.Background(),
		events.NewCurveTrade(mint, solana.NewWallet().PublicKey(), events.SideSell, 5, 5000, 1000)))

	assert.Empty(t, store.trades)
}
