package services

import (
	"context"
	"log/slog"
	"time"

	"dompet/internal/auth"
	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/notify"
	"dompet/internal/store"
)

const (
	statsCacheSize = 256
	statsCacheTTL  = time.Minute
)

// DashboardService derives per-owner dashboard statistics. Stats are
// recomputed from the full transaction and goal lists, never adjusted
// incrementally, so a lost event can only delay freshness, not corrupt
// the numbers. The cache is invalidated by change events.
type DashboardService struct {
	store  *store.Store
	stats  *cache.LRU[core.DashboardStats]
	logger *slog.Logger
}

func NewDashboardService(s *store.Store, notifier *notify.Notifier, logger *slog.Logger) *DashboardService {
	d := &DashboardService{
		store:  s,
		stats:  cache.NewLRU[core.DashboardStats](statsCacheSize, statsCacheTTL),
		logger: logger,
	}
	if notifier != nil {
		invalidate := func(e notify.Event) { d.stats.Delete(e.OwnerID) }
		notifier.Subscribe(ledger.Transactions, invalidate)
		notifier.Subscribe(ledger.SavingsGoals, invalidate)
	}
	return d
}

// Stats returns the dashboard statistics for the owner in ctx.
func (d *DashboardService) Stats(ctx context.Context) (core.DashboardStats, error) {
	ownerID, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return core.DashboardStats{}, err
	}
	if cached, ok := d.stats.Get(ownerID); ok {
		return cached, nil
	}

	transactions, err := d.store.ListTransactions(ctx, ledger.TransactionFilter{})
	if err != nil {
		return core.DashboardStats{}, err
	}
	goals, err := d.store.ListSavingsGoals(ctx)
	if err != nil {
		return core.DashboardStats{}, err
	}

	stats := core.ComputeStats(transactions, goals)
	d.stats.Set(ownerID, stats)
	return stats, nil
}
