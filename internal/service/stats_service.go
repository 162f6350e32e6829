// internal/service/stats_service.go
package service

import (
	"context"

	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
)

// StatsService serves the read-only figures shown on admin screens.
type StatsService interface {
	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
	Reconcile(ctx context.Context, userID int64) (*domain.Reconciliation, error)
}

type statsService struct {
	dbExecutor repository.DBExecutor
	statsRepo  repository.StatsRepository
	ledger     Ledger
}

// NewStatsService creates a new StatsService.
func NewStatsService(dbExecutor repository.DBExecutor, statsRepo repository.StatsRepository, ledger Ledger) StatsService {
	return &statsService{dbExecutor: dbExecutor, statsRepo: statsRepo, ledger: ledger}
}

func (s *statsService) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	stats, err := s.statsRepo.PlatformStats(ctx, s.dbExecutor)
	if err != nil {
		return nil, dependencyError("platform stats", err)
	}
	return stats, nil
}

func (s *statsService) Reconcile(ctx context.Context, userID int64) (*domain.Reconciliation, error) {
	return s.ledger.Reconcile(ctx, userID)
}
