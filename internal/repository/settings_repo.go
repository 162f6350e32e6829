// internal/repository/settings_repo.go
package repository

import (
	"context"

	"yieldledger/internal/domain"
)

// SettingsRepository reads the admin-maintained key/value settings. The core
// never writes them.
type SettingsRepository interface {
	GetAll(ctx context.Context, q DBExecutor) (map[string]string, error)
}

// StatsRepository computes the aggregate figures shown on admin screens.
type StatsRepository interface {
	PlatformStats(ctx context.Context, q DBExecutor) (*domain.PlatformStats, error)
}
