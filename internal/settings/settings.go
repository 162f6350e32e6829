// internal/settings/settings.go
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"yieldledger/internal/domain"
	"yieldledger/internal/metrics"
	"yieldledger/internal/repository"
)

// Provider is the read-only source of platform settings.
type Provider interface {
	Current(ctx context.Context) (domain.Settings, error)
}

// Static always returns the same settings.
type Static domain.Settings

// Current returns s.
func (s Static) Current(context.Context) (domain.Settings, error) {
	return domain.Settings(s), nil
}

// DBProvider reads settings from the settings table on every call, falling
// back to defaults for missing keys.
type DBProvider struct {
	repo     repository.SettingsRepository
	executor repository.DBExecutor
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDBProvider creates a provider over the settings table.
func NewDBProvider(repo repository.SettingsRepository, executor repository.DBExecutor, logger *slog.Logger, m *metrics.Metrics) *DBProvider {
	return &DBProvider{
		repo:     repo,
		executor: executor,
		logger:   logger.With("component", "settings"),
		metrics:  m,
	}
}

// Current loads and parses all settings.
func (p *DBProvider) Current(ctx context.Context) (domain.Settings, error) {
	raw, err := p.repo.GetAll(ctx, p.executor)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if p.metrics != nil {
		p.metrics.SettingsLookups.WithLabelValues("db").Inc()
	}
	s, bad := domain.DefaultSettings().Apply(raw)
	for _, key := range bad {
		p.logger.WarnContext(ctx, "ignoring unparseable setting", "key", key, "value", raw[key])
	}
	return s, nil
}
