// internal/audit/audit.go
package audit

import (
	"context"
	"log/slog"
	"time"

	"yieldledger/internal/domain"

	"github.com/shopspring/decimal"
)

// Event kinds.
const (
	KindBalanceMutation  = "ledger.balance_mutation"
	KindInvestmentOpened = "investment.opened"
	KindInvestmentClosed = "investment.completed"
	KindProfitCredited   = "investment.profit_credited"
	KindDepositStatus    = "deposit.status_changed"
	KindWithdrawalStatus = "withdrawal.status_changed"
	KindReferralPaid     = "referral.commission_paid"
	KindUserRegistered   = "user.registered"
)

// Event is one audit record. Money fields are zero when not relevant to Kind.
type Event struct {
	Kind       string          `json:"kind"`
	Actor      domain.Actor    `json:"actor"`
	UserID     int64           `json:"user_id"`
	Field      string          `json:"field,omitempty"`
	Delta      decimal.Decimal `json:"delta"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	Subject    string          `json:"subject,omitempty"` // e.g. "withdrawal:12"
	Status     string          `json:"status,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Sink receives audit events. Publish must not block the caller for long and
// never fails the operation that produced the event.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// LogSink writes events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink on top of logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "audit")}
}

// Publish logs the event at info level.
func (s *LogSink) Publish(ctx context.Context, e Event) {
	s.logger.InfoContext(ctx, "audit event",
		"kind", e.Kind,
		"actor", e.Actor.String(),
		"user_id", e.UserID,
		"field", e.Field,
		"delta", e.Delta.String(),
		"before", e.Before.String(),
		"after", e.After.String(),
		"subject", e.Subject,
		"status", e.Status,
	)
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

// Publish forwards e to every sink in order.
func (m MultiSink) Publish(ctx context.Context, e Event) {
	for _, s := range m {
		s.Publish(ctx, e)
	}
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}
