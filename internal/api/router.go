// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yieldledger/internal/api/handler"
	"yieldledger/internal/metrics"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Users       *handler.UserHandler
	Investments *handler.InvestmentHandler
	Payments    *handler.PaymentHandler
	Admin       *handler.AdminHandler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(middleware.Logger)                          // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests
	r.Use(handler.MetricsMiddleware(m))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.ActorMiddleware(logger))

		r.Post("/users", h.Users.Register)
		r.Get("/schemas", h.Investments.ListSchemas)
		r.Get("/deposit-methods", h.Payments.ListMethods)
		r.Get("/investments/{investmentID}", h.Investments.GetInvestment)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", h.Users.GetUser)
			r.Get("/transactions", h.Users.GetTransactionHistory)
			r.Get("/referrals", h.Users.ListReferrals)
			r.Post("/investments", h.Investments.CreateInvestment)
			r.Get("/investments", h.Investments.ListInvestments)
			r.Post("/deposits", h.Payments.CreateDeposit)
			r.Get("/deposits", h.Payments.ListDeposits)
			r.Post("/withdrawals", h.Payments.CreateWithdrawal)
			r.Get("/withdrawals", h.Payments.ListWithdrawals)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(handler.RequireAdmin(logger))

			r.Post("/investments/{investmentID}/complete", h.Investments.CompleteInvestment)
			r.Post("/deposits/{depositID}/status", h.Payments.UpdateDepositStatus)
			r.Post("/deposits/expire", h.Admin.ExpireDeposits)
			r.Post("/withdrawals/{withdrawalID}/status", h.Payments.UpdateWithdrawalStatus)
			r.Post("/distribution/run", h.Admin.RunDistribution)
			r.Get("/stats", h.Admin.PlatformStats)
			r.Get("/users/{userID}/reconcile", h.Admin.Reconcile)
		})
	})

	return r
}
