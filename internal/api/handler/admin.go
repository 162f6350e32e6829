// internal/api/handler/admin.go
package handler

import (
	"log/slog"
	"net/http"

	"yieldledger/internal/service"
)

// AdminHandler serves the batch triggers and read-only admin views.
type AdminHandler struct {
	base
	distributor service.ProfitDistributor
	deposits    service.DepositService
	stats       service.StatsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(distributor service.ProfitDistributor, deposits service.DepositService, stats service.StatsService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		base:        base{logger: logger},
		distributor: distributor,
		deposits:    deposits,
		stats:       stats,
	}
}

// RunDistribution runs one profit sweep now.
// POST /admin/distribution/run
func (h *AdminHandler) RunDistribution(w http.ResponseWriter, r *http.Request) {
	report, err := h.distributor.RunDistribution(r.Context())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "Distribution finished", report)
}

// ExpireDeposits expires stale pending deposits now.
// POST /admin/deposits/expire
func (h *AdminHandler) ExpireDeposits(w http.ResponseWriter, r *http.Request) {
	n, err := h.deposits.ExpireStale(r.Context())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "Deposits expired", map[string]int{"expired": n})
}

// PlatformStats returns aggregate figures.
// GET /admin/stats
func (h *AdminHandler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.PlatformStats(r.Context())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", stats)
}

// Reconcile compares a user's balances with the journal.
// GET /admin/users/{userID}/reconcile
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	rec, err := h.stats.Reconcile(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", rec)
}
