// internal/api/handler/investment.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"yieldledger/internal/domain"
	"yieldledger/internal/service"
	"yieldledger/internal/util"
)

// InvestmentHandler serves schemas and investment contracts.
type InvestmentHandler struct {
	base
	investments service.InvestmentService
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investments service.InvestmentService, logger *slog.Logger) *InvestmentHandler {
	return &InvestmentHandler{base: base{logger: logger}, investments: investments}
}

// ListSchemas returns the active schemas, or all of them for admins with
// ?all=true.
// GET /schemas
func (h *InvestmentHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if actor, _ := ActorFrom(r.Context()); actor.Role == domain.RoleAdmin && r.URL.Query().Get("all") == "true" {
		activeOnly = false
	}
	schemas, err := h.investments.ListSchemas(r.Context(), activeOnly)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", schemas)
}

// CreateInvestmentRequest represents the request body for opening an investment.
type CreateInvestmentRequest struct {
	SchemaID int64           `json:"schema_id" validate:"required,gt=0"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
}

// CreateInvestment opens an investment for the user.
// POST /users/{userID}/investments
func (h *InvestmentHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	actor, err := authorizeUser(r, userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	var req CreateInvestmentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	investment, err := h.investments.CreateInvestment(r.Context(), actor, userID, req.SchemaID, req.Amount)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusCreated, "Investment created", investment)
}

// ListInvestments returns the user's investments.
// GET /users/{userID}/investments
func (h *InvestmentHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if _, err := authorizeUser(r, userID); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	limit, offset := page(r)
	investments, err := h.investments.ListInvestments(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", investments)
}

// GetInvestment returns one investment with its profit rows.
// GET /investments/{investmentID}
func (h *InvestmentHandler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	investmentID, err := idParam(r, "investmentID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	investment, err := h.investments.GetInvestment(r.Context(), investmentID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if _, err := authorizeUser(r, investment.UserID); err != nil {
		// Do not reveal that the investment exists.
		h.respondWithError(w, r, util.ErrInvestmentNotFound)
		return
	}
	profits, err := h.investments.ListProfits(r.Context(), investmentID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", map[string]interface{}{
		"investment": investment,
		"profits":    profits,
	})
}

// CompleteInvestment settles a matured investment that is still active,
// returning its principal. Contracts with unpaid profit days are rejected.
// POST /admin/investments/{investmentID}/complete
func (h *InvestmentHandler) CompleteInvestment(w http.ResponseWriter, r *http.Request) {
	investmentID, err := idParam(r, "investmentID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	investment, err := h.investments.CompleteInvestment(r.Context(), actor, investmentID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "Investment completed", investment)
}
