// internal/api/handler/payment.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"yieldledger/internal/domain"
	"yieldledger/internal/service"
	"yieldledger/internal/util"
)

// PaymentHandler serves deposits and withdrawals.
type PaymentHandler struct {
	base
	deposits    service.DepositService
	withdrawals service.WithdrawalService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(deposits service.DepositService, withdrawals service.WithdrawalService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		base:        base{logger: logger},
		deposits:    deposits,
		withdrawals: withdrawals,
	}
}

// ListMethods returns the active deposit methods.
// GET /deposit-methods
func (h *PaymentHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.deposits.ListMethods(r.Context(), true)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", methods)
}

// CreateDepositRequest represents the request body for a deposit.
type CreateDepositRequest struct {
	MethodID             int64           `json:"method_id" validate:"required,gt=0"`
	Amount               decimal.Decimal `json:"amount" validate:"gt=0"`
	Network              *string         `json:"network" validate:"omitempty,max=32"`
	ProofOfPayment       *string         `json:"proof_of_payment" validate:"omitempty,max=512"`
	GatewayTransactionID *string         `json:"gateway_transaction_id" validate:"omitempty,max=128"`
}

// CreateDeposit opens a pending deposit.
// POST /users/{userID}/deposits
func (h *PaymentHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
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
	var req CreateDepositRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	deposit, err := h.deposits.CreateDeposit(r.Context(), actor, userID, req.MethodID, req.Amount, domain.DepositExtra{
		ProofOfPayment:       req.ProofOfPayment,
		GatewayTransactionID: req.GatewayTransactionID,
		Network:              req.Network,
	})
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusCreated, "Deposit created", deposit)
}

// ListDeposits returns the user's deposits.
// GET /users/{userID}/deposits
func (h *PaymentHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
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
	deposits, err := h.deposits.ListDeposits(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", deposits)
}

// StatusRequest represents an admin or gateway status change.
type StatusRequest struct {
	Status    domain.TransactionStatus `json:"status" validate:"required,oneof=processing completed failed cancelled expired"`
	Reference *string                  `json:"reference" validate:"omitempty,max=128"`
}

// UpdateDepositStatus applies a status change to a deposit.
// POST /admin/deposits/{depositID}/status
func (h *PaymentHandler) UpdateDepositStatus(w http.ResponseWriter, r *http.Request) {
	depositID, err := idParam(r, "depositID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	var req StatusRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	deposit, err := h.deposits.UpdateStatus(r.Context(), actor, depositID, req.Status, req.Reference)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "Deposit updated", deposit)
}

// CreateWithdrawalRequest represents the request body for a withdrawal.
type CreateWithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	WalletAddress string          `json:"wallet_address" validate:"required,max=128"`
	Currency      string          `json:"currency" validate:"omitempty,max=16"`
	Network       string          `json:"network" validate:"omitempty,max=32"`
}

// CreateWithdrawal debits amount plus fee and opens a pending withdrawal.
// POST /users/{userID}/withdrawals
func (h *PaymentHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
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
	var req CreateWithdrawalRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	withdrawal, err := h.withdrawals.CreateWithdrawal(r.Context(), actor, userID, req.Amount, req.WalletAddress, req.Currency, req.Network)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusCreated, "Withdrawal requested", withdrawal)
}

// ListWithdrawals returns the user's withdrawals.
// GET /users/{userID}/withdrawals
func (h *PaymentHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
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
	withdrawals, err := h.withdrawals.ListWithdrawals(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", withdrawals)
}

// UpdateWithdrawalStatus applies a status change to a withdrawal. Failed and
// cancelled refund amount plus fee.
// POST /admin/withdrawals/{withdrawalID}/status
func (h *PaymentHandler) UpdateWithdrawalStatus(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := idParam(r, "withdrawalID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	var req StatusRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if req.Status == domain.StatusExpired {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	actor, _ := ActorFrom(r.Context())
	withdrawal, err := h.withdrawals.UpdateStatus(r.Context(), actor, withdrawalID, req.Status, req.Reference)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "Withdrawal updated", withdrawal)
}
