// internal/api/handler/user.go
package handler

import (
	"log/slog"
	"net/http"

	"yieldledger/internal/api/types"
	"yieldledger/internal/service"
)

// UserHandler serves registration, profile, journal history and referrals.
type UserHandler struct {
	base
	users     service.UserService
	journal   service.Journal
	referrals service.ReferralService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, journal service.Journal, referrals service.ReferralService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		base:      base{logger: logger},
		users:     users,
		journal:   journal,
		referrals: referrals,
	}
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email        string `json:"email" validate:"required,email,max=255"`
	ReferralCode string `json:"referral_code" validate:"omitempty,alphanum,max=32"`
}

// Register creates an account.
// POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	user, err := h.users.Register(r.Context(), actor, req.Username, req.Email, req.ReferralCode)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusCreated, "User registered", user)
}

// GetUser returns the account with its balances.
// GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if _, err := authorizeUser(r, userID); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", user)
}

// GetTransactionHistory returns the user's journal, newest first.
// GET /users/{userID}/transactions
func (h *UserHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
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
	entries, total, err := h.journal.History(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", types.NewPage(entries, limit, offset, total))
}

// ListReferrals returns the users referred by userID.
// GET /users/{userID}/referrals
func (h *UserHandler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if _, err := authorizeUser(r, userID); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	referrals, err := h.referrals.ListReferrals(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "OK", referrals)
}
