// internal/domain/deposit.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositMethodType distinguishes admin-confirmed from gateway-confirmed methods.
type DepositMethodType string

const (
	DepositMethodManual    DepositMethodType = "manual"
	DepositMethodAutomatic DepositMethodType = "automatic"
)

// DepositMethod is an admin-configured funding rail.
type DepositMethod struct {
	ID         int64             `db:"id" json:"id"`
	Name       string            `db:"name" json:"name"`
	Type       DepositMethodType `db:"type" json:"type"`
	Currency   string            `db:"currency" json:"currency"`
	Network    string            `db:"network" json:"network"`
	MinAmount  decimal.Decimal   `db:"min_amount" json:"min_amount"`
	MaxAmount  decimal.Decimal   `db:"max_amount" json:"max_amount"`
	FeePercent decimal.Decimal   `db:"fee_percent" json:"fee_percent"`
	FeeFixed   decimal.Decimal   `db:"fee_fixed" json:"fee_fixed"`
	Status     SchemaStatus      `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// Deposit wraps one journal entry with payment specific fields.
type Deposit struct {
	ID                   int64             `db:"id" json:"id"`
	UserID               int64             `db:"user_id" json:"user_id"`
	TransactionID        int64             `db:"transaction_id" json:"transaction_id"`
	MethodID             int64             `db:"method_id" json:"method_id"`
	Amount               decimal.Decimal   `db:"amount" json:"amount"`
	Fee                  decimal.Decimal   `db:"fee" json:"fee"`
	NetAmount            decimal.Decimal   `db:"net_amount" json:"net_amount"`
	Currency             string            `db:"currency" json:"currency"`
	Network              *string           `db:"network" json:"network,omitempty"`
	WalletAddress        *string           `db:"wallet_address" json:"wallet_address,omitempty"`
	GatewayTransactionID *string           `db:"gateway_transaction_id" json:"gateway_transaction_id,omitempty"`
	ProofOfPayment       *string           `db:"proof_of_payment" json:"proof_of_payment,omitempty"`
	Status               TransactionStatus `db:"status" json:"status"`
	ExpiresAt            *time.Time        `db:"expires_at" json:"expires_at,omitempty"`
	ProcessedBy          *int64            `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt          *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

// DepositExtra carries optional user-supplied payment details.
type DepositExtra struct {
	ProofOfPayment       *string
	GatewayTransactionID *string
	Network              *string
}
