// internal/util/errors.go
package util

import (
	"errors"
)

// Common application-specific errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrSchemaUnavailable  = errors.New("investment schema unavailable")
	ErrAmountOutOfRange   = errors.New("amount out of range")
	ErrMethodUnavailable  = errors.New("deposit method unavailable")
	ErrInvalidAddress     = errors.New("invalid wallet address for currency/network")
	ErrSelfReferral       = errors.New("user cannot refer themselves")
	ErrReciprocalReferral = errors.New("reciprocal referral not allowed")
	ErrInvalidReferral    = errors.New("unknown referral code")

	ErrInvestmentNotFound = errors.New("investment not found")
	ErrDepositNotFound    = errors.New("deposit not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrReferralNotFound   = errors.New("referral not found")

	ErrNotActive              = errors.New("investment is not active")
	ErrInvalidStateTransition = errors.New("invalid status transition")

	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	ErrDependency          = errors.New("dependency unavailable")

	ErrForbidden = errors.New("actor may not act on this resource")
)

// ErrorKind groups errors into the categories exposed across the request boundary.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindInsufficientFunds   ErrorKind = "insufficient_funds"
	KindNotFound            ErrorKind = "not_found"
	KindInvalidState        ErrorKind = "invalid_state"
	KindConcurrencyConflict ErrorKind = "concurrency_conflict"
	KindDependency          ErrorKind = "dependency_error"
	KindForbidden           ErrorKind = "forbidden"
)

var kindTable = []struct {
	target error
	kind   ErrorKind
}{
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrNotFound, KindNotFound},
	{ErrUserNotFound, KindNotFound},
	{ErrInvestmentNotFound, KindNotFound},
	{ErrDepositNotFound, KindNotFound},
	{ErrWithdrawalNotFound, KindNotFound},
	{ErrReferralNotFound, KindNotFound},
	{ErrNotActive, KindInvalidState},
	{ErrInvalidStateTransition, KindInvalidState},
	{ErrConcurrencyConflict, KindConcurrencyConflict},
	{ErrDependency, KindDependency},
	{ErrInvalidInput, KindValidation},
	{ErrDuplicateEntry, KindValidation},
	{ErrSchemaUnavailable, KindValidation},
	{ErrAmountOutOfRange, KindValidation},
	{ErrMethodUnavailable, KindValidation},
	{ErrInvalidAddress, KindValidation},
	{ErrSelfReferral, KindValidation},
	{ErrReciprocalReferral, KindValidation},
	{ErrInvalidReferral, KindValidation},
	{ErrForbidden, KindForbidden},
}

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// KindOf classifies err. Unknown errors are treated as dependency failures.
func KindOf(err error) ErrorKind {
	for _, entry := range kindTable {
		if errors.Is(err, entry.target) {
			return entry.kind
		}
	}
	return KindDependency
}

// IsDomainError reports whether err is one of the sentinels above, as opposed to
// a raw persistence or driver error.
func IsDomainError(err error) bool {
	for _, entry := range kindTable {
		if errors.Is(err, entry.target) {
			return true
		}
	}
	return false
}
