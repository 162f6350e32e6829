// internal/service/service.go
package service

import (
	"fmt"

	"yieldledger/internal/repository"
	"yieldledger/internal/util"
	"yieldledger/pkg/db"
)

// Default page size for history and list calls.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// executor returns the DBExecutor behind an open transaction.
func executor(tx db.TxController) (repository.DBExecutor, error) {
	q, ok := tx.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return q, nil
}

// dependencyError marks a non-domain failure as a dependency error so callers
// can classify it without inspecting driver errors.
func dependencyError(op string, err error) error {
	if err == nil || util.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, util.ErrDependency, err)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
