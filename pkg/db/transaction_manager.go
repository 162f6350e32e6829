// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// BeginTxFunc, CommitTxFunc and RollbackTxFunc are injected into the unit of
// work so tests can substitute the transaction lifecycle.
type (
	BeginTxFunc    func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// BeginTx starts a new database transaction.
// It returns a TxController interface, which *sqlx.Tx implements.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil // *sqlx.Tx implicitly implements TxController
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		// Log the error, but don't return it as it's typically a deferred call
		slog.Default().Error("Error rolling back transaction", "error", err)
	}
}

type txKey struct{}

// txState is carried in the context of an open unit of work.
type txState struct {
	tx          TxController
	afterCommit []func()
}

// UnitOfWork runs functions inside one database transaction. A call made
// with a context that already carries a transaction joins it instead of
// starting a second one.
type UnitOfWork struct {
	beginner   DBTxBeginner
	beginTx    BeginTxFunc
	commitTx   CommitTxFunc
	rollbackTx RollbackTxFunc
}

// NewUnitOfWork creates a UnitOfWork over the given beginner.
func NewUnitOfWork(beginner DBTxBeginner, beginTx BeginTxFunc, commitTx CommitTxFunc, rollbackTx RollbackTxFunc) *UnitOfWork {
	return &UnitOfWork{
		beginner:   beginner,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Do executes fn inside a transaction. The context passed to fn carries the
// transaction; fn must use it for every nested call. Any error returned by fn
// rolls the whole unit back. After-commit hooks run only once the outermost
// unit commits.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx TxController) error) error {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx, state.tx)
	}

	tx, err := u.beginTx(ctx, u.beginner)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer u.rollbackTx(tx)

	state := &txState{tx: tx}
	if err := fn(context.WithValue(ctx, txKey{}, state), tx); err != nil {
		return err
	}

	if err := u.commitTx(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}

// InTx reports whether ctx carries an open unit of work.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// AfterCommit registers fn to run after the unit of work in ctx commits. It
// is dropped if the unit rolls back. Outside a unit of work fn runs at once.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}
