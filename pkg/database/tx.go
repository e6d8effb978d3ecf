package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type Executor interface {
	sqlx.ExtContext
}

// TxManager runs a function inside a single transaction, carrying the transaction on the context so that
// repositories sharing the same *sqlx.DB join it through Conn.
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager constructs a TxManager.
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. Nested calls reuse the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *sqlx.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
