package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// WalletRepo provides data access to the wallet_accounts table.  Balances
// only ever change through DebitTx inside a settlement transaction, which
// is what gives the exactly-once debit guarantee: the debit commits with
// the booking or not at all.
type WalletRepo struct {
	db *sql.DB
}

// NewWalletRepo returns a new WalletRepo bound to the provided database.
func NewWalletRepo(db *sql.DB) *WalletRepo { return &WalletRepo{db: db} }

// GetByID loads one wallet account including the PIN hash.  It returns
// ErrAccountNotFound when no row exists.
func (r *WalletRepo) GetByID(ctx context.Context, accountID uint64) (*model.WalletAccount, error) {
	const q = `SELECT id, balance_cents, currency, pin_hash, created_at, updated_at
			   FROM wallet_accounts WHERE id = ?`
	var a model.WalletAccount
	err := r.db.QueryRowContext(ctx, q, accountID).Scan(
		&a.ID, &a.BalanceCents, &a.Currency, &a.PINHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new wallet account with an opening balance and a
// pre-hashed PIN, returning its generated id.  It backs the seeding tool;
// the API itself never opens accounts.
func (r *WalletRepo) Create(ctx context.Context, balanceCents uint64, currency, pinHash string) (uint64, error) {
	const q = `INSERT INTO wallet_accounts (balance_cents, currency, pin_hash, created_at, updated_at)
			   VALUES (?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`
	res, err := r.db.ExecContext(ctx, q, balanceCents, currency, pinHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// DebitTx subtracts amount from the account inside the provided
// transaction.  The debit is conditional: the UPDATE only applies when the
// balance covers the amount, so a race between two settlements can never
// drive a balance negative.  It returns ErrInsufficientFunds when the
// condition fails and ErrAccountNotFound when the account does not exist.
// The caller is responsible for committing or rolling back the
// transaction.
func (r *WalletRepo) DebitTx(ctx context.Context, tx *sql.Tx, accountID uint64, amount uint64) error {
	const q = `UPDATE wallet_accounts
			   SET balance_cents = balance_cents - ?, updated_at = UTC_TIMESTAMP()
			   WHERE id = ? AND balance_cents >= ?`
	res, err := tx.ExecContext(ctx, q, amount, accountID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// Distinguish "no such account" from "balance too low".
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM wallet_accounts WHERE id = ?)`, accountID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotFound
	}
	return ErrInsufficientFunds
}
