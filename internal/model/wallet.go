package model

import "time"

// WalletAccount is a prepaid balance used to pay for bookings.  The PIN is
// stored only as a bcrypt hash; verification is delegated to utils so the
// plain PIN never leaves the settlement path.
//
// Fields:
//  ID           – primary key identifier.
//  BalanceCents – current balance in cents.
//  Currency     – ISO currency code, informational only.
//  PINHash      – bcrypt hash of the wallet PIN.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type WalletAccount struct {
	ID           uint64    // wallet_accounts.id
	BalanceCents uint64    // wallet_accounts.balance_cents
	Currency     string    // wallet_accounts.currency
	PINHash      string    // wallet_accounts.pin_hash
	CreatedAt    time.Time // wallet_accounts.created_at
	UpdatedAt    time.Time // wallet_accounts.updated_at
}
