package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// WalletRepo implements ports.WalletRepository with pgx.
type WalletRepo struct {
	db *DB
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(db *DB) *WalletRepo {
	return &WalletRepo{db: db}
}

// Get returns a user's wallet.
func (r *WalletRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	var w domain.Wallet
	err := r.db.Pool.QueryRow(ctx, `
		SELECT user_id, balance_centavos, updated_at FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.UserID, &w.BalanceCentavos, &w.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "wallet", userID)
	}
	return &w, nil
}

// Apply records a ledger entry and adjusts the balance atomically.
func (r *WalletRepo) Apply(ctx context.Context, entry *domain.WalletTransaction) (*domain.Wallet, error) {
	var w domain.Wallet
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING
		`, entry.UserID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO wallet_transactions (id, user_id, kind, amount_centavos, reference, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, kind, reference) DO NOTHING
		`, entry.ID, entry.UserID, string(entry.Kind), entry.AmountCentavos, entry.Reference, entry.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s %s: %w", entry.Kind, entry.Reference, domain.ErrDuplicate)
		}

		err = tx.QueryRow(ctx, `
			UPDATE wallets
			SET balance_centavos = balance_centavos + $2, updated_at = now()
			WHERE user_id = $1 AND balance_centavos + $2 >= 0
			RETURNING user_id, balance_centavos, updated_at
		`, entry.UserID, entry.AmountCentavos).Scan(&w.UserID, &w.BalanceCentavos, &w.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("wallet %s: %w", entry.UserID, domain.ErrInsufficientFunds)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Transactions returns a page of ledger entries, newest first, and the total count.
func (r *WalletRepo) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM wallet_transactions WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, user_id, kind, amount_centavos, reference, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.AmountCentavos, &t.Reference, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		txs = append(txs, t)
	}
	return txs, total, rows.Err()
}
