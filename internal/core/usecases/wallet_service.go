package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
)

// WalletService manages prepaid balances. Amounts are in centavos and
// every entry carries a reference; applying the same reference twice
// changes nothing.
type WalletService struct {
	wallets ports.WalletRepository
	now     func() time.Time
}

// NewWalletService creates a new WalletService.
func NewWalletService(wallets ports.WalletRepository) *WalletService {
	return &WalletService{wallets: wallets, now: time.Now}
}

// Get returns the wallet, or an empty one for a user who never transacted.
func (s *WalletService) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, err := s.wallets.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Wallet{UserID: userID}, nil
	}
	return w, err
}

// Transactions returns a page of ledger entries, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.wallets.Transactions(ctx, userID, limit, offset)
}

// TopUp credits funds bought through the payment gateway.
func (s *WalletService) TopUp(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error) {
	return s.apply(ctx, userID, domain.TxTopUp, amount, reference)
}

// Debit charges a passenger for a ride.
func (s *WalletService) Debit(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error) {
	return s.apply(ctx, userID, domain.TxRidePayment, -amount, reference)
}

// Credit pays a trider for a ride.
func (s *WalletService) Credit(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error) {
	return s.apply(ctx, userID, domain.TxRideEarning, amount, reference)
}

// Refund returns a debited amount.
func (s *WalletService) Refund(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error) {
	return s.apply(ctx, userID, domain.TxRefund, amount, reference)
}

func (s *WalletService) apply(ctx context.Context, userID string, kind domain.TransactionKind, signed int64, reference string) (*domain.Wallet, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: user and reference are required", domain.ErrInvalidInput)
	}
	if signed == 0 || (kind == domain.TxRidePayment) != (signed < 0) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}

	w, err := s.wallets.Apply(ctx, &domain.WalletTransaction{
		ID:             newID(),
		UserID:         userID,
		Kind:           kind,
		AmountCentavos: signed,
		Reference:      reference,
		CreatedAt:      s.now(),
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		slog.Debug("wallet entry already applied", "user_id", userID, "reference", reference)
		return s.Get(ctx, userID)
	case err != nil:
		return nil, fmt.Errorf("%s %s: %w", kind, reference, err)
	}

	metrics.WalletTransactions.WithLabelValues(string(kind)).Inc()
	return w, nil
}
