package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// ErrTypeInsufficientFunds marks a debit that retrying cannot fix.
const ErrTypeInsufficientFunds = "InsufficientFunds"

// Wallets is the slice of usecases.WalletService the activities need.
type Wallets interface {
	Debit(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error)
	Credit(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error)
	Refund(ctx context.Context, userID string, amount int64, reference string) (*domain.Wallet, error)
}

// Rides is the slice of usecases.RideService the activities need.
type Rides interface {
	MarkPaid(ctx context.Context, rideID string) error
}

// SettlementActivities holds the activity implementations for the settlement workflow.
// Every ledger entry is keyed on the ride id, so retried activities apply once.
type SettlementActivities struct {
	Wallets Wallets
	Rides   Rides
}

// DebitPassenger takes the fare from the passenger's wallet.
func (a *SettlementActivities) DebitPassenger(ctx context.Context, in SettlementInput) error {
	_, err := a.Wallets.Debit(ctx, in.PassengerID, in.AmountCentavos, in.RideID)
	if errors.Is(err, domain.ErrInsufficientFunds) {
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("passenger %s cannot cover %d", in.PassengerID, in.AmountCentavos),
			ErrTypeInsufficientFunds, err)
	}
	if err != nil {
		return fmt.Errorf("debit passenger %s: %w", in.PassengerID, err)
	}
	return nil
}

// CreditTrider pays the fare to the trider's wallet.
func (a *SettlementActivities) CreditTrider(ctx context.Context, in SettlementInput) error {
	if in.TriderID == "" {
		return temporal.NewNonRetryableApplicationError("ride has no trider", "NoTrider", nil)
	}
	if _, err := a.Wallets.Credit(ctx, in.TriderID, in.AmountCentavos, in.RideID); err != nil {
		return fmt.Errorf("credit trider %s: %w", in.TriderID, err)
	}
	return nil
}

// RefundPassenger returns the fare to the passenger (saga compensation).
func (a *SettlementActivities) RefundPassenger(ctx context.Context, in SettlementInput) error {
	if _, err := a.Wallets.Refund(ctx, in.PassengerID, in.AmountCentavos, in.RideID); err != nil {
		return fmt.Errorf("refund passenger %s: %w", in.PassengerID, err)
	}
	slog.Info("passenger refunded", "ride_id", in.RideID, "passenger_id", in.PassengerID)
	return nil
}

// MarkRidePaid records the settlement on the ride.
func (a *SettlementActivities) MarkRidePaid(ctx context.Context, rideID string) error {
	return a.Rides.MarkPaid(ctx, rideID)
}
