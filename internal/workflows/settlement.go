package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// SettlementInput is the input for the settlement workflow.
type SettlementInput struct {
	RideID         string
	TicketID       string
	PassengerID    string
	TriderID       string
	AmountCentavos int64
}

// SettlementWorkflow moves a wallet ride's fare from the passenger to the
// trider. If the trider cannot be credited, the passenger is refunded
// (saga compensation). The ride is marked paid only after both legs succeed.
func SettlementWorkflow(ctx workflow.Context, input SettlementInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting settlement workflow", "rideID", input.RideID, "amount", input.AmountCentavos)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInsufficientFunds},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Debit passenger
	err := workflow.ExecuteActivity(ctx, "DebitPassenger", input).Get(ctx, nil)
	if err != nil {
		logger.Warn("passenger debit failed", "rideID", input.RideID, "error", err)
		return err
	}

	// Step 2: Credit trider
	err = workflow.ExecuteActivity(ctx, "CreditTrider", input).Get(ctx, nil)
	if err != nil {
		logger.Warn("trider credit failed, compensating", "rideID", input.RideID, "error", err)
		// Compensate: refund the passenger
		if rerr := workflow.ExecuteActivity(ctx, "RefundPassenger", input).Get(ctx, nil); rerr != nil {
			logger.Error("refund failed", "rideID", input.RideID, "error", rerr)
		}
		return err
	}

	// Step 3: Mark ride paid
	if err := workflow.ExecuteActivity(ctx, "MarkRidePaid", input.RideID).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Ride settled", "rideID", input.RideID)
	return nil
}
