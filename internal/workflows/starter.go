package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/pkg/metrics"
)

// Starter implements ports.SettlementStarter by starting SettlementWorkflow.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter on the given task queue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// WorkflowID is the settlement workflow id for a ride. One ride maps to one
// id, so a redelivered completed event joins the running execution.
func WorkflowID(rideID string) string {
	return "settlement-" + rideID
}

// InputFor builds the workflow input from a completed ride.
func InputFor(ride *domain.RideRequest) SettlementInput {
	return SettlementInput{
		RideID:         ride.ID,
		TicketID:       ride.TicketID,
		PassengerID:    ride.PassengerID,
		TriderID:       ride.AssignedTriderID,
		AmountCentavos: ride.FareCentavos(),
	}
}

// NeedsSettlement reports whether a ride should go through the saga.
func NeedsSettlement(ride *domain.RideRequest) bool {
	return ride.Status == domain.RideCompleted &&
		ride.PaymentMethod == domain.PaymentWallet &&
		ride.PaymentStatus != domain.PaymentStatusPaid &&
		ride.FareCentavos() > 0
}

// StartSettlement starts the workflow for a completed wallet ride. Rides that
// need no settlement are ignored.
func (s *Starter) StartSettlement(ctx context.Context, ride *domain.RideRequest) error {
	if !NeedsSettlement(ride) {
		return nil
	}
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowID(ride.ID),
		TaskQueue: s.taskQueue,
	}, SettlementWorkflow, InputFor(ride))
	if err != nil {
		metrics.Settlements.WithLabelValues("start_failed").Inc()
		return fmt.Errorf("start settlement %s: %w", ride.ID, err)
	}
	metrics.Settlements.WithLabelValues("started").Inc()
	slog.Info("settlement started", "ride_id", ride.ID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
