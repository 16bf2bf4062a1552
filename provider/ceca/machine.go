package ceca

import (
	"context"
	"errors"
	"fmt"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
)

// Outcome is the effect a callback had on its order
type Outcome int

const (
	OutcomeCompleted Outcome = iota + 1
	OutcomeFailed
	OutcomeAlreadyCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeAlreadyCompleted:
		return "already-completed"
	default:
		return "unknown"
	}
}

// Machine applies verified or rejected callbacks to orders. Callers serialise
// calls for the same order.
type Machine struct {
	store      order.Store
	postStatus order.Status
}

// NewMachine creates a state machine. postStatus is set after the payment is
// recorded when it differs from completed.
func NewMachine(store order.Store, postStatus order.Status) *Machine {
	if postStatus == "" {
		postStatus = order.StatusCompleted
	}
	return &Machine{store: store, postStatus: postStatus}
}

// Apply moves orderID according to the verification outcome. A paid order is
// never changed.
func (m *Machine) Apply(ctx context.Context, orderID string, res *VerificationResult, verifyErr error) (Outcome, error) {
	o, err := m.store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return 0, &LookupError{OrderID: orderID}
		}
		return 0, &StoreError{OrderID: orderID, Op: "get", Err: err}
	}

	if o.IsPaid() {
		return OutcomeAlreadyCompleted, nil
	}

	if verifyErr != nil || res == nil {
		if verifyErr == nil {
			verifyErr = errors.New("no verification result")
		}
		note := fmt.Sprintf("Webhook error: %s", failureReason(verifyErr))
		if err := m.store.UpdateStatus(ctx, orderID, order.StatusFailed, note); err != nil {
			return 0, &StoreError{OrderID: orderID, Op: "fail", Err: err}
		}
		return OutcomeFailed, nil
	}

	applied, err := m.store.MarkPaid(ctx, orderID, res.Reference)
	if err != nil {
		return 0, &StoreError{OrderID: orderID, Op: "mark-paid", Err: err}
	}
	if !applied {
		return OutcomeAlreadyCompleted, nil
	}

	// the payment is recorded; follow-up failures are logged, not returned
	log := logger.WithOrder("ceca", orderID)
	if err := m.store.AddNote(ctx, orderID, "Payment completed with reference: "+res.Reference); err != nil {
		log.Error("Failed to add payment note", err)
	}

	if m.postStatus != order.StatusCompleted {
		if err := m.store.UpdateStatus(ctx, orderID, m.postStatus, ""); err != nil {
			log.Error("Failed to set post-completion status", err)
		}
	}

	return OutcomeCompleted, nil
}

func failureReason(err error) string {
	var verr *VerificationError
	if errors.As(err, &verr) {
		if verr.Field != "" {
			return verr.Reason + " (" + verr.Field + ")"
		}
		return verr.Reason
	}
	return err.Error()
}
