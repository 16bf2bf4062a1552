package ceca

import (
	"context"
	"errors"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

// Dispatcher turns a raw webhook delivery into a response token
type Dispatcher struct {
	verifier *Verifier
	machine  *Machine
	locker   order.Locker
	env      config.Environment
	debug    bool
}

// NewDispatcher creates a dispatcher bound to the configured environment
func NewDispatcher(verifier *Verifier, machine *Machine, locker order.Locker, env config.Environment, debug bool) *Dispatcher {
	return &Dispatcher{
		verifier: verifier,
		machine:  machine,
		locker:   locker,
		env:      env,
		debug:    debug,
	}
}

// Handle verifies and applies one delivery.
//
// TokenFailure is returned for rejected or unknown-order deliveries, TokenNone
// for replays of a paid order, and TokenNone with a *StoreError when the store
// is unavailable and the delivery must be retried.
func (d *Dispatcher) Handle(ctx context.Context, fields map[string]string) (provider.ResponseToken, error) {
	cb := ParseCallback(fields)
	log := logger.WithOrder("ceca", cb.OperationID)

	if d.debug {
		logger.WithOrder("ceca", cb.OperationID).
			AddField("fields", logger.Redact(fields, "Firma")).
			Debug("Webhook received")
	}

	res, verifyErr := d.verifier.Verify(cb, d.env)
	if verifyErr != nil {
		var cfgErr *ConfigurationError
		if errors.As(verifyErr, &cfgErr) {
			log.Error("Webhook cannot be verified", verifyErr)
			return provider.TokenNone, verifyErr
		}

		log.Error("Webhook verification failed", verifyErr)
		if cb.OperationID != "" {
			d.failOrder(ctx, cb.OperationID, verifyErr)
		}
		return provider.TokenFailure, verifyErr
	}

	unlock, err := d.locker.Lock(ctx, res.OrderID)
	if err != nil {
		return provider.TokenNone, &StoreError{OrderID: res.OrderID, Op: "lock", Err: err}
	}
	defer unlock()

	outcome, err := d.machine.Apply(ctx, res.OrderID, res, nil)
	if err != nil {
		var lookupErr *LookupError
		if errors.As(err, &lookupErr) {
			log.Warn("Verified webhook for unknown order")
			return provider.TokenFailure, err
		}
		log.Error("Webhook could not be applied", err)
		return provider.TokenNone, err
	}

	switch outcome {
	case OutcomeAlreadyCompleted:
		log.Info("Webhook replay for completed order ignored")
		return provider.TokenNone, nil
	default:
		logger.WithOrder("ceca", res.OrderID).AddField("reference", res.Reference).Info("Payment completed")
		return provider.TokenSuccess, nil
	}
}

func (d *Dispatcher) failOrder(ctx context.Context, orderID string, verifyErr error) {
	log := logger.WithOrder("ceca", orderID)

	unlock, err := d.locker.Lock(ctx, orderID)
	if err != nil {
		log.Error("Failed to lock order", err)
		return
	}
	defer unlock()

	outcome, err := d.machine.Apply(ctx, orderID, nil, verifyErr)
	if err != nil {
		var lookupErr *LookupError
		if !errors.As(err, &lookupErr) {
			log.Error("Failed to mark order failed", err)
		}
		return
	}

	if outcome == OutcomeFailed {
		log.Warn("Order marked failed")
	}
}
