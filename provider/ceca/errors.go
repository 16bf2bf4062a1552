package ceca

import (
	"fmt"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
)

// Verification failure reasons
const (
	ReasonMissingSignature  = "missing-signature"
	ReasonMissingField      = "missing-field"
	ReasonSignatureMismatch = "signature-mismatch"
)

// ConfigurationError reports an unusable credential set or environment
type ConfigurationError struct {
	Environment config.Environment
	Field       string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("ceca: unknown environment %q", e.Environment)
	}
	return fmt.Sprintf("ceca: %s credential %s is not configured", e.Environment, e.Field)
}

func (e *ConfigurationError) Code() string { return "CONFIGURATION" }

// ValidationError reports order data that cannot be signed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ceca: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Code() string { return "VALIDATION" }

// VerificationError reports a webhook that failed authentication. It never
// carries either digest.
type VerificationError struct {
	Reason string
	Field  string
}

func (e *VerificationError) Error() string {
	switch e.Reason {
	case ReasonMissingField:
		return fmt.Sprintf("ceca: field %s is empty and is required to verify the transaction", e.Field)
	case ReasonMissingSignature:
		return "ceca: webhook data or signature is empty"
	default:
		return "ceca: signature not valid"
	}
}

func (e *VerificationError) Code() string { return "VERIFICATION_" + e.Reason }

// LookupError reports a verified webhook for an order that does not exist
type LookupError struct {
	OrderID string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("ceca: order %s not found", e.OrderID)
}

func (e *LookupError) Code() string { return "ORDER_NOT_FOUND" }

// StoreError reports a transient order store failure. The webhook should be redelivered.
type StoreError struct {
	OrderID string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ceca: order %s: %s failed: %v", e.OrderID, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Code() string { return "STORE_UNAVAILABLE" }
