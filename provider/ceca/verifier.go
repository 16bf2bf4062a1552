package ceca

import (
	"crypto/subtle"
	"strings"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
)

// Callback is a payment confirmation posted by the gateway
type Callback struct {
	MerchantID   string
	AcquirerBIN  string
	TerminalID   string
	OperationID  string
	Amount       string
	CurrencyCode string
	Exponent     string
	Reference    string
	Signature    string
}

// ParseCallback reads a callback from raw form fields
func ParseCallback(fields map[string]string) Callback {
	return Callback{
		MerchantID:   fields["MerchantID"],
		AcquirerBIN:  fields["AcquirerBIN"],
		TerminalID:   fields["TerminalID"],
		OperationID:  fields["Num_operacion"],
		Amount:       fields["Importe"],
		CurrencyCode: fields["TipoMoneda"],
		Exponent:     fields["Exponente"],
		Reference:    fields["Referencia"],
		Signature:    fields["Firma"],
	}
}

func (c Callback) isEmpty() bool {
	return c == Callback{}
}

// signedFields lists the wire names in signing order
func (c Callback) signedFields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"MerchantID", c.MerchantID},
		{"AcquirerBIN", c.AcquirerBIN},
		{"TerminalID", c.TerminalID},
		{"Num_operacion", c.OperationID},
		{"Importe", c.Amount},
		{"TipoMoneda", c.CurrencyCode},
		{"Exponente", c.Exponent},
		{"Referencia", c.Reference},
	}
}

// VerificationResult is an authenticated callback
type VerificationResult struct {
	OrderID      string
	Reference    string
	Amount       string
	CurrencyCode string
}

// Verifier authenticates callbacks. It never touches orders.
type Verifier struct {
	cfg config.GatewayConfig
}

// NewVerifier creates a verifier
func NewVerifier(cfg config.GatewayConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify checks the signature of cb with the key of env
func (v *Verifier) Verify(cb Callback, env config.Environment) (*VerificationResult, error) {
	if cb.isEmpty() || cb.Signature == "" {
		return nil, &VerificationError{Reason: ReasonMissingSignature}
	}

	var sb strings.Builder
	for _, f := range cb.signedFields() {
		if f.value == "" {
			return nil, &VerificationError{Reason: ReasonMissingField, Field: f.name}
		}
		sb.WriteString(f.value)
	}

	creds, ok := v.cfg.CredentialsFor(env)
	if !ok {
		return nil, &ConfigurationError{Environment: env}
	}
	if creds.EncryptionKey == "" {
		return nil, &ConfigurationError{Environment: env, Field: "EncryptionKey"}
	}

	expected := Sign(unescapeAmp(creds.EncryptionKey + sb.String()))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(cb.Signature)) != 1 {
		return nil, &VerificationError{Reason: ReasonSignatureMismatch}
	}

	return &VerificationResult{
		OrderID:      cb.OperationID,
		Reference:    cb.Reference,
		Amount:       cb.Amount,
		CurrencyCode: cb.CurrencyCode,
	}, nil
}
