package ceca

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

const (
	sandboxURL    = "https://tpv.ceca.es/tpvweb/tpv/compra.action"
	productionURL = "https://pgw.ceca.es/tpvweb/tpv/compra.action"

	exponent         = "2"
	cipher           = "SHA2"
	paymentSupported = "SSL"
)

// OutboundRequest is the signed set of fields posted to the gateway
type OutboundRequest struct {
	MerchantID       string
	AcquirerBIN      string
	TerminalID       string
	OperationID      string
	Amount           string
	CurrencyCode     string
	Exponent         string
	Cipher           string
	OKURL            string
	NOKURL           string
	Language         string
	PaymentSupported string
	Description      string
	ChosenPayment    string
	Signature        string
	Mode             string
	Action           string
}

// Fields returns the form fields in the order the gateway documents them
func (r *OutboundRequest) Fields() []provider.FormField {
	return []provider.FormField{
		{Name: "MerchantID", Value: r.MerchantID},
		{Name: "AcquirerBIN", Value: r.AcquirerBIN},
		{Name: "TerminalID", Value: r.TerminalID},
		{Name: "Num_operacion", Value: r.OperationID},
		{Name: "Importe", Value: r.Amount},
		{Name: "TipoMoneda", Value: r.CurrencyCode},
		{Name: "Exponente", Value: r.Exponent},
		{Name: "URL_OK", Value: r.OKURL},
		{Name: "URL_NOK", Value: r.NOKURL},
		{Name: "Cifrado", Value: r.Cipher},
		{Name: "Idioma", Value: r.Language},
		{Name: "Pago_soportado", Value: r.PaymentSupported},
		{Name: "Descripcion", Value: r.Description},
		{Name: "Pago_elegido", Value: r.ChosenPayment},
		{Name: "Firma", Value: r.Signature},
		{Name: "mode", Value: r.Mode},
	}
}

// URLProvider builds the buyer return URLs of an order
type URLProvider interface {
	ReturnURL(o *order.Order) string
	CancelURL(o *order.Order) string
}

// Signer builds signed redirect requests. It performs no I/O.
type Signer struct {
	cfg  config.GatewayConfig
	urls URLProvider
}

// NewSigner creates a signer
func NewSigner(cfg config.GatewayConfig, urls URLProvider) *Signer {
	return &Signer{cfg: cfg, urls: urls}
}

// BuildRedirectRequest signs the redirect request of o for env
func (s *Signer) BuildRedirectRequest(o *order.Order, env config.Environment) (*OutboundRequest, error) {
	creds, err := ResolveCredentials(s.cfg, env)
	if err != nil {
		return nil, err
	}

	if o == nil || o.ID == "" {
		return nil, &ValidationError{Field: "order", Message: "order id is empty"}
	}

	amount, err := EncodeAmount(o.Total)
	if err != nil {
		return nil, err
	}

	currency, ok := CurrencyCode(o.Currency)
	if !ok {
		currency = s.cfg.DefaultCurrency
	}

	language, ok := LanguageCode(o.Locale)
	if !ok {
		language = s.cfg.DefaultLanguage
	}

	req := &OutboundRequest{
		MerchantID:       creds.MerchantID,
		AcquirerBIN:      creds.AcquirerBIN,
		TerminalID:       creds.TerminalID,
		OperationID:      o.ID,
		Amount:           amount,
		CurrencyCode:     currency,
		Exponent:         exponent,
		Cipher:           cipher,
		OKURL:            unescapeAmp(s.urls.ReturnURL(o)),
		NOKURL:           unescapeAmp(s.urls.CancelURL(o)),
		Language:         language,
		PaymentSupported: paymentSupported,
		Mode:             "no",
		Action:           productionURL,
	}
	if env == config.EnvSandbox {
		req.Mode = "yes"
		req.Action = sandboxURL
	}

	req.Signature = Sign(creds.EncryptionKey,
		req.MerchantID, req.AcquirerBIN, req.TerminalID, req.OperationID,
		req.Amount, req.CurrencyCode, req.Exponent, req.Cipher, req.OKURL, req.NOKURL,
	)

	return req, nil
}

// EncodeAmount renders a total in minor units: 19.99 -> "1999"
func EncodeAmount(total float64) (string, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return "", &ValidationError{Field: "total", Message: "not a finite number"}
	}
	if total < 0 {
		return "", &ValidationError{Field: "total", Message: "negative amount"}
	}
	return strings.Replace(strconv.FormatFloat(total, 'f', 2, 64), ".", "", 1), nil
}

// Sign is the lowercase hex SHA-256 of key followed by parts, without delimiters
func Sign(key string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(key))
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func unescapeAmp(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}
