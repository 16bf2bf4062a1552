package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment selects the credential set and the bank endpoint
type Environment string

const (
	EnvSandbox    Environment = "sandbox"
	EnvProduction Environment = "production"
)

// Valid reports whether the environment is one of the known profiles
func (e Environment) Valid() bool {
	return e == EnvSandbox || e == EnvProduction
}

// Credentials is the credential quadruple issued by the bank for one environment
type Credentials struct {
	AcquirerBIN   string `env:"ACQUIRER_BIN"`
	MerchantID    string `env:"MERCHANT_ID"`
	TerminalID    string `env:"TERMINAL_ID" env-default:"00000003"`
	EncryptionKey string `env:"ENCRYPTION_KEY"`
}

// String never prints the encryption key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AcquirerBIN:%s MerchantID:%s TerminalID:%s EncryptionKey:%s}",
		c.AcquirerBIN, c.MerchantID, c.TerminalID, MaskSecret(c.EncryptionKey))
}

// GatewayConfig holds the card gateway settings. It is loaded once at startup
// and passed by value afterwards.
type GatewayConfig struct {
	Enabled         bool        `env:"CECA_ENABLED" env-default:"true"`
	Environment     Environment `env:"CECA_ENVIRONMENT" env-default:"sandbox" validate:"required,oneof=sandbox production"`
	Sandbox         Credentials `env-prefix:"CECA_SANDBOX_"`
	Production      Credentials `env-prefix:"CECA_PRODUCTION_"`
	DefaultCurrency string      `env:"CECA_DEFAULT_CURRENCY" env-default:"978" validate:"numeric_code"`
	DefaultLanguage string      `env:"CECA_DEFAULT_LANGUAGE" env-default:"6" validate:"required,numeric"`
	OrderStatus     string      `env:"CECA_ORDER_STATUS" env-default:"processing" validate:"order_status"`
	Debug           bool        `env:"CECA_DEBUG" env-default:"false"`
}

// LoadGatewayConfig reads the gateway settings from the environment
func LoadGatewayConfig() (GatewayConfig, error) {
	var cfg GatewayConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		desc, _ := cleanenv.GetDescription(&cfg, nil)
		return GatewayConfig{}, fmt.Errorf("load gateway config: %w; %s", err, desc)
	}

	cfg.Environment = Environment(strings.ToLower(string(cfg.Environment)))

	if err := cfg.Validate(); err != nil {
		return GatewayConfig{}, err
	}

	return cfg, nil
}

// Validate checks the non-secret settings. Credentials are checked by the
// resolver of the gateway that consumes them.
func (c GatewayConfig) Validate() error {
	if err := App().Validator.Struct(c); err != nil {
		return fmt.Errorf("invalid gateway config: %w", err)
	}
	return nil
}

// String masks both encryption keys.
func (c GatewayConfig) String() string {
	return fmt.Sprintf("GatewayConfig{Enabled:%t Environment:%s Sandbox:%s Production:%s DefaultCurrency:%s DefaultLanguage:%s OrderStatus:%s Debug:%t}",
		c.Enabled, c.Environment, c.Sandbox, c.Production, c.DefaultCurrency, c.DefaultLanguage, c.OrderStatus, c.Debug)
}

// CredentialsFor returns a copy of the credential set of env
func (c GatewayConfig) CredentialsFor(env Environment) (Credentials, bool) {
	switch env {
	case EnvSandbox:
		return c.Sandbox, true
	case EnvProduction:
		return c.Production, true
	default:
		return Credentials{}, false
	}
}

// Summary returns the settings that are safe to expose
func (c GatewayConfig) Summary() map[string]any {
	creds, _ := c.CredentialsFor(c.Environment)
	return map[string]any{
		"enabled":         c.Enabled,
		"environment":     c.Environment,
		"merchantId":      creds.MerchantID,
		"acquirerBin":     creds.AcquirerBIN,
		"terminalId":      creds.TerminalID,
		"defaultCurrency": c.DefaultCurrency,
		"defaultLanguage": c.DefaultLanguage,
		"orderStatus":     c.OrderStatus,
		"debug":           c.Debug,
	}
}

// MaskSecret keeps the last two characters of a secret
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-2) + s[len(s)-2:]
}
