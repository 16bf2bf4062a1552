package config

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearGatewayEnv unsets every gateway variable; an empty but set variable
// would override the env-default.
func clearGatewayEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CECA_ENABLED", "CECA_ENVIRONMENT", "CECA_DEFAULT_CURRENCY", "CECA_DEFAULT_LANGUAGE",
		"CECA_ORDER_STATUS", "CECA_DEBUG",
	}
	for _, env := range []string{"SANDBOX", "PRODUCTION"} {
		for _, field := range []string{"ACQUIRER_BIN", "MERCHANT_ID", "TERMINAL_ID", "ENCRYPTION_KEY"} {
			keys = append(keys, fmt.Sprintf("CECA_%s_%s", env, field))
		}
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadGatewayConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(t *testing.T, cfg GatewayConfig)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg GatewayConfig) {
				assert.True(t, cfg.Enabled)
				assert.Equal(t, EnvSandbox, cfg.Environment)
				assert.Equal(t, "978", cfg.DefaultCurrency)
				assert.Equal(t, "6", cfg.DefaultLanguage)
				assert.Equal(t, "processing", cfg.OrderStatus)
				assert.Equal(t, "00000003", cfg.Sandbox.TerminalID)
				assert.Equal(t, "00000003", cfg.Production.TerminalID)
				assert.False(t, cfg.Debug)
			},
		},
		{
			name: "production_credentials",
			envVars: map[string]string{
				"CECA_ENVIRONMENT":               "Production",
				"CECA_PRODUCTION_ACQUIRER_BIN":   "12345678",
				"CECA_PRODUCTION_MERCHANT_ID":    "M1",
				"CECA_PRODUCTION_TERMINAL_ID":    "00000001",
				"CECA_PRODUCTION_ENCRYPTION_KEY": "secret",
				"CECA_SANDBOX_ENCRYPTION_KEY":    "sandbox-secret",
				"CECA_DEBUG":                     "true",
				"CECA_ORDER_STATUS":              "completed",
			},
			check: func(t *testing.T, cfg GatewayConfig) {
				assert.Equal(t, EnvProduction, cfg.Environment)
				assert.Equal(t, Credentials{
					AcquirerBIN:   "12345678",
					MerchantID:    "M1",
					TerminalID:    "00000001",
					EncryptionKey: "secret",
				}, cfg.Production)
				assert.Equal(t, "sandbox-secret", cfg.Sandbox.EncryptionKey)
				assert.Equal(t, "completed", cfg.OrderStatus)
				assert.True(t, cfg.Debug)
			},
		},
		{
			name:    "unknown_environment",
			envVars: map[string]string{"CECA_ENVIRONMENT": "staging"},
			wantErr: true,
		},
		{
			name:    "invalid_default_currency",
			envVars: map[string]string{"CECA_DEFAULT_CURRENCY": "EUR"},
			wantErr: true,
		},
		{
			name:    "invalid_order_status",
			envVars: map[string]string{"CECA_ORDER_STATUS": "refunded"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearGatewayEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadGatewayConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestGatewayConfig_CredentialsFor(t *testing.T) {
	cfg := GatewayConfig{
		Sandbox:    Credentials{MerchantID: "sandbox"},
		Production: Credentials{MerchantID: "production"},
	}

	creds, ok := cfg.CredentialsFor(EnvSandbox)
	assert.True(t, ok)
	assert.Equal(t, "sandbox", creds.MerchantID)

	creds, ok = cfg.CredentialsFor(EnvProduction)
	assert.True(t, ok)
	assert.Equal(t, "production", creds.MerchantID)

	_, ok = cfg.CredentialsFor(Environment("staging"))
	assert.False(t, ok)
}

func TestGatewayConfig_SummaryHidesKeys(t *testing.T) {
	cfg := GatewayConfig{
		Environment: EnvSandbox,
		Sandbox:     Credentials{MerchantID: "M1", EncryptionKey: "top-secret-key"},
	}

	summary := cfg.Summary()
	assert.Equal(t, "M1", summary["merchantId"])
	for _, value := range summary {
		assert.NotContains(t, fmt.Sprint(value), "top-secret-key")
	}
}

func TestCredentials_String(t *testing.T) {
	creds := Credentials{AcquirerBIN: "12345678", MerchantID: "M1", TerminalID: "00000003", EncryptionKey: "supersecret"}

	out := creds.String()
	assert.NotContains(t, out, "supersecret")
	assert.True(t, strings.HasSuffix(out, "*********et}"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****ef", MaskSecret("abcdef"))
}

func TestGatewayConfig_String(t *testing.T) {
	cfg := GatewayConfig{
		Environment: EnvSandbox,
		Sandbox:     Credentials{MerchantID: "M1", EncryptionKey: "sandbox-key"},
		Production:  Credentials{MerchantID: "M2", EncryptionKey: "production-key"},
	}

	out := cfg.String()
	assert.Contains(t, out, "M1")
	assert.Contains(t, out, "M2")
	assert.NotContains(t, out, "sandbox-key")
	assert.NotContains(t, out, "production-key")
	assert.NotContains(t, fmt.Sprintf("%v", cfg), "production-key")
}
