package ceca

import "github.com/taiwanleaftea/ceca-bank-payments/infra/config"

// ResolveCredentials returns the credential set of env. Every field is required.
func ResolveCredentials(cfg config.GatewayConfig, env config.Environment) (config.Credentials, error) {
	creds, ok := cfg.CredentialsFor(env)
	if !ok {
		return config.Credentials{}, &ConfigurationError{Environment: env}
	}

	required := []struct {
		name  string
		value string
	}{
		{"AcquirerBIN", creds.AcquirerBIN},
		{"MerchantID", creds.MerchantID},
		{"TerminalID", creds.TerminalID},
		{"EncryptionKey", creds.EncryptionKey},
	}
	for _, f := range required {
		if f.value == "" {
			return config.Credentials{}, &ConfigurationError{Environment: env, Field: f.name}
		}
	}

	return creds, nil
}
