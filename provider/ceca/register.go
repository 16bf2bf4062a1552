package ceca

import "github.com/taiwanleaftea/ceca-bank-payments/provider"

// Register the CECA gateway with the gateway registry
func init() {
	provider.Register(Name, NewProvider)
}
