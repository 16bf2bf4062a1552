// Package cecapayments is a card payment gateway service for the CECA
// redirect-form bank TPV.
//
// # Overview
//
// The shop creates an order and sends the buyer to the checkout page. The
// page posts a signed form to the bank, the buyer pays there, and the bank
// notifies the service with a signed webhook. The service verifies the
// signature, confirms the order exactly once and answers with the token the
// bank expects.
//
//	┌─────────────┐  checkout   ┌─────────────┐  signed form  ┌─────────────┐
//	│             │────────────►│             │──────────────►│             │
//	│    Shop     │             │   Gateway   │               │  CECA TPV   │
//	│             │◄────────────│   service   │◄──────────────│             │
//	└─────────────┘ order state └─────────────┘    webhook    └─────────────┘
//
// # Layout
//
//   - cmd: the HTTP server
//   - provider: gateway interface, registry and payment service
//   - provider/ceca: signing, verification, confirmation state machine, dispatcher
//   - order: order model, SQLite and in-memory stores, per-order locks
//   - handler, router: HTTP handlers and routes
//   - infra: configuration, logging, OpenSearch audit trail, middlewares
//
// # Configuration
//
// Gateway credentials are read from CECA_* variables, process settings from
// APP_PORT, APP_URL, SHOP_URL, ORDER_DB_PATH, REDIS_ADDR, API_KEY and the
// OPENSEARCH_* family. A .env file is loaded when present.
//
// # Webhook URL
//
// Register {APP_URL}/v1/webhooks/ceca as the notification URL in the CECA
// merchant dashboard. GET /v1/gateways/ceca reports it.
package cecapayments
