// Package handler provides the HTTP handlers of the payment gateway.
//
// # Handlers
//
//   - PaymentHandler: bank webhooks, checkout pages, redirect forms, orders and gateways
//   - LogsHandler: the webhook audit trail stored in OpenSearch
//   - HealthHandler: dependency pings and process statistics
//
// # Webhooks
//
// Banks post their notification form-encoded and expect a bare token in the
// body rather than a JSON envelope:
//
//	POST /v1/webhooks/ceca
//	Content-Type: application/x-www-form-urlencoded
//
//	MerchantID=...&Num_operacion=500&Importe=2500&...&Firma=...
//
//	200 $*$OKY$*$    payment confirmed
//	200 $*$NOK$*$    rejected, the order is marked failed
//	200 (empty)      already confirmed, nothing to do
//	503 (empty)      transient failure, the bank redelivers
//
// # Checkout
//
// GET /checkout/{provider}/{orderID} renders an HTML page whose form posts
// the signed fields to the bank and submits itself. The same form is
// available as JSON from GET /v1/payments/{provider}/{orderID}/redirect.
//
// # Responses
//
// Everything except webhooks and checkout pages uses the standard envelope:
//
//	{
//	  "code": 200,
//	  "success": true,
//	  "message": "Order retrieved",
//	  "data": { ... }
//	}
package handler
