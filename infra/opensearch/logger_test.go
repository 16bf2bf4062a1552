package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
)

func newTestLogger(t *testing.T, enabled bool) (*Logger, *fakeCluster) {
	fc, srv := newFakeCluster(t)

	client, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL, EnableLogging: enabled})
	require.NoError(t, err)

	return NewLogger(client), fc
}

func TestLogger_LogWebhook(t *testing.T) {
	l, fc := newTestLogger(t, true)

	err := l.LogWebhook(context.Background(), WebhookLog{
		Provider: "ceca",
		OrderID:  "500",
		Fields:   map[string]any{"Num_operacion": "500", "Firma": "[REDACTED]"},
		Outcome:  "completed",
		Token:    "$*$OKY$*$",
	})
	require.NoError(t, err)

	docs := fc.find(http.MethodPost, "/ceca-gateway-ceca-webhooks/_doc")
	require.Len(t, docs, 1)

	var got WebhookLog
	require.NoError(t, json.Unmarshal([]byte(docs[0].Body), &got))
	assert.Equal(t, "500", got.OrderID)
	assert.NotEmpty(t, got.RequestID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "[REDACTED]", got.Fields["Firma"])
}

func TestLogger_Disabled(t *testing.T) {
	l, fc := newTestLogger(t, false)
	ctx := context.Background()

	assert.NoError(t, l.LogWebhook(ctx, WebhookLog{Provider: "ceca"}))
	assert.NoError(t, l.LogSystemEvent(ctx, map[string]string{"message": "x"}))

	_, err := l.GetOrderWebhooks(ctx, "ceca", "500")
	assert.Error(t, err)

	assert.Empty(t, fc.find(http.MethodPost, "/"))
}

func TestLogger_LogSystemEvent(t *testing.T) {
	l, fc := newTestLogger(t, true)

	require.NoError(t, l.LogSystemEvent(context.Background(), map[string]string{"message": "started"}))
	assert.Len(t, fc.find(http.MethodPost, "/ceca-gateway-system-logs/_doc"), 1)
}

func TestLogger_GetOrderWebhooks(t *testing.T) {
	l, fc := newTestLogger(t, true)
	fc.search = `{"hits":{"hits":[
		{"_source":{"provider":"ceca","order_id":"500","outcome":"completed","token":"$*$OKY$*$"}},
		{"_source":{"provider":"ceca","order_id":"500","outcome":"already-completed","token":""}}
	]}}`

	logs, err := l.GetOrderWebhooks(context.Background(), "ceca", "500")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "completed", logs[0].Outcome)
	assert.Equal(t, "", logs[1].Token)

	searches := fc.find(http.MethodPost, "/ceca-gateway-ceca-webhooks/_search")
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0].Body, `"order_id":"500"`)
}

func TestLogger_GetRecentRejections(t *testing.T) {
	l, fc := newTestLogger(t, true)
	fc.search = `{"hits":{"hits":[]}}`

	logs, err := l.GetRecentRejections(context.Background(), "ceca", 24)
	require.NoError(t, err)
	assert.Empty(t, logs)

	searches := fc.find(http.MethodPost, "/ceca-gateway-ceca-webhooks/_search")
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0].Body, "now-24h")
}
