package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// WebhookLog is one audited webhook delivery. Fields must already be redacted.
type WebhookLog struct {
	Timestamp        time.Time      `json:"timestamp"`
	Provider         string         `json:"provider"`
	Environment      string         `json:"environment,omitempty"`
	RequestID        string         `json:"request_id"`
	OrderID          string         `json:"order_id,omitempty"`
	ClientIP         string         `json:"client_ip,omitempty"`
	Fields           map[string]any `json:"fields,omitempty"`
	Outcome          string         `json:"outcome"`
	Token            string         `json:"token"`
	StatusCode       int            `json:"status_code"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Error            ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogWebhook indexes a webhook delivery
func (l *Logger) LogWebhook(ctx context.Context, entry WebhookLog) error {
	if !l.client.IsEnabled() {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}

	return l.index(ctx, l.client.GetWebhookIndexName(entry.Provider), entry)
}

// LogSystemEvent indexes a system log event
func (l *Logger) LogSystemEvent(ctx context.Context, event any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	return l.index(ctx, l.client.GetSystemIndexName(), event)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchWebhooks searches the audit index of a provider, newest first
func (l *Logger) SearchWebhooks(ctx context.Context, provider string, query map[string]any) ([]WebhookLog, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100,
	}

	queryJSON, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{l.client.GetWebhookIndexName(provider)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source WebhookLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]WebhookLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetOrderWebhooks returns every audited delivery for one order
func (l *Logger) GetOrderWebhooks(ctx context.Context, provider, orderID string) ([]WebhookLog, error) {
	query := map[string]any{
		"term": map[string]any{
			"order_id": orderID,
		},
	}

	return l.SearchWebhooks(ctx, provider, query)
}

// GetRecentRejections returns deliveries answered with a failure token in the last hours
func (l *Logger) GetRecentRejections(ctx context.Context, provider string, hours int) ([]WebhookLog, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{
					"range": map[string]any{
						"timestamp": map[string]any{
							"gte": fmt.Sprintf("now-%dh", hours),
						},
					},
				},
				{
					"exists": map[string]any{
						"field": "error.code",
					},
				},
			},
		},
	}

	return l.SearchWebhooks(ctx, provider, query)
}
