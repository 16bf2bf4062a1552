package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
)

const indexPrefix = "ceca-gateway-"

// Client wraps the OpenSearch client
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client and, when logging is enabled,
// the webhook index of every provider.
func NewClient(cfg *config.AppConfig, providers ...string) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // self-signed dev clusters
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client: client,
		config: cfg,
	}

	if cfg.EnableLogging {
		osClient.setupIndices(context.Background(), providers)
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

func (c *Client) setupIndices(ctx context.Context, providers []string) {
	for _, provider := range providers {
		indexName := c.GetWebhookIndexName(provider)

		exists, err := c.indexExists(ctx, indexName)
		if err != nil {
			log.Printf("Error checking index %s: %v", indexName, err)
			continue
		}

		if !exists {
			if err := c.createWebhookIndex(ctx, indexName); err != nil {
				log.Printf("Error creating index %s: %v", indexName, err)
				continue
			}
			log.Printf("Created OpenSearch index: %s", indexName)
		}
	}
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

// createWebhookIndex creates the audit index of one provider
func (c *Client) createWebhookIndex(ctx context.Context, indexName string) error {
	mapping := `{
		"mappings": {
			"properties": {
				"timestamp": {
					"type": "date",
					"format": "strict_date_optional_time||epoch_millis"
				},
				"provider": {
					"type": "keyword"
				},
				"environment": {
					"type": "keyword"
				},
				"request_id": {
					"type": "keyword"
				},
				"order_id": {
					"type": "keyword"
				},
				"client_ip": {
					"type": "keyword"
				},
				"fields": {
					"type": "object",
					"enabled": false
				},
				"outcome": {
					"type": "keyword"
				},
				"token": {
					"type": "keyword"
				},
				"status_code": {
					"type": "integer"
				},
				"processing_time_ms": {
					"type": "integer"
				},
				"error": {
					"type": "object",
					"properties": {
						"code": {
							"type": "keyword"
						},
						"message": {
							"type": "text"
						}
					}
				}
			}
		},
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}

// GetWebhookIndexName returns the audit index of a provider
func (c *Client) GetWebhookIndexName(provider string) string {
	return indexPrefix + provider + "-webhooks"
}

// GetSystemIndexName returns the index of system log events
func (c *Client) GetSystemIndexName() string {
	return indexPrefix + "system-logs"
}

// Ping checks the cluster is reachable
func (c *Client) Ping(ctx context.Context) error {
	res, err := opensearchapi.PingRequest{}.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch ping: %s", res.Status())
	}
	return nil
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c.config.EnableLogging
}
