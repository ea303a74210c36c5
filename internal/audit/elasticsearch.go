// internal/audit/elasticsearch.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"assistant-engine/internal/models"
)

// ElasticsearchSink indexes each turn as a document so conversations can be
// searched by message text and intent.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (e *ElasticsearchSink) Name() string { return "elasticsearch" }

func (e *ElasticsearchSink) Record(ctx context.Context, c *models.Conversation) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index conversation: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index conversation: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
