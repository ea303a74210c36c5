// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"assistant-engine/internal/common/config"
)

// Client wraps the Zeebe gRPC client so it can take part in readiness checks.
type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

// NewClient dials the broker. The dial is lazy; use Ping to confirm the
// broker is reachable.
func NewClient(cfg config.CamundaConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true, // set to false and configure TLS in production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewClientFrom(zeebeClient, timeout), nil
}

// NewClientFrom wraps an existing zbc.Client.
func NewClientFrom(client zbc.Client, requestTimeout time.Duration) *Client {
	return &Client{client: client, requestTimeout: requestTimeout}
}

// Raw returns the underlying client for opening job workers.
func (c *Client) Raw() zbc.Client {
	return c.client
}

func (c *Client) Name() string { return "zeebe" }

// Ping asks the gateway for its topology.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}
