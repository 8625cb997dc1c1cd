// Package syncstatus fetches the sync-status card from an external
// endpoint. The result is display-only; it never feeds the progress store.
package syncstatus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/config"
	"github.com/abhisek/roadmapper/internal/external"
)

// ServiceName labels errors from this package.
const ServiceName = "sync"

// ErrDisabled is returned when no sync endpoint is configured.
var ErrDisabled = errors.New("sync status disabled")

// Status is the card payload.
type Status struct {
	Status      string  `json:"status"`
	ActiveModel string  `json:"activeModel"`
	Progress    float64 `json:"progress"`
}

// Client talks to the sync-status endpoint.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// New returns a client for cfg. An empty URL yields a client whose Fetch
// reports ErrDisabled.
func New(cfg config.SyncConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    &http.Client{},
		logger:  logger,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// Fetch POSTs to the endpoint and decodes the status. Transport failures,
// non-2xx answers and undecodable bodies come back as
// *external.ServiceError.
func (c *Client) Fetch(ctx context.Context) (*Status, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	st, err := c.fetch(ctx)
	if err != nil {
		c.logger.Debug("sync status unavailable", zap.String("url", c.url), zap.Error(err))
		return nil, err
	}
	return st, nil
}

func (c *Client) fetch(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, &external.ServiceError{Service: ServiceName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &external.ServiceError{Service: ServiceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &external.ServiceError{Service: ServiceName, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &external.ServiceError{
			Service:    ServiceName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", bytes.TrimSpace(body)),
		}
	}

	var st Status
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, &external.ServiceError{Service: ServiceName, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode status: %w", err)}
	}
	return &st, nil
}
