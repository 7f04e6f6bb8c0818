package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sentinelhq/guardsync/pkg/guard"
	"github.com/sentinelhq/guardsync/pkg/log"
)

const guardsEndpoint = "/v1/guards"

// DefaultTimeout bounds a single remote call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Config holds the connection parameters for the guard registry.
type Config struct {
	// BaseURL is the registry base address, without trailing slash.
	BaseURL string

	// AuthToken, when non-empty, is sent as a bearer credential.
	AuthToken string

	// Timeout bounds each individual call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client executes single remote operations against the guard registry.
// Every call is bounded by the configured timeout; a timed-out or
// cancelled call reports a plain failure, indistinguishable from any
// other network failure. The client never retries; bounded retry is
// the sync engine's job.
type Client struct {
	cfg    Config
	client HTTPClient
	logger log.Logger
}

// New creates a transport client.
func New(cfg Config, client HTTPClient, logger log.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	for len(cfg.BaseURL) > 0 && cfg.BaseURL[len(cfg.BaseURL)-1] == '/' {
		cfg.BaseURL = cfg.BaseURL[:len(cfg.BaseURL)-1]
	}
	return &Client{cfg: cfg, client: client, logger: logger}
}

// FetchGuards retrieves every upstream guard record. Records are
// returned in their raw upstream shape; normalization happens above.
func (c *Client) FetchGuards(ctx context.Context) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, guardsEndpoint, nil)
	if err != nil {
		return nil, err
	}
	var recs []map[string]any
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decode guards: %w", err)
	}
	return recs, nil
}

// CreateGuard registers a new guard record.
func (c *Client) CreateGuard(ctx context.Context, fields map[string]any) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPost, guardsEndpoint, fields)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body, fields)
}

// UpdateGuard sends a partial field update for one guard.
func (c *Client) UpdateGuard(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPatch, guardPath(id), fields)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(body, fields)
	if err != nil {
		return nil, err
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = id
	}
	return rec, nil
}

// UpdateLocation reports a new location fix for one guard.
func (c *Client) UpdateLocation(ctx context.Context, id string, loc guard.Location) (map[string]any, error) {
	payload := map[string]any{
		"latitude":  loc.Latitude,
		"longitude": loc.Longitude,
		"accuracy":  loc.Accuracy,
		"timestamp": loc.Timestamp.Format(time.RFC3339),
	}
	body, err := c.do(ctx, http.MethodPost, guardPath(id)+"/location", payload)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(body, map[string]any{"location": payload})
	if err != nil {
		return nil, err
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = id
	}
	return rec, nil
}

// DeleteGuard removes one guard record.
func (c *Client) DeleteGuard(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, guardPath(id), nil)
	return err
}

// do executes one request under the per-call timeout and returns the
// response body. Network errors, timeouts, and non-2xx statuses all
// collapse into one failure kind carrying the original diagnostic.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("request complete",
		log.String("method", method),
		log.String("path", path),
		log.Int("status", resp.StatusCode),
		log.Duration("elapsed", time.Since(start)))

	return body, nil
}

// decodeRecord parses the response body as a single upstream record.
// Registries that answer mutations with an empty body fall back to the
// fields that were sent, so the caller still has something to normalize.
func decodeRecord(body []byte, sent map[string]any) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		rec := make(map[string]any, len(sent))
		for k, v := range sent {
			rec[k] = v
		}
		return rec, nil
	}
	var rec map[string]any
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func guardPath(id string) string {
	return guardsEndpoint + "/" + url.PathEscape(id)
}
