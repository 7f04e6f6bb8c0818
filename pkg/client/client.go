package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sentinelhq/guardsync/pkg/guard"
	"github.com/sentinelhq/guardsync/pkg/kv"
	"github.com/sentinelhq/guardsync/pkg/log"
	"github.com/sentinelhq/guardsync/pkg/queue"
	"github.com/sentinelhq/guardsync/pkg/transport"
)

// Client is the single entry point for keeping the remote guard
// registry consistent with local mutations. Reads go straight to the
// registry; writes that cannot be confirmed delivered, because
// connectivity is absent or the transport call failed, are queued
// durably and replayed by SyncOfflineQueue, so no mutation is silently
// lost.
//
// Construct one Client at startup and pass it by reference to every
// consumer; independent instances with independent stores are safe.
type Client struct {
	cfg       Config
	transport *transport.Client
	queue     *queue.Queue
	online    ConnectivityFunc
	logger    log.Logger
	events    EventHandler
}

// New creates a Client. The offline queue is loaded from the configured
// store immediately, so a backlog queued by a previous process is
// visible before the first call.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = kv.NewMemory()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}

	tc := transport.New(transport.Config{
		BaseURL:   cfg.BaseURL,
		AuthToken: cfg.AuthToken,
		Timeout:   cfg.Timeout,
	}, o.httpClient, o.logger)

	return &Client{
		cfg:       cfg,
		transport: tc,
		queue:     queue.New(o.store, o.logger),
		online:    o.connectivity,
		logger:    o.logger,
		events:    o.events,
	}, nil
}

// FetchGuards retrieves and normalizes every guard in the registry.
// Reads are never queued; a failure is simply returned.
func (c *Client) FetchGuards(ctx context.Context) ([]guard.Guard, error) {
	if !c.online() {
		return nil, ErrOffline
	}
	recs, err := c.transport.FetchGuards(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch guards: %w", err)
	}
	guards := make([]guard.Guard, len(recs))
	for i, rec := range recs {
		guards[i] = guard.Normalize(rec)
	}
	return guards, nil
}

// CreateGuard registers a new guard. On any non-success outcome the
// mutation is queued and an ErrQueued error is returned.
func (c *Client) CreateGuard(ctx context.Context, fields map[string]any) (guard.Guard, error) {
	if !c.online() {
		return guard.Guard{}, c.queueMutation(queue.ActionCreate, createPayload{Fields: fields}, ErrOffline)
	}
	rec, err := c.transport.CreateGuard(ctx, fields)
	if err != nil {
		return guard.Guard{}, c.queueMutation(queue.ActionCreate, createPayload{Fields: fields}, err)
	}
	return guard.Normalize(rec), nil
}

// UpdateGuard applies a partial field update to one guard. On success
// the normalized updated entity is returned and nothing is queued. On
// any non-success outcome (offline, or a transport failure of any kind)
// the mutation is queued and an ErrQueued error is returned.
func (c *Client) UpdateGuard(ctx context.Context, id string, fields map[string]any) (guard.Guard, error) {
	p := updatePayload{GuardID: id, Fields: fields}
	if !c.online() {
		return guard.Guard{}, c.queueMutation(queue.ActionUpdate, p, ErrOffline)
	}
	rec, err := c.transport.UpdateGuard(ctx, id, fields)
	if err != nil {
		return guard.Guard{}, c.queueMutation(queue.ActionUpdate, p, err)
	}
	return guard.Normalize(rec), nil
}

// UpdateGuardLocation reports a new location fix for one guard, with
// the same queue-on-any-failure contract as UpdateGuard. A zero
// timestamp on the fix defaults to the current time.
func (c *Client) UpdateGuardLocation(ctx context.Context, id string, loc guard.Location) (guard.Guard, error) {
	if loc.Timestamp.IsZero() {
		loc.Timestamp = time.Now()
	}
	p := locationPayload{GuardID: id, Location: loc}
	if !c.online() {
		return guard.Guard{}, c.queueMutation(queue.ActionUpdateLocation, p, ErrOffline)
	}
	rec, err := c.transport.UpdateLocation(ctx, id, loc)
	if err != nil {
		return guard.Guard{}, c.queueMutation(queue.ActionUpdateLocation, p, err)
	}
	return guard.Normalize(rec), nil
}

// DeleteGuard removes one guard, with the same queue-on-any-failure
// contract as UpdateGuard.
func (c *Client) DeleteGuard(ctx context.Context, id string) error {
	p := deletePayload{GuardID: id}
	if !c.online() {
		return c.queueMutation(queue.ActionDelete, p, ErrOffline)
	}
	if err := c.transport.DeleteGuard(ctx, id); err != nil {
		return c.queueMutation(queue.ActionDelete, p, err)
	}
	return nil
}

// QueueStatus describes the offline backlog for operator visibility.
type QueueStatus struct {
	// Length is the number of pending mutations.
	Length int

	// OldestTimestamp is the enqueue time of the oldest pending
	// mutation; zero when the queue is empty.
	OldestTimestamp time.Time
}

// OfflineQueueStatus returns the current backlog size and age.
func (c *Client) OfflineQueueStatus() QueueStatus {
	st := QueueStatus{Length: c.queue.Len()}
	if ts, ok := c.queue.Oldest(); ok {
		st.OldestTimestamp = ts
	}
	return st
}

// ClearOfflineQueue discards all pending mutations without attempting
// delivery. Administrative escape hatch; the dropped mutations are gone.
func (c *Client) ClearOfflineQueue() {
	n := c.queue.Len()
	c.queue.Clear()
	c.logger.Warn("offline queue cleared", log.Int("discarded", n))
}

// queueMutation is the single enqueue path for every non-success write
// outcome, whether the cause was absent connectivity or a failed
// transport call. It returns the ErrQueued error the caller hands back.
func (c *Client) queueMutation(action queue.Action, payload any, cause error) error {
	b, err := json.Marshal(payload)
	if err != nil {
		// Payloads are built from plain maps and structs; this cannot
		// fail for any input reachable through the public API.
		return fmt.Errorf("encode mutation: %w", err)
	}
	item := c.queue.Enqueue(queue.Item{Action: action, Payload: b})
	c.logger.Info("mutation queued for sync",
		log.String("item", item.ID),
		log.String("action", string(action)),
		log.Err(cause))
	if c.events != nil {
		c.events.OnQueued(item)
	}
	return fmt.Errorf("%w: %v", ErrQueued, cause)
}

// Queued mutation payload shapes. These are what lives in
// queue.Item.Payload and what replay decodes.

type createPayload struct {
	Fields map[string]any `json:"fields"`
}

type updatePayload struct {
	GuardID string         `json:"guard_id"`
	Fields  map[string]any `json:"fields"`
}

type locationPayload struct {
	GuardID  string         `json:"guard_id"`
	Location guard.Location `json:"location"`
}

type deletePayload struct {
	GuardID string `json:"guard_id"`
}
